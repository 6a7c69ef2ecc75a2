package critique

import (
	"sync"

	"github.com/google/uuid"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/logger"
	"github.com/csheth/critic/internal/perspective"
)

// AnalysisState is the lifecycle of the most recent submission. Succeeded and
// Failed are both ready for a new submission.
type AnalysisState int

const (
	AnalysisIdle AnalysisState = iota
	AnalysisSubmitting
	AnalysisSucceeded
	AnalysisFailed
)

func (s AnalysisState) String() string {
	switch s {
	case AnalysisSubmitting:
		return "submitting"
	case AnalysisSucceeded:
		return "succeeded"
	case AnalysisFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Session owns the input, the current result set, the selection and both
// lifecycles for one user. It is safe for concurrent use; a front-end reads
// it through Snapshot while jobs complete on other goroutines.
type Session struct {
	client api.Client
	saver  Saver
	log    *logger.Logger
	newID  func() string

	mu        sync.Mutex
	input     InputState
	results   *ResultSet
	selection Selection
	failure   string
	analysis  AnalysisState
	attemptID string

	exporting  bool
	exportID   string
	exportErr  string
	lastReport string
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger routes lifecycle logs to log.
func WithLogger(log *logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSaver sets where exported reports are written.
func WithSaver(saver Saver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// WithAnswerLength overrides the initial answer length.
func WithAnswerLength(length perspective.AnswerLength) Option {
	return func(s *Session) {
		if length != "" {
			s.input.AnswerLength = length
		}
	}
}

// NewSession returns an idle session in text mode.
func NewSession(client api.Client, opts ...Option) *Session {
	s := &Session{
		client:    client,
		log:       logger.Discard(),
		newID:     uuid.NewString,
		input:     NewInputState(),
		selection: NewSelection(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Input         InputState
	Analysis      AnalysisState
	AttemptID     string
	Results       *ResultSet
	Active        perspective.Key
	Failure       string
	Exporting     bool
	ExportFailure string
	LastReport    string
}

// HasResults reports whether a result set is currently held.
func (s Snapshot) HasResults() bool {
	return s.Results != nil
}

// ActiveResult projects the selected perspective out of the result set.
func (s Snapshot) ActiveResult() (PerspectiveResult, bool) {
	return s.Results.Get(s.Active)
}

// CanSubmit mirrors the analyze trigger: disabled while submitting.
func (s Snapshot) CanSubmit() bool {
	return s.Analysis != AnalysisSubmitting
}

// CanExport mirrors the download trigger.
func (s Snapshot) CanExport() bool {
	return s.Results != nil && !s.Exporting
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Input:         s.input,
		Analysis:      s.analysis,
		AttemptID:     s.attemptID,
		Results:       s.results,
		Active:        s.selection.Active(),
		Failure:       s.failure,
		Exporting:     s.exporting,
		ExportFailure: s.exportErr,
		LastReport:    s.lastReport,
	}
}

// Input returns a copy of the current input.
func (s *Session) Input() InputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Results returns the current result set, nil before the first success.
func (s *Session) Results() *ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Failure returns the submission-level failure message, if any.
func (s *Session) Failure() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *Session) AnalysisState() AnalysisState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

func (s *Session) Exporting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exporting
}

// ExportFailure returns the message of the last failed export.
func (s *Session) ExportFailure() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportErr
}

// Active returns the selected perspective key.
func (s *Session) Active() perspective.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Active()
}

// ActiveResult returns the selected entry; false before any result set exists.
func (s *Session) ActiveResult() (PerspectiveResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Project(s.results)
}

// Select changes the viewed perspective. It panics on keys outside the catalog.
func (s *Session) Select(key perspective.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Select(key)
}

// SetMode switches the active input slot; the other slot keeps its value.
func (s *Session) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.Mode = mode
}

func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.Text = text
}

// SetFile replaces the selected file; nil clears it.
func (s *Session) SetFile(file FileHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.File = file
}

func (s *Session) SetAnswerLength(length perspective.AnswerLength) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.AnswerLength = length
}

// AnswerLength is the effective verbosity, possibly echoed back by the service.
func (s *Session) AnswerLength() perspective.AnswerLength {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input.AnswerLength
}
