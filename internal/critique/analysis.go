package critique

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/logger"
	"github.com/csheth/critic/internal/perspective"
)

// Submission is an analysis attempt that has entered Submitting and holds
// its own encoded snapshot of the input.
type Submission struct {
	ID           string
	Mode         Mode
	AnswerLength perspective.AnswerLength

	session *Session
	request api.Request
	started time.Time
}

// Submit validates, sends and publishes one analysis attempt. It blocks until
// the service answers or ctx ends.
func (s *Session) Submit(ctx context.Context) (*ResultSet, error) {
	sub, err := s.BeginSubmit()
	if err != nil {
		return nil, err
	}
	return sub.Run(ctx)
}

// BeginSubmit performs the synchronous half of Submit: readiness check,
// transition to Submitting and request encoding. A *ValidationError leaves the
// session untouched; ErrSubmissionInFlight is returned while another attempt runs.
func (s *Session) BeginSubmit() (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis == AnalysisSubmitting {
		return nil, ErrSubmissionInFlight
	}
	input := s.input
	if err := input.Ready(); err != nil {
		s.log.Debug("submission rejected: %v", err)
		return nil, err
	}

	sub := &Submission{
		ID:           s.newID(),
		Mode:         input.Mode,
		AnswerLength: input.AnswerLength,
		session:      s,
		started:      time.Now(),
	}
	s.analysis = AnalysisSubmitting
	s.attemptID = sub.ID
	s.results = nil
	s.failure = ""
	s.log.InfoWithFields("submitting", []logger.Field{
		logger.F("attempt", sub.ID),
		logger.F("mode", sub.Mode),
		logger.F("answer_length", sub.AnswerLength),
	})

	req, err := Encode(input)
	if err != nil {
		subErr := &SubmissionError{AttemptID: sub.ID, Message: "Unable to read the selected file.", Err: err}
		s.finishLocked(sub, nil, "", subErr)
		return nil, subErr
	}
	sub.request = req
	return sub, nil
}

// Run issues the encoded request and publishes the outcome. The session
// always leaves Submitting, panics included.
func (sub *Submission) Run(ctx context.Context) (results *ResultSet, err error) {
	s := sub.session
	defer func() {
		if r := recover(); r != nil {
			subErr := &SubmissionError{AttemptID: sub.ID, Message: MsgSomethingWrong, Err: fmt.Errorf("panic: %v", r)}
			s.finish(sub, nil, "", subErr)
			results, err = nil, subErr
		}
	}()

	resp, callErr := s.client.Analyze(ctx, sub.request)
	if callErr != nil {
		subErr := &SubmissionError{AttemptID: sub.ID, Message: submissionMessage(callErr), Err: callErr}
		s.finish(sub, nil, "", subErr)
		return nil, subErr
	}

	results = NewResultSet(sub.ID, resp.Analysis)
	var echoed perspective.AnswerLength
	if resp.Meta != nil && resp.Meta.AnswerLength != "" {
		length, parseErr := perspective.ParseAnswerLength(resp.Meta.AnswerLength)
		if parseErr != nil {
			s.log.Warn("ignoring answer length echoed by service: %v", parseErr)
		} else {
			echoed = length
		}
	}
	s.finish(sub, results, echoed, nil)
	return results, nil
}

func (s *Session) finish(sub *Submission, results *ResultSet, echoed perspective.AnswerLength, subErr *SubmissionError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(sub, results, echoed, subErr)
}

func (s *Session) finishLocked(sub *Submission, results *ResultSet, echoed perspective.AnswerLength, subErr *SubmissionError) {
	if s.attemptID != sub.ID {
		s.log.Warn("dropping outcome of superseded attempt %s", sub.ID)
		return
	}
	fields := []logger.Field{logger.F("attempt", sub.ID), logger.Duration(time.Since(sub.started))}
	if subErr != nil {
		s.analysis = AnalysisFailed
		s.results = nil
		s.failure = subErr.Message
		s.log.WarnWithFields("analysis failed: %s", append(fields, logger.Error(subErr.Err)), subErr.Message)
		return
	}
	s.analysis = AnalysisSucceeded
	s.results = results
	s.failure = ""
	s.selection.Reset()
	if echoed != "" {
		s.input.AnswerLength = echoed
	}
	s.log.InfoWithFields("analysis succeeded", append(fields, logger.F("failed_perspectives", len(results.Failed()))))
}

func submissionMessage(err error) string {
	if detail := api.DetailOf(err); detail != "" {
		return detail
	}
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &statusErr), errors.Is(err, api.ErrMalformedResponse):
		return MsgAnalysisFailed
	case api.IsTimeout(err):
		return MsgAnalysisTimeout
	default:
		return MsgSomethingWrong
	}
}
