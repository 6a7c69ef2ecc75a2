package critique

import (
	"fmt"
	"strings"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/perspective"
)

// Status tags a single perspective's outcome.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// PerspectiveResult holds either Content (StatusOK) or Message (StatusError).
type PerspectiveResult struct {
	Status  Status
	Content string
	Message string
}

// OK reports whether the sub-analysis succeeded.
func (r PerspectiveResult) OK() bool {
	return r.Status == StatusOK
}

// Text is whichever of Content or Message is populated.
func (r PerspectiveResult) Text() string {
	if r.OK() {
		return r.Content
	}
	return r.Message
}

func okResult(content string) PerspectiveResult {
	return PerspectiveResult{Status: StatusOK, Content: content}
}

func errorResult(message string) PerspectiveResult {
	message = strings.TrimSpace(message)
	if message == "" {
		message = MsgUnavailable
	}
	return PerspectiveResult{Status: StatusError, Message: message}
}

// ResultSet is the immutable outcome of one successful analysis. It always
// holds exactly the four catalog perspectives.
type ResultSet struct {
	attemptID string
	entries   map[perspective.Key]PerspectiveResult
}

// NewResultSet normalizes a wire payload: missing perspectives become error
// entries and unknown keys are dropped.
func NewResultSet(attemptID string, analysis map[string]api.PerspectivePayload) *ResultSet {
	entries := make(map[perspective.Key]PerspectiveResult, len(perspective.Keys()))
	for _, key := range perspective.Keys() {
		payload, ok := analysis[string(key)]
		if !ok {
			entries[key] = errorResult(MsgUnavailable)
			continue
		}
		entries[key] = fromPayload(payload)
	}
	return &ResultSet{attemptID: attemptID, entries: entries}
}

func fromPayload(payload api.PerspectivePayload) PerspectiveResult {
	switch Status(strings.ToLower(strings.TrimSpace(payload.Status))) {
	case StatusOK:
		return okResult(payload.Content)
	case StatusError:
		return errorResult(payload.Message)
	default:
		return errorResult(fmt.Sprintf("Unexpected status %q from analysis service.", payload.Status))
	}
}

// AttemptID identifies the submission that produced the set.
func (r *ResultSet) AttemptID() string {
	if r == nil {
		return ""
	}
	return r.attemptID
}

// Get returns the entry for key.
func (r *ResultSet) Get(key perspective.Key) (PerspectiveResult, bool) {
	if r == nil {
		return PerspectiveResult{}, false
	}
	res, ok := r.entries[key]
	return res, ok
}

// Len is the number of entries (four for any non-nil set).
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Failed lists perspectives whose sub-analysis failed, in catalog order.
func (r *ResultSet) Failed() []perspective.Key {
	var failed []perspective.Key
	for _, key := range perspective.Keys() {
		if res, ok := r.Get(key); ok && !res.OK() {
			failed = append(failed, key)
		}
	}
	return failed
}

// Wire converts the set back into the JSON shape the report service expects.
func (r *ResultSet) Wire() map[string]api.PerspectivePayload {
	if r == nil {
		return nil
	}
	out := make(map[string]api.PerspectivePayload, len(r.entries))
	for key, res := range r.entries {
		payload := api.PerspectivePayload{Status: string(res.Status)}
		if res.OK() {
			payload.Content = res.Content
		} else {
			payload.Message = res.Message
		}
		out[string(key)] = payload
	}
	return out
}
