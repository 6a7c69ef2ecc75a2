package critique

import (
	"fmt"

	"github.com/csheth/critic/internal/perspective"
)

// Selection tracks the perspective currently being viewed.
type Selection struct {
	active perspective.Key
}

// NewSelection starts on the default perspective.
func NewSelection() Selection {
	return Selection{active: perspective.Default}
}

// Active returns the selected key.
func (s Selection) Active() perspective.Key {
	if s.active == "" {
		return perspective.Default
	}
	return s.active
}

// Select sets the active key. Keys outside the catalog are a programming error.
func (s *Selection) Select(key perspective.Key) {
	if !perspective.Valid(key) {
		panic(fmt.Sprintf("critique: select unknown perspective %q", key))
	}
	s.active = key
}

// Reset returns to the default perspective.
func (s *Selection) Reset() {
	s.active = perspective.Default
}

// Project reads the active entry out of results; false before any result set exists.
func (s Selection) Project(results *ResultSet) (PerspectiveResult, bool) {
	return results.Get(s.Active())
}
