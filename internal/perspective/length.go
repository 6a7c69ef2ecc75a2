package perspective

import (
	"fmt"
	"strings"
)

// AnswerLength is the verbosity the service is asked to produce.
type AnswerLength string

const (
	Long  AnswerLength = "long"
	Short AnswerLength = "short"
)

// DefaultAnswerLength applies until the user or the service picks another value.
const DefaultAnswerLength = Long

// ParseAnswerLength accepts "long" or "short" in any case.
func ParseAnswerLength(value string) (AnswerLength, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(Long):
		return Long, nil
	case string(Short):
		return Short, nil
	default:
		return "", fmt.Errorf("invalid answer length %q (want long or short)", value)
	}
}

// Toggle flips between long and short.
func (l AnswerLength) Toggle() AnswerLength {
	if l == Short {
		return Long
	}
	return Short
}

// Label is the human readable toggle caption.
func (l AnswerLength) Label() string {
	if l == Short {
		return "Short Answer"
	}
	return "Long Answer"
}
