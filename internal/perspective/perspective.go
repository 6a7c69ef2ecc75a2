package perspective

import (
	"fmt"
	"strings"
)

// Key identifies one of the analytical lenses applied to a submitted argument.
type Key string

const (
	Science   Key = "science"
	Economics Key = "economics"
	Sociology Key = "sociology"
	Ethics    Key = "ethics"
)

// Default is the perspective shown whenever a new result set arrives.
const Default = Science

// Perspective describes a catalog entry rendered as a selectable tab.
type Perspective struct {
	Key         Key
	Label       string
	Description string
	Focus       string
}

var catalog = []Perspective{
	{Key: Science, Label: "Science", Description: "Feasibility & uncertainty", Focus: "scientific feasibility and uncertainty"},
	{Key: Economics, Label: "Economics", Description: "Incentives & externalities", Focus: "incentives, costs/benefits, and externalities"},
	{Key: Sociology, Label: "Sociology/Humanities", Description: "Social context & inequality", Focus: "social context, power, and inequality"},
	{Key: Ethics, Label: "Ethics", Description: "Rights & justice", Focus: "rights, justice, and moral trade-offs"},
}

// Catalog returns the four perspectives in display order.
func Catalog() []Perspective {
	return append([]Perspective(nil), catalog...)
}

// Keys returns the catalog keys in display order.
func Keys() []Key {
	keys := make([]Key, 0, len(catalog))
	for _, p := range catalog {
		keys = append(keys, p.Key)
	}
	return keys
}

// Lookup returns the catalog entry for key.
func Lookup(key Key) (Perspective, bool) {
	for _, p := range catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Perspective{}, false
}

// Valid reports whether key names a catalog entry.
func Valid(key Key) bool {
	_, ok := Lookup(key)
	return ok
}

// Index returns the display position of key, or -1.
func Index(key Key) int {
	for i, p := range catalog {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// At returns the key at display position idx, wrapping around in both directions.
func At(idx int) Key {
	n := len(catalog)
	idx %= n
	if idx < 0 {
		idx += n
	}
	return catalog[idx].Key
}

// ParseKey accepts a key or a label, case-insensitively.
func ParseKey(value string) (Key, error) {
	value = strings.TrimSpace(value)
	for _, p := range catalog {
		if strings.EqualFold(value, string(p.Key)) || strings.EqualFold(value, p.Label) {
			return p.Key, nil
		}
	}
	return "", fmt.Errorf("unknown perspective %q", value)
}
