// Package tag provides tag name validation, the tag matching modes, and the
// [Catalog] of tags seen by a store.
package tag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidTag indicates a tag name that does not match the naming rule.
	ErrInvalidTag = errors.New("invalid tag name")
	// ErrUnknownMode indicates an unrecognized tag mode string.
	ErrUnknownMode = errors.New("unknown tag mode")
)

// A tag starts with a letter, followed by one or more letters, digits,
// hyphens or underscores.
var namePattern = regexp.MustCompile(`(?i)^[a-z][-a-z0-9_]+$`)

// Valid reports whether name is a valid tag name.
func Valid(name string) bool {
	return namePattern.MatchString(name)
}

// Validate returns an error wrapping [ErrInvalidTag] for the first invalid
// name in names.
func Validate(names []string) error {
	for _, n := range names {
		if !Valid(n) {
			return fmt.Errorf("%w: %q", ErrInvalidTag, n)
		}
	}

	return nil
}

// Mode selects how a record's tags are compared against a target tag set.
type Mode string

const (
	// ModeAny matches records sharing at least one target tag.
	ModeAny Mode = "any"
	// ModeIntersection matches records carrying every target tag.
	ModeIntersection Mode = "intersection"
	// ModeOnly matches records whose tags equal the target tags.
	ModeOnly Mode = "only"
	// ModeExclusion matches records sharing no target tag.
	ModeExclusion Mode = "exclusion"
)

var modeAliases = map[string]Mode{
	"any":          ModeAny,
	"intersection": ModeIntersection,
	"int":          ModeIntersection,
	"only":         ModeOnly,
	"ony":          ModeOnly,
	"exclusion":    ModeExclusion,
	"exc":          ModeExclusion,
}

// ParseMode parses a mode name. The short forms int, ony and exc are
// accepted as well.
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}

	return m, nil
}

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeAny, ModeIntersection, ModeOnly, ModeExclusion:
		return true
	}

	return false
}

// GetAllModeStrings returns the canonical mode names.
func GetAllModeStrings() []string {
	return []string{
		string(ModeAny),
		string(ModeIntersection),
		string(ModeOnly),
		string(ModeExclusion),
	}
}
