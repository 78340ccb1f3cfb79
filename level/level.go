package level

import (
	"strings"
	"sync/atomic"
)

// Built-in level IDs.
const (
	IDFatal ID = 100
	IDError ID = 90
	IDWarn  ID = 80
	IDInfo  ID = 70
	IDDebug ID = 60
	IDTrace ID = 50
)

// ID is an ordinal level identifier. It can be passed anywhere a level
// reference is accepted.
type ID int

// Name is a level name. It can be passed anywhere a level reference is
// accepted and is matched case-insensitively.
type Name string

// Definition describes a level before registration.
type Definition struct {
	Name     string `json:"name"     yaml:"name"`
	ID       ID     `json:"id"       yaml:"id"`
	Disabled bool   `json:"disabled" yaml:"disabled"`
}

// Defaults returns the built-in level definitions, most severe first.
func Defaults() []Definition {
	return []Definition{
		{ID: IDFatal, Name: "fatal"},
		{ID: IDError, Name: "error"},
		{ID: IDWarn, Name: "warn"},
		{ID: IDInfo, Name: "info"},
		{ID: IDDebug, Name: "debug"},
		{ID: IDTrace, Name: "trace"},
	}
}

// Level is a single severity level. Its identity fields never change after
// creation; only the enabled flag is mutable.
//
// Create instances with [Registry.Register].
type Level struct {
	name    string
	label   string
	id      ID
	enabled atomic.Bool
}

func newLevel(def Definition) *Level {
	name := strings.ToLower(strings.TrimSpace(def.Name))

	l := &Level{
		id:    def.ID,
		name:  name,
		label: strings.ToUpper(name[:1]) + name[1:],
	}
	l.enabled.Store(!def.Disabled)

	return l
}

// ID returns the ordinal of the level.
func (l *Level) ID() ID {
	return l.id
}

// Name returns the lowercase name of the level.
func (l *Level) Name() string {
	return l.name
}

// Label returns the capitalized display form of the name.
func (l *Level) Label() string {
	return l.label
}

// Enabled reports whether records of this level are shown.
func (l *Level) Enabled() bool {
	return l.enabled.Load()
}

func (l *Level) String() string {
	return l.name
}
