package level

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrDuplicateLevel indicates a level ID or name is already registered.
	ErrDuplicateLevel = errors.New("duplicate level")
	// ErrUnknownLevel indicates a level reference could not be resolved.
	ErrUnknownLevel = errors.New("unknown level")
	// ErrInvalidDefinition indicates a malformed [Definition].
	ErrInvalidDefinition = errors.New("invalid level definition")
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// DuplicateLevelError is returned by [Registry.Register] when the ID or name
// of a [Definition] collides with a registered level.
type DuplicateLevelError struct {
	Existing *Level
	Field    string
	Value    string
}

func (e *DuplicateLevelError) Error() string {
	return fmt.Sprintf("%s: %s %q already used by %q", ErrDuplicateLevel, e.Field, e.Value, e.Existing.Name())
}

func (e *DuplicateLevelError) Unwrap() error {
	return ErrDuplicateLevel
}

// Registry is an ordered catalog of levels. Safe for concurrent use.
//
// Create instances with [NewRegistry].
type Registry struct {
	levels  []*Level // Sorted by descending ID.
	minimum ID
	mu      sync.RWMutex
}

// NewRegistry creates a [Registry] holding the given definitions. With no
// definitions the registry is empty; pass [Defaults] for the built-in set.
// The minimum level starts at [IDDebug].
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{minimum: IDDebug}

	for _, def := range defs {
		_, err := r.Register(def)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a level built from def. It returns a [*DuplicateLevelError]
// if the ID or name is already present.
func (r *Registry) Register(def Definition) (*Level, error) {
	name := strings.ToLower(strings.TrimSpace(def.Name))
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: name %q", ErrInvalidDefinition, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.levels {
		if l.id == def.ID {
			return nil, &DuplicateLevelError{Existing: l, Field: "id", Value: fmt.Sprint(int(def.ID))}
		}

		if l.name == name {
			return nil, &DuplicateLevelError{Existing: l, Field: "name", Value: name}
		}
	}

	l := newLevel(def)

	r.levels = append(r.levels, l)
	slices.SortFunc(r.levels, func(a, b *Level) int {
		return cmp.Compare(b.id, a.id)
	})

	return l, nil
}

// Resolve returns the level matching ref. Accepted references are an int or
// [ID] (matched by ID), a string or [Name] (matched case-insensitively by
// name), or a [*Level], which is returned as-is if it belongs to r.
func (r *Registry) Resolve(ref any) (*Level, bool) {
	switch v := ref.(type) {
	case *Level:
		return r.own(v)
	case ID:
		return r.byID(v)
	case int:
		return r.byID(ID(v))
	case Name:
		return r.byName(string(v))
	case string:
		return r.byName(v)
	}

	return nil, false
}

// MustResolve is like [Registry.Resolve] but returns an error wrapping
// [ErrUnknownLevel] when ref does not resolve.
func (r *Registry) MustResolve(ref any) (*Level, error) {
	l, ok := r.Resolve(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLevel, ref)
	}

	return l, nil
}

func (r *Registry) own(l *Level) (*Level, bool) {
	if l == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !slices.Contains(r.levels, l) {
		return nil, false
	}

	return l, true
}

func (r *Registry) byID(id ID) (*Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.levels {
		if l.id == id {
			return l, true
		}
	}

	return nil, false
}

func (r *Registry) byName(name string) (*Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.levels {
		if l.name == name {
			return l, true
		}
	}

	return nil, false
}

// Ordered returns all levels sorted by descending ID, most severe first.
func (r *Registry) Ordered() []*Level {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.levels)
}

// Names returns the level names in [Registry.Ordered] order.
func (r *Registry) Names() []string {
	levels := r.Ordered()

	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.name
	}

	return names
}

// SetEnabled sets the enabled flag of the level matching ref.
func (r *Registry) SetEnabled(ref any, enabled bool) (*Level, error) {
	l, err := r.MustResolve(ref)
	if err != nil {
		return nil, err
	}

	l.enabled.Store(enabled)

	return l, nil
}

// SetMinimum sets the minimum level; records below it are unreachable.
func (r *Registry) SetMinimum(ref any) error {
	l, err := r.MustResolve(ref)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.minimum = l.id
	r.mu.Unlock()

	return nil
}

// Minimum returns the minimum level ID.
func (r *Registry) Minimum() ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.minimum
}

// Reachable reports whether l is at or above the minimum level.
func (r *Registry) Reachable(l *Level) bool {
	return l != nil && l.id >= r.Minimum()
}
