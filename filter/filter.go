// Package filter provides record predicates and the [Chain] that combines
// them.
//
// Three filters are provided: [Level] hides records of disabled levels, [Tag]
// compares record tags against a target set, and [Text] searches message
// text. A [Chain] holds at most one filter per ID and shows a record only if
// every filter matches it.
package filter

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.jacobcolvin.com/loghound/record"
)

// Filter IDs used by the built-in filters.
const (
	LevelID = "level"
	TagID   = "tag"
	TextID  = "text"
)

// ErrInvalidFilter indicates a value that cannot be used as a [Filter].
var ErrInvalidFilter = errors.New("invalid filter")

// Filter is a predicate over records. Filters with equal IDs replace each
// other in a [Chain].
type Filter interface {
	ID() string
	Match(r *record.Record) bool
}

// Chain is the AND-combination of a set of filters, keyed by ID.
//
// A Chain is not safe for concurrent use; the store serializes access.
type Chain struct {
	filters map[string]Filter
	order   []string
}

// NewChain creates a [Chain] holding filters.
func NewChain(filters ...Filter) (*Chain, error) {
	c := &Chain{filters: make(map[string]Filter)}

	for _, f := range filters {
		err := c.Add(f)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Add inserts f, replacing any filter with the same ID. Nil filters,
// including nil pointers of a concrete filter type, are rejected.
func (c *Chain) Add(f Filter) error {
	if isNil(f) {
		return fmt.Errorf("%w: nil filter", ErrInvalidFilter)
	}

	id := f.ID()
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: blank id", ErrInvalidFilter)
	}

	if _, ok := c.filters[id]; !ok {
		c.order = append(c.order, id)
	}

	c.filters[id] = f

	return nil
}

// Remove deletes the filter with the given ID, reporting whether it existed.
func (c *Chain) Remove(id string) bool {
	if _, ok := c.filters[id]; !ok {
		return false
	}

	delete(c.filters, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })

	return true
}

// Get returns the filter with the given ID.
func (c *Chain) Get(id string) (Filter, bool) {
	f, ok := c.filters[id]
	return f, ok
}

// IDs returns the filter IDs in insertion order.
func (c *Chain) IDs() []string {
	return slices.Clone(c.order)
}

// Len returns the number of filters.
func (c *Chain) Len() int {
	return len(c.order)
}

// Evaluate reports whether every filter matches r. An empty chain matches
// everything.
func (c *Chain) Evaluate(r *record.Record) bool {
	for _, id := range c.order {
		if !c.filters[id].Match(r) {
			return false
		}
	}

	return true
}

// Apply evaluates every record and stores the result in its Visible field.
func (c *Chain) Apply(records []*record.Record) {
	for _, r := range records {
		r.Visible = c.Evaluate(r)
	}
}

func isNil(f Filter) bool {
	if f == nil {
		return true
	}

	v := reflect.ValueOf(f)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
