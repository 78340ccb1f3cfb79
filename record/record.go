// Package record defines the stored log record and the classifier that turns
// loosely ordered logging arguments into a record draft.
package record

import (
	"slices"
	"time"

	"go.jacobcolvin.com/loghound/level"
)

// TimestampLayout is the layout used by [Record.TimestampText].
const TimestampLayout = "15:04:05.000"

// ErrorDetail carries structured error information attached to a record.
type ErrorDetail struct {
	Name    string `json:"name,omitempty"    yaml:"name,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Stack   string `json:"stack,omitempty"   yaml:"stack,omitempty"`
}

// NewErrorDetail builds an [ErrorDetail] from err. The name is the dynamic
// type of err, unless err provides its own through an ErrorName method.
func NewErrorDetail(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	d := &ErrorDetail{Message: err.Error()}

	if n, ok := err.(interface{ ErrorName() string }); ok {
		d.Name = n.ErrorName()
	} else {
		d.Name = typeName(err)
	}

	if s, ok := err.(interface{ Stack() string }); ok {
		d.Stack = s.Stack()
	}

	return d
}

// Record is a single stored log entry.
//
// Records are owned by the store; values handed to callers are snapshots.
type Record struct {
	Timestamp time.Time
	Level     *level.Level
	Error     *ErrorDetail
	Text      string
	Tags      []string
	Sequence  uint64
	Visible   bool
}

// TimestampText renders the timestamp as HH:MM:SS.mmm.
func (r *Record) TimestampText() string {
	return r.Timestamp.Format(TimestampLayout)
}

// Clone returns a copy of r that shares no mutable state with it.
func (r *Record) Clone() Record {
	c := *r
	c.Tags = slices.Clone(r.Tags)

	if r.Error != nil {
		e := *r.Error
		c.Error = &e
	}

	return c
}
