package store

import "go.jacobcolvin.com/loghound/record"

// EventKind identifies the change announced by an [Event].
type EventKind string

const (
	// EventLogged announces a new record.
	EventLogged EventKind = "logged"
	// EventEvicted announces a record removed to honor the capacity.
	EventEvicted EventKind = "evicted"
	// EventCleared announces that every record was removed.
	EventCleared EventKind = "cleared"
	// EventRefiltered announces that visibility was recomputed for every
	// record.
	EventRefiltered EventKind = "refiltered"
)

// Event describes a change to a [Store].
type Event struct {
	Kind EventKind
	// Record is set for [EventLogged] and [EventEvicted].
	Record record.Record
	// Removed is the number of records removed by [EventCleared].
	Removed int
}

// RejectReason explains why [Store.Log] refused a call.
type RejectReason string

// Reject reasons.
const (
	ReasonDisabled     RejectReason = "disabled"
	ReasonNoLevel      RejectReason = "no_level"
	ReasonUnknownLevel RejectReason = "unknown_level"
	ReasonBelowMinimum RejectReason = "below_minimum"
	ReasonBlankText    RejectReason = "blank_text"
	ReasonInvalidTag   RejectReason = "invalid_tag"
)

// Observer is notified synchronously of store activity. Implementations must
// not call back into the store.
type Observer interface {
	RecordLogged(r *record.Record)
	RecordRejected(reason RejectReason)
	RecordEvicted(r *record.Record)
	RecordsCleared(n int)
}

type nopObserver struct{}

func (nopObserver) RecordLogged(*record.Record)  {}
func (nopObserver) RecordRejected(RejectReason)  {}
func (nopObserver) RecordEvicted(*record.Record) {}
func (nopObserver) RecordsCleared(int)           {}
