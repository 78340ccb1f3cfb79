package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.jacobcolvin.com/loghound/event"
	"go.jacobcolvin.com/loghound/filter"
	"go.jacobcolvin.com/loghound/level"
	"go.jacobcolvin.com/loghound/record"
	"go.jacobcolvin.com/loghound/tag"
)

// Capacity bounds.
const (
	MinCapacity     = 100
	MaxCapacity     = 10000
	DefaultCapacity = 2000
)

var (
	// ErrValidation indicates a rejected argument. The store is unchanged.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCapacity indicates a capacity outside
	// [MinCapacity, MaxCapacity].
	ErrInvalidCapacity = fmt.Errorf("%w: invalid capacity", ErrValidation)
)

// Store is a bounded, filtered, in-memory sequence of log records.
//
// Create instances with [New].
type Store struct {
	clock    func() time.Time
	logger   *slog.Logger
	observer Observer
	registry *level.Registry
	catalog  *tag.Catalog
	chain    *filter.Chain
	events   *event.Publisher[Event]
	counts   map[level.ID]int
	tagMode  tag.Mode
	search   string
	records  []*record.Record
	next     uint64
	capacity int
	mu       sync.Mutex
	disabled bool
}

type options struct {
	clock     func() time.Time
	logger    *slog.Logger
	observer  Observer
	registry  *level.Registry
	eventOpts []event.Option
	capacity  int
}

// Option configures a [Store].
type Option func(*options)

// WithCapacity sets the initial capacity. [New] fails if n is outside
// [MinCapacity, MaxCapacity].
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithRegistry sets the level registry. By default a registry holding
// [level.Defaults] is created.
func WithRegistry(r *level.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock sets the function used to timestamp records.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithObserver registers an [Observer].
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithEventBufferSize sets the channel size of subscriptions created by
// [Store.Subscribe].
func WithEventBufferSize(n int) Option {
	return func(o *options) {
		o.eventOpts = append(o.eventOpts, event.WithBufferSize(n))
	}
}

// New creates a [Store]. The filter chain starts with a [filter.Level]
// filter; the tag mode starts as [tag.ModeAny].
func New(opts ...Option) (*Store, error) {
	o := options{
		capacity: DefaultCapacity,
		clock:    time.Now,
		logger:   slog.New(slog.DiscardHandler),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	if o.observer == nil {
		o.observer = nopObserver{}
	}

	if o.clock == nil {
		o.clock = time.Now
	}

	err := validateCapacity(o.capacity)
	if err != nil {
		return nil, err
	}

	if o.registry == nil {
		o.registry, err = level.NewRegistry(level.Defaults()...)
		if err != nil {
			return nil, fmt.Errorf("create level registry: %w", err)
		}
	}

	chain, err := filter.NewChain(filter.Level{})
	if err != nil {
		return nil, fmt.Errorf("create filter chain: %w", err)
	}

	return &Store{
		clock:    o.clock,
		logger:   o.logger,
		observer: o.observer,
		registry: o.registry,
		catalog:  tag.NewCatalog(),
		chain:    chain,
		events:   event.NewPublisher[Event](o.eventOpts...),
		counts:   make(map[level.ID]int),
		tagMode:  tag.ModeAny,
		capacity: o.capacity,
	}, nil
}

func validateCapacity(n int) error {
	if n < MinCapacity || n > MaxCapacity {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCapacity, n, MinCapacity, MaxCapacity)
	}

	return nil
}

// Log classifies args with [record.Classify] and stores the result. It
// returns false, leaving the store unchanged, when the store is disabled, no
// known level was given, the level is below the minimum, the text is blank,
// or any tag is invalid.
func (s *Store) Log(args ...any) bool {
	d := record.Classify(args...)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, reason := s.build(d)
	if reason != "" {
		s.logger.Debug("log call rejected",
			slog.String("reason", string(reason)),
			slog.String("text", d.Text),
		)
		s.observer.RecordRejected(reason)

		return false
	}

	s.insert(r)

	return true
}

func (s *Store) build(d record.Draft) (*record.Record, RejectReason) {
	if s.disabled {
		return nil, ReasonDisabled
	}

	if d.Level == nil {
		return nil, ReasonNoLevel
	}

	lvl, ok := s.registry.Resolve(d.Level)
	if !ok {
		return nil, ReasonUnknownLevel
	}

	if !s.registry.Reachable(lvl) {
		return nil, ReasonBelowMinimum
	}

	if strings.TrimSpace(d.Text) == "" {
		return nil, ReasonBlankText
	}

	if tag.Validate(d.Tags) != nil {
		return nil, ReasonInvalidTag
	}

	return &record.Record{
		Level: lvl,
		Text:  d.Text,
		Tags:  d.Tags,
		Error: d.Error,
	}, ""
}

func (s *Store) insert(r *record.Record) {
	r.Sequence = s.next
	s.next++
	r.Timestamp = s.clock()

	s.catalog.Add(r.Tags...)
	s.records = append(s.records, r)
	s.counts[r.Level.ID()]++
	r.Visible = s.chain.Evaluate(r)

	s.observer.RecordLogged(r)
	s.events.Publish(Event{Kind: EventLogged, Record: r.Clone()})

	s.evictOverflow()
}

func (s *Store) evictOverflow() {
	for len(s.records) > s.capacity {
		r := s.records[0]
		s.records[0] = nil
		s.records = s.records[1:]

		s.counts[r.Level.ID()]--

		s.observer.RecordEvicted(r)
		s.events.Publish(Event{Kind: EventEvicted, Record: r.Clone()})
	}
}

// Trace logs args at the trace level.
func (s *Store) Trace(args ...any) bool { return s.logAt(level.IDTrace, args) }

// Debug logs args at the debug level.
func (s *Store) Debug(args ...any) bool { return s.logAt(level.IDDebug, args) }

// Info logs args at the info level.
func (s *Store) Info(args ...any) bool { return s.logAt(level.IDInfo, args) }

// Warn logs args at the warn level.
func (s *Store) Warn(args ...any) bool { return s.logAt(level.IDWarn, args) }

// Error logs args at the error level.
func (s *Store) Error(args ...any) bool { return s.logAt(level.IDError, args) }

// Fatal logs args at the fatal level. It does not exit.
func (s *Store) Fatal(args ...any) bool { return s.logAt(level.IDFatal, args) }

// logAt puts id first so that a level inside args still wins.
func (s *Store) logAt(id level.ID, args []any) bool {
	return s.Log(id, record.Group(args))
}

// SetCapacity changes the capacity, evicting the oldest records if the store
// now holds too many.
func (s *Store) SetCapacity(n int) error {
	err := validateCapacity(n)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.capacity = n
	s.evictOverflow()

	s.logger.Debug("capacity changed", slog.Int("capacity", n), slog.Int("records", len(s.records)))

	return nil
}

// Capacity returns the capacity.
func (s *Store) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.capacity
}

// Clear removes every record, resets the level counts and empties the tag
// catalog. It returns the removed records. Sequence numbers are not reset.
func (s *Store) Clear() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := snapshot(s.records, nil)

	s.records = nil
	clear(s.counts)
	s.catalog.Reset()

	// The viewing partition is gone, so the tag filter has no targets left.
	_ = s.chain.Add(filter.NewTag(nil, s.tagMode))

	s.observer.RecordsCleared(len(removed))
	s.events.Publish(Event{Kind: EventCleared, Removed: len(removed)})
	s.logger.Debug("records cleared", slog.Int("removed", len(removed)))

	return removed
}

// SetEnabled turns the store on or off. A disabled store rejects every
// [Store.Log] call.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disabled = !enabled
}

// Enabled reports whether the store accepts records.
func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.disabled
}

// Records returns a snapshot of every stored record, oldest first.
func (s *Store) Records() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot(s.records, nil)
}

// VisibleRecords returns a snapshot of the visible records, oldest first.
func (s *Store) VisibleRecords() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot(s.records, func(r *record.Record) bool { return r.Visible })
}

func snapshot(records []*record.Record, keep func(*record.Record) bool) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if keep == nil || keep(r) {
			out = append(out, r.Clone())
		}
	}

	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Counts returns the number of stored records per level name. Every
// registered level is present.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int)
	for _, l := range s.registry.Ordered() {
		out[l.Name()] = s.counts[l.ID()]
	}

	return out
}

// Count returns the number of stored records at the level matching ref.
func (s *Store) Count(ref any) int {
	l, ok := s.registry.Resolve(ref)
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[l.ID()]
}

// Registry returns the level registry.
func (s *Store) Registry() *level.Registry {
	return s.registry
}

// Subscribe returns a subscription to store [Event] values.
func (s *Store) Subscribe() *event.Subscription[Event] {
	return s.events.Subscribe()
}

// Close closes every subscription. The store stays usable.
func (s *Store) Close() error {
	return s.events.Close()
}
