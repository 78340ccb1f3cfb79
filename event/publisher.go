// Package event provides a non-blocking fan-out of values to subscribers.
//
// The store uses it to announce new, evicted and re-filtered records to
// presentation code running in other goroutines:
//
//	pub := event.NewPublisher[string]()
//	sub := pub.Subscribe()
//	defer sub.Close()
//
//	pub.Publish("hello")
//	v := <-sub.C()
package event

import (
	"sync"
	"sync/atomic"
)

const defaultBufferSize = 64

// Publisher fans out published values to subscribers.
//
// Each subscriber has a buffered channel with ring-buffer semantics: when it
// is full the oldest value is dropped, so [Publisher.Publish] never blocks.
// Safe for concurrent use.
//
// Create instances with [NewPublisher].
type Publisher[T any] struct {
	subscribers []*Subscription[T]
	bufSize     int
	mu          sync.Mutex
	closed      bool
}

// NewPublisher creates a [Publisher] with the given options.
// The default buffer size is 64.
func NewPublisher[T any](opts ...Option) *Publisher[T] {
	var cfg config

	cfg.bufSize = defaultBufferSize
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Publisher[T]{bufSize: cfg.bufSize}
}

type config struct {
	bufSize int
}

// Option configures a [Publisher].
type Option func(*config)

// WithBufferSize sets the channel buffer size for new subscriptions.
// Values less than 1 are clamped to 1.
func WithBufferSize(n int) Option {
	return func(c *config) {
		c.bufSize = max(n, 1)
	}
}

// Publish delivers v to all active subscribers, dropping each full
// subscriber's oldest value to make room. Closed subscriptions are compacted
// out of the subscriber list. Publishing after [Publisher.Close] is a no-op.
func (p *Publisher[T]) Publish(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	alive := p.subscribers[:0]
	for _, sub := range p.subscribers {
		if sub.closed.Load() {
			close(sub.ch)
			continue
		}

		sub.deliver(v)

		alive = append(alive, sub)
	}

	for i := len(alive); i < len(p.subscribers); i++ {
		p.subscribers[i] = nil
	}

	p.subscribers = alive
}

// Subscribe creates and registers a new [Subscription]. If the Publisher is
// already closed the returned subscription's channel is immediately closed.
func (p *Publisher[T]) Subscribe() *Subscription[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription[T]{
		ch: make(chan T, p.bufSize),
	}

	if p.closed {
		close(sub.ch)
		return sub
	}

	p.subscribers = append(p.subscribers, sub)

	return sub
}

// Len returns the number of registered subscriptions, including closed ones
// that have not been compacted yet.
func (p *Publisher[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.subscribers)
}

// Close marks the Publisher as closed, closes all subscription channels,
// and releases the subscriber list. Idempotent.
func (p *Publisher[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	for _, sub := range p.subscribers {
		close(sub.ch)
	}

	p.subscribers = nil

	return nil
}

// Subscription receives values from a [Publisher].
type Subscription[T any] struct {
	ch      chan T
	closed  atomic.Bool
	dropped atomic.Uint64
}

func (s *Subscription[T]) deliver(v T) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}

		// Full: drop the oldest. The reader may have drained it already, in
		// which case the next send succeeds.
		select {
		case <-s.ch:
			s.dropped.Add(1)
		default:
		}
	}
}

// C returns the read-only channel that delivers values.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Dropped returns how many values were discarded because the subscriber fell
// behind.
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}

// Close marks the subscription as closed. The Publisher will close the
// underlying channel on its next Publish or Close call. Idempotent.
func (s *Subscription[T]) Close() {
	s.closed.Store(true)
}
