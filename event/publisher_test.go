package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/loghound/event"
)

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts    []event.Option
		wantCap int
	}{
		"default buffer size": {
			opts:    nil,
			wantCap: 64,
		},
		"custom buffer size": {
			opts:    []event.Option{event.WithBufferSize(128)},
			wantCap: 128,
		},
		"clamp zero to one": {
			opts:    []event.Option{event.WithBufferSize(0)},
			wantCap: 1,
		},
		"clamp negative to one": {
			opts:    []event.Option{event.WithBufferSize(-5)},
			wantCap: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := event.NewPublisher[int](tc.opts...)

			sub := pub.Subscribe()
			defer sub.Close()

			assert.Equal(t, tc.wantCap, cap(sub.C()))
		})
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		numSubscribers int
	}{
		"single subscriber":    {numSubscribers: 1},
		"multiple subscribers": {numSubscribers: 3},
		"no subscribers":       {numSubscribers: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := event.NewPublisher[string]()

			subs := make([]*event.Subscription[string], tc.numSubscribers)
			for i := range subs {
				subs[i] = pub.Subscribe()
			}

			pub.Publish("hello")

			for _, sub := range subs {
				assert.Equal(t, "hello", <-sub.C())
			}

			assert.Equal(t, tc.numSubscribers, pub.Len())
		})
	}
}

func TestRingBuffer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		bufSize     int
		publish     []int
		want        []int
		wantDropped uint64
	}{
		"drops oldest on full": {
			bufSize:     2,
			publish:     []int{1, 2, 3, 4},
			want:        []int{3, 4},
			wantDropped: 2,
		},
		"preserves newest values": {
			bufSize:     3,
			publish:     []int{1, 2, 3, 4, 5},
			want:        []int{3, 4, 5},
			wantDropped: 2,
		},
		"nothing dropped below capacity": {
			bufSize: 4,
			publish: []int{1, 2},
			want:    []int{1, 2},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := event.NewPublisher[int](event.WithBufferSize(tc.bufSize))
			sub := pub.Subscribe()

			for _, v := range tc.publish {
				pub.Publish(v)
			}

			var got []int
			for range tc.want {
				got = append(got, <-sub.C())
			}

			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantDropped, sub.Dropped())
		})
	}
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()

	t.Run("stops delivery", func(t *testing.T) {
		t.Parallel()

		pub := event.NewPublisher[string]()
		sub := pub.Subscribe()

		pub.Publish("before")
		sub.Close()

		// Trigger compaction.
		pub.Publish("after")

		assert.Equal(t, "before", <-sub.C())

		_, open := <-sub.C()
		assert.False(t, open, "channel should be closed after subscription close + compaction")
		assert.Zero(t, pub.Len())
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		pub := event.NewPublisher[string]()
		sub := pub.Subscribe()

		sub.Close()
		sub.Close()

		pub.Publish("x")

		_, open := <-sub.C()
		assert.False(t, open)
	})
}

func TestPublisherClose(t *testing.T) {
	t.Parallel()

	t.Run("closes all subscriptions", func(t *testing.T) {
		t.Parallel()

		pub := event.NewPublisher[int]()
		sub1 := pub.Subscribe()
		sub2 := pub.Subscribe()

		require.NoError(t, pub.Close())

		_, open1 := <-sub1.C()
		_, open2 := <-sub2.C()

		assert.False(t, open1)
		assert.False(t, open2)
	})

	t.Run("publish after close is no-op", func(t *testing.T) {
		t.Parallel()

		pub := event.NewPublisher[int]()
		sub := pub.Subscribe()

		require.NoError(t, pub.Close())
		pub.Publish(1)

		_, open := <-sub.C()
		assert.False(t, open)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		pub := event.NewPublisher[int]()
		require.NoError(t, pub.Close())
		require.NoError(t, pub.Close())
	})

	t.Run("subscribe after close", func(t *testing.T) {
		t.Parallel()

		pub := event.NewPublisher[int]()
		require.NoError(t, pub.Close())

		sub := pub.Subscribe()
		_, open := <-sub.C()
		assert.False(t, open, "subscription from closed publisher should have closed channel")
	})
}

func TestPublisherConcurrency(t *testing.T) {
	t.Parallel()

	pub := event.NewPublisher[int](event.WithBufferSize(8))

	var wg sync.WaitGroup

	for i := range 5 {
		wg.Go(func() {
			for j := range 100 {
				pub.Publish(i*100 + j)
			}
		})
	}

	for range 5 {
		wg.Go(func() {
			sub := pub.Subscribe()
			for range 20 {
				select {
				case <-sub.C():
				default:
				}
			}

			sub.Close()
		})
	}

	wg.Wait()
	require.NoError(t, pub.Close())
}
