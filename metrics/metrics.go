// Package metrics exposes store activity as Prometheus metrics.
//
// [Metrics] implements [store.Observer]; pass it to the store with
// [store.WithObserver] and serve [Metrics.Handler] over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.jacobcolvin.com/loghound/record"
	"go.jacobcolvin.com/loghound/store"
)

// Namespace prefixes every metric name.
const Namespace = "loghound"

const shutdownTimeout = 5 * time.Second

// Metrics counts records logged, rejected, evicted and cleared.
//
// Create instances with [New].
type Metrics struct {
	Logged   *prometheus.CounterVec
	Rejected *prometheus.CounterVec
	Evicted  *prometheus.CounterVec
	Cleared  prometheus.Counter
	Records  *prometheus.GaugeVec

	registry *prometheus.Registry
}

var _ store.Observer = (*Metrics)(nil)

// New creates a [Metrics] with its own registry. With runtime set, Go and
// process collectors are registered too.
func New(runtime bool) *Metrics {
	reg := prometheus.NewRegistry()

	if runtime {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector())
	}

	return &Metrics{
		Logged: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_logged_total",
				Help:      "records accepted by the store",
			},
			[]string{"level"},
		),
		Rejected: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_rejected_total",
				Help:      "log calls refused by the store",
			},
			[]string{"reason"},
		),
		Evicted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_evicted_total",
				Help:      "records removed to stay within capacity",
			},
			[]string{"level"},
		),
		Cleared: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_cleared_total",
				Help:      "records removed by clear",
			},
		),
		Records: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "records",
				Help:      "records currently stored",
			},
			[]string{"level"},
		),
		registry: reg,
	}
}

// RecordLogged implements [store.Observer].
func (m *Metrics) RecordLogged(r *record.Record) {
	m.Logged.WithLabelValues(r.Level.Name()).Inc()
	m.Records.WithLabelValues(r.Level.Name()).Inc()
}

// RecordRejected implements [store.Observer].
func (m *Metrics) RecordRejected(reason store.RejectReason) {
	m.Rejected.WithLabelValues(string(reason)).Inc()
}

// RecordEvicted implements [store.Observer].
func (m *Metrics) RecordEvicted(r *record.Record) {
	m.Evicted.WithLabelValues(r.Level.Name()).Inc()
	m.Records.WithLabelValues(r.Level.Name()).Dec()
}

// RecordsCleared implements [store.Observer].
func (m *Metrics) RecordsCleared(n int) {
	m.Cleared.Add(float64(n))
	m.Records.Reset()
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an [http.Handler] serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve serves the metrics on addr at /metrics until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve metrics: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
