// Package metrics provides Prometheus metrics for alias operations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one process. It implements
// alias.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec
	AliasesTotal     *prometheus.CounterVec
	DocumentDuration *prometheus.HistogramVec
	WatchEventsTotal prometheus.Counter
	LastRunTimestamp prometheus.Gauge
}

var _ alias.Observer = (*Metrics)(nil)

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ekr_documents_total",
				Help: "Documents processed by operation and outcome",
			},
			[]string{"op", "status"},
		),
		AliasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ekr_aliases_total",
				Help: "Generated aliases added or removed",
			},
			[]string{"op"},
		),
		DocumentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ekr_document_duration_seconds",
				Help:    "Time spent on one document read-modify-write",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
		WatchEventsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ekr_watch_events_total",
				Help: "Debounced file change events handled by watch mode",
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ekr_last_document_timestamp_seconds",
				Help: "Unix time of the last processed document",
			},
		),
	}
}

// ObserveDocument records the outcome of one document.
func (m *Metrics) ObserveDocument(op alias.Op, _ vault.Document, count int, err error, elapsed time.Duration) {
	status := "unchanged"
	switch {
	case err != nil:
		status = "error"
	case count > 0:
		status = "updated"
	}
	m.DocumentsTotal.WithLabelValues(string(op), status).Inc()
	if count > 0 {
		m.AliasesTotal.WithLabelValues(string(op)).Add(float64(count))
	}
	m.DocumentDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
	m.LastRunTimestamp.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Serve exposes /metrics and /health on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"ekr"}`))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.FromContext(ctx).Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
