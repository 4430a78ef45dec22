// Package metrics exposes per-run counters for daemon deployments.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the sync counters and the optional HTTP listener.
type Metrics struct {
	RecordsCreated prometheus.Counter
	RecordsSkipped *prometheus.CounterVec
	RecordsFailed  *prometheus.CounterVec
	GeocodeLookups *prometheus.CounterVec
	RunDuration    prometheus.Summary

	server *http.Server
}

// New registers the counters on the default registry and prepares the
// listener for addr.
func New(addr string) *Metrics {
	m := &Metrics{
		RecordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meetingsync",
			Name:      "records_created_total",
			Help:      "Meetings published to the registry",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetingsync",
			Name:      "records_skipped_total",
			Help:      "Records skipped, by reason",
		}, []string{"reason"}),
		RecordsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetingsync",
			Name:      "records_failed_total",
			Help:      "Publish attempts rejected or errored, by reason",
		}, []string{"reason"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meetingsync",
			Name:      "geocode_lookups_total",
			Help:      "Geocode resolutions, by result (cache_hit or live)",
		}, []string{"result"}),
		RunDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "meetingsync",
			Name:      "run_duration_seconds",
			Help:      "Time spent on one full sync run",
		}),
	}
	prometheus.MustRegister(
		m.RecordsCreated, m.RecordsSkipped, m.RecordsFailed,
		m.GeocodeLookups, m.RunDuration,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	m.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return m
}

// Serve blocks on the /metrics listener until shutdown.
func (m *Metrics) Serve() error {
	return m.server.ListenAndServe()
}

// Shutdown stops the listener if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
