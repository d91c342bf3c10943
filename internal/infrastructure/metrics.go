package infrastructure

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run pipeline counters on a private registry. A batch
// job has no scrape endpoint, so the registry is written to a node_exporter
// textfile once the run ends.
type Metrics struct {
	registry *prometheus.Registry

	SalesExtracted   prometheus.Counter
	CustomersLoaded  prometheus.Gauge
	SalesProcessed   prometheus.Counter
	SalesRejected    *prometheus.CounterVec
	LoaderRuns       *prometheus.CounterVec
	StageDuration    *prometheus.GaugeVec
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates and registers the pipeline metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SalesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salesetl",
			Name:      "sales_extracted_total",
			Help:      "Raw sales rows read from the sales source.",
		}),
		CustomersLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "salesetl",
			Name:      "customers_loaded",
			Help:      "Customer records indexed for the join.",
		}),
		SalesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salesetl",
			Name:      "sales_processed_total",
			Help:      "Sales accepted by the transform stage.",
		}),
		SalesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesetl",
			Name:      "sales_rejected_total",
			Help:      "Sales dropped by the transform stage, by reason.",
		}, []string{"reason"}),
		LoaderRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesetl",
			Name:      "loader_runs_total",
			Help:      "Loader executions by loader and status.",
		}, []string{"loader", "status"}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "salesetl",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each stage.",
		}, []string{"stage"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "salesetl",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.SalesExtracted,
		m.CustomersLoaded,
		m.SalesProcessed,
		m.SalesRejected,
		m.LoaderRuns,
		m.StageDuration,
		m.LastRunTimestamp,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records how long a stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// ObserveLoader counts one loader execution
func (m *Metrics) ObserveLoader(loader string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.LoaderRuns.WithLabelValues(loader, status).Inc()
}

// WriteTextfile writes the registry in the Prometheus text format
func (m *Metrics) WriteTextfile(path string) error {
	m.LastRunTimestamp.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
