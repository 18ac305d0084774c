// Package metrics exposes pipeline and HTTP counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/models"
)

var _ ingestion_engine.Observer = (*PipelineMetrics)(nil)

// PipelineMetrics implements ingestion_engine.Observer on Prometheus collectors.
type PipelineMetrics struct {
	tasksSubmitted     *prometheus.CounterVec
	chainsInFlight     prometheus.Gauge
	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	analysesTotal      *prometheus.CounterVec
	analysisDuration   prometheus.Histogram

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewPipelineMetrics creates the collectors and registers them on reg.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		tasksSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_tasks_submitted_total",
				Help: "Files submitted, by validation result",
			},
			[]string{"validation"},
		),
		chainsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lumen_chains_in_flight",
				Help: "Task chains currently extracting or analyzing",
			},
		),
		extractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_extractions_total",
				Help: "Finished extractions, by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		extractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lumen_extraction_duration_seconds",
				Help:    "Duration of text extraction",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"strategy"},
		),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_analyses_total",
				Help: "Finished analysis requests, by outcome",
			},
			[]string{"outcome"},
		),
		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lumen_analysis_duration_seconds",
				Help:    "Duration of analysis requests",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumen_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "lumen_http_request_duration_seconds",
				Help: "Duration of API requests",
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.tasksSubmitted,
		m.chainsInFlight,
		m.extractionsTotal,
		m.extractionDuration,
		m.analysesTotal,
		m.analysisDuration,
		m.RequestsTotal,
		m.RequestDuration,
	)
	return m
}

func (m *PipelineMetrics) TaskSubmitted(valid bool) {
	label := "invalid"
	if valid {
		label = "valid"
	}
	m.tasksSubmitted.WithLabelValues(label).Inc()
}

func (m *PipelineMetrics) ChainStarted() { m.chainsInFlight.Inc() }
func (m *PipelineMetrics) ChainFinished() { m.chainsInFlight.Dec() }

func (m *PipelineMetrics) ExtractionFinished(strategy models.Strategy, outcome string, took time.Duration) {
	m.extractionsTotal.WithLabelValues(string(strategy), outcome).Inc()
	m.extractionDuration.WithLabelValues(string(strategy)).Observe(took.Seconds())
}

func (m *PipelineMetrics) AnalysisFinished(outcome string, took time.Duration) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
	m.analysisDuration.Observe(took.Seconds())
}
