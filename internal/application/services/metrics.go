package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so tests can create as many as they like
type Metrics struct {
	registry *prometheus.Registry

	DocumentSaves   *prometheus.CounterVec
	SaveDuration    prometheus.Histogram
	Exports         *prometheus.CounterVec
	PreviewActions  *prometheus.CounterVec
	OpenSessions    prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	SessionsPurged  prometheus.Counter
	ProjectsCreated prometheus.Counter
}

// NewMetrics registers every builder metric on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appcanvas_document_saves_total",
			Help: "Editor saves by result (success, failure, noop).",
		}, []string{"result"}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "appcanvas_document_save_duration_seconds",
			Help:    "Time spent persisting one editor save.",
			Buckets: prometheus.DefBuckets,
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appcanvas_exports_total",
			Help: "Rendered exports by format (html, config, share).",
		}, []string{"format"}),
		PreviewActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appcanvas_preview_actions_total",
			Help: "Preview actions executed by type and result.",
		}, []string{"type", "result"}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "appcanvas_editor_sessions",
			Help: "Editor sessions currently held in memory.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appcanvas_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "appcanvas_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appcanvas_sessions_purged_total",
			Help: "Expired sign-in sessions removed by the scheduler.",
		}),
		ProjectsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appcanvas_projects_created_total",
			Help: "Projects created.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.DocumentSaves,
		m.SaveDuration,
		m.Exports,
		m.PreviewActions,
		m.OpenSessions,
		m.HTTPRequests,
		m.HTTPDuration,
		m.SessionsPurged,
		m.ProjectsCreated,
	)
	return m
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
