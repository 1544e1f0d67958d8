// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the extraction service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/content-extraction/infrastructure/metrics"
)

const (
	serviceName = "content-extraction"
	namespace   = "content_extraction"
)

// Article outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeMissingContent = "missing_content"
	OutcomeInvalid        = "invalid"
	OutcomeModelError     = "model_error"
	OutcomeStoreError     = "store_error"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Metrics holds the extraction Prometheus collectors.
type Metrics struct {
	ArticlesProcessed   *prometheus.CounterVec
	ExtractionFallbacks prometheus.Counter
	ModelDuration       *prometheus.HistogramVec
	StoreDuration       *prometheus.HistogramVec
	BatchSize           prometheus.Histogram

	HTTP *metrics.HTTPMetrics
}

// Provider wraps the metrics registry and tracer. A nil *Provider is valid
// and records nothing.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider creates a Provider with its own registry, including the Go
// runtime and process collectors.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(reg),
		registry: reg,
	}
}

func initMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ArticlesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_processed_total",
			Help:      "Articles processed by outcome",
		}, []string{"outcome"}),
		ExtractionFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_fallbacks_total",
			Help:      "Model replies that could not be parsed and were replaced by a fallback record",
		}),
		ModelDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Language model call latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider", "status"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_write_duration_seconds",
			Help:      "Store insert latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"driver", "status"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of articles per request",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 200, 500},
		}),
		HTTP: metrics.NewHTTPMetrics(reg, namespace),
	}
}

// Registry returns the registry the collectors are registered on.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the Prometheus HTTP handler for /metrics.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// RecordArticle counts one processed article.
func (p *Provider) RecordArticle(_ context.Context, outcome string) {
	if p == nil {
		return
	}
	p.Metrics.ArticlesProcessed.WithLabelValues(outcome).Inc()
}

// RecordFallback counts one degraded extraction.
func (p *Provider) RecordFallback(_ context.Context) {
	if p == nil {
		return
	}
	p.Metrics.ExtractionFallbacks.Inc()
}

// RecordModelCall records a model call's latency.
func (p *Provider) RecordModelCall(_ context.Context, provider string, err error, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.ModelDuration.WithLabelValues(provider, status(err)).Observe(duration.Seconds())
}

// RecordStoreWrite records a store insert's latency.
func (p *Provider) RecordStoreWrite(_ context.Context, driver string, err error, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.StoreDuration.WithLabelValues(driver, status(err)).Observe(duration.Seconds())
}

// RecordBatchSize records the size of a submitted batch.
func (p *Provider) RecordBatchSize(size int) {
	if p == nil {
		return
	}
	p.Metrics.BatchSize.Observe(float64(size))
}

// StartSpan starts a new trace span. The caller ends it.
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil || p.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
