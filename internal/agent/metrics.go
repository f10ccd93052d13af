package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics bundles two sinks: an OTel MeterProvider (stdout by default,
// or OTLP-HTTP when PROBING_OTLP_ENDPOINT is set) and the Prometheus
// registry served at GET /metrics. The request/query/inject collectors
// below are registered with the Prometheus registry only; the OTel
// Meter has no instruments of its own.
type Metrics struct {
	Provider *sdkmetric.MeterProvider
	Meter    metric.Meter
	Registry *prometheus.Registry

	HTTPRequests  prometheus.Counter
	QueryDuration prometheus.Histogram
	InjectAttach  *prometheus.CounterVec
}

// NewMetrics builds both sinks. otlpEndpoint empty selects the stdout
// exporter — the same fallback-to-stdout idiom the teacher uses for
// its own pluggable backends (cmd/bd/config.go's integration selection).
func NewMetrics(otlpEndpoint string) (*Metrics, error) {
	reader, err := newMetricReader(otlpEndpoint)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("github.com/probing-go/probing")

	reg := prometheus.NewRegistry()
	m := &Metrics{
		Provider: provider,
		Meter:    meter,
		Registry: reg,
		HTTPRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "probing_http_requests_total",
			Help: "Total HTTP requests handled by the agent server.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "probing_query_duration_ms",
			Help:    "Query engine evaluation duration in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
		InjectAttach: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "probing_inject_attach_total",
			Help: "Injector attach attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.HTTPRequests, m.QueryDuration, m.InjectAttach)
	return m, nil
}

func newMetricReader(otlpEndpoint string) (sdkmetric.Reader, error) {
	if otlpEndpoint == "" {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)), nil
	}
	exp, err := otlpmetrichttp.New(context.Background(), otlpmetrichttp.WithEndpoint(otlpEndpoint))
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

// Shutdown flushes and stops the OTel provider.
func (m *Metrics) Shutdown(ctx context.Context) {
	if err := m.Provider.Shutdown(ctx); err != nil {
		slog.Warn("metrics: shutdown error", "error", err)
	}
}
