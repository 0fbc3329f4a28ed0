package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"net/http"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xcursor/lib/infra"
)

type MetricsExporterType string

const (
	NoneMetrics       MetricsExporterType = "none"
	ConsoleMetrics    MetricsExporterType = "console"
	PrometheusMetrics MetricsExporterType = "prometheus"
)

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case "", NoneMetrics:
		return NoneMetrics, nil
	case ConsoleMetrics, PrometheusMetrics:
		return t, nil
	default:
	}
	return NoneMetrics, infra.NewErrorStack("[observability] unknown metrics exporter " + typ)
}

// MetricsExporter is the installed global meter provider.
// Handler is only set for the prometheus exporter.
type MetricsExporter struct {
	Type     MetricsExporterType
	Handler  http.Handler
	shutdown func(ctx context.Context) error
}

func (e *MetricsExporter) Shutdown(ctx context.Context) error {
	if e == nil || e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

func NewMetricsExporter(typ MetricsExporterType, interval time.Duration) (*MetricsExporter, error) {
	var (
		shutdown func(ctx context.Context) error
		handler  http.Handler
		err      error
	)
	switch typ {
	case ConsoleMetrics:
		shutdown, err = newConsoleMetricsExporter(interval, interval)
	case PrometheusMetrics:
		registry := promclient.NewRegistry()
		shutdown, err = newPrometheusMetricsExporter(registry)
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	case NoneMetrics:
		return &MetricsExporter{Type: NoneMetrics}, nil
	default:
		return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + string(typ))
	}
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] create metrics exporter")
	}
	return &MetricsExporter{
		Type:     typ,
		Handler:  handler,
		shutdown: shutdown,
	}, nil
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(registry promclient.Registerer) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}
