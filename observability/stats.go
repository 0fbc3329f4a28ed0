package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xcursor/lib/infra"
)

const appStatsPrefix = "xcursor/app"

var (
	once    sync.Once
	stats   *appStats
	initErr error
)

type appStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
}

func appStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(appStatsPrefix)
	builder.WriteByte('/')
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

func observeInt64(meter metric.Meter, name, desc string, fn func() int64) metric.Int64ObservableUpDownCounter {
	return lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		name,
		metric.WithDescription(desc),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(fn())
			return nil
		}),
	))
}

// InitAppStats registers the process level gauges and the go runtime
// instrumentation once, on the current global meter provider.
// Later calls return the result of the first one.
func InitAppStats(name string) error {
	once.Do(func() {
		meter := otel.Meter(
			appStatsName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats = &appStats{
			goroutines: observeInt64(meter, "app.core.goroutines", `The application goroutines' info.`, func() int64 {
				return int64(runtime.NumGoroutine())
			}),
			processes: observeInt64(meter, "app.core.processes", `The application processes' info.`, func() int64 {
				return int64(runtime.GOMAXPROCS(0))
			}),
		}
		if err := otelruntime.Start(); err != nil {
			initErr = infra.WrapErrorStackWithMessage(err, "[observability] start runtime instrumentation")
		}
	})
	return initErr
}
