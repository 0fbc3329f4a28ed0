package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/safeopen"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xcursor/internal/harness"
	"github.com/benz9527/xcursor/lib/list"
	"github.com/benz9527/xcursor/observability"
	"github.com/benz9527/xcursor/xlog"
)

type banner struct{}

func (banner) JSON() string {
	return `{"app":"xcursor","desc":"cursor list command harness"}`
}

func (banner) PlainText() string {
	return "xcursor :: cursor list command harness"
}

func newLogger(cfg *config) xlog.XLogger {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerEncoder(cfg.LogEncoder),
		xlog.WithXLoggerLevel(cfg.LogLevel),
		xlog.WithXLoggerContextFieldExtract(harness.ContextKeyScript, ""),
		xlog.WithXLoggerContextFieldExtract(harness.ContextKeyLine, "lineNo"),
	)
	logger.Banner(banner{})
	return logger
}

// scriptIO is where the harness reads commands from and writes results to.
type scriptIO struct {
	open func() (io.ReadCloser, error)
	out  io.Writer
}

func newMetricsExporter(lc fx.Lifecycle, cfg *config, logger xlog.XLogger) (*observability.MetricsExporter, error) {
	exporter, err := observability.NewMetricsExporter(cfg.Metrics, cfg.MetricsInterval)
	if err != nil {
		return nil, err
	}
	if err = observability.InitAppStats("cli"); err != nil {
		logger.ErrorStack(err, "app stats disabled")
	}

	var srv *http.Server
	if exporter.Handler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler)
		srv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if srv == nil {
				return nil
			}
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("metrics endpoint started", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics endpoint stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if srv != nil {
				err = srv.Shutdown(ctx)
			}
			// Flushes the last console export before exit.
			return multierr.Append(err, exporter.Shutdown(ctx))
		},
	})
	return exporter, nil
}

func newCursorList(logger xlog.XLogger, _ *observability.MetricsExporter) list.CursorList {
	return list.NewCursorList(
		list.WithCursorListLogger(logger.Named("cursor-list")),
		list.WithCursorListStats("cli"),
	)
}

func newHarness(cfg *config, l list.CursorList, logger xlog.XLogger) *harness.Harness {
	opts := []harness.HarnessOption{
		harness.WithHarnessLogger(logger.Named("harness")),
	}
	if cfg.StopOnError {
		opts = append(opts, harness.WithHarnessStopOnError())
	}
	return harness.New(l, opts...)
}

func openScript(path string) (io.ReadCloser, error) {
	if len(path) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	return safeopen.OpenBeneath(filepath.Dir(path), filepath.Base(path))
}

func scriptName(path string) string {
	if len(path) == 0 {
		return "stdin"
	}
	return filepath.Base(path)
}

// runHarness executes the script once the app has started and shuts the
// app down with exit code 1 if any command failed. Stopping the app
// cancels the run and closes the script, the list is destroyed after the
// run has returned.
func runHarness(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config,
	sio scriptIO,
	h *harness.Harness,
	l list.CursorList,
	logger xlog.XLogger,
) {
	ctx, cancel := context.WithCancel(
		xlog.WithContextField(context.Background(), harness.ContextKeyScript, scriptName(cfg.Script)),
	)
	done := make(chan struct{})
	var script io.ReadCloser
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var err error
			if script, err = sio.open(); err != nil {
				cancel()
				close(done)
				return err
			}
			go func() {
				defer close(done)
				exitCode := 0
				if err := h.Run(ctx, script, sio.out); err != nil && ctx.Err() == nil {
					logger.ErrorStack(err, "harness finished with failures")
					exitCode = 1
				}
				if ctx.Err() == nil {
					_ = shutdowner.Shutdown(fx.ExitCode(exitCode))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if script != nil {
				_ = script.Close()
			}
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			l.Destroy()
			_ = logger.Sync()
			return nil
		},
	})
}

func newApp(cfg *config, sio scriptIO) fx.Option {
	return fx.Options(
		fx.Supply(cfg, sio),
		fx.Provide(
			newLogger,
			newMetricsExporter,
			newCursorList,
			newHarness,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(runHarness),
	)
}

func main() {
	cfg, err := parseConfig(filepath.Base(os.Args[0]), os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fx.New(newApp(cfg, scriptIO{
		open: func() (io.ReadCloser, error) {
			return openScript(cfg.Script)
		},
		out: os.Stdout,
	})).Run()
}
