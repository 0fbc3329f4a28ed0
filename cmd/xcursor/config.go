package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/benz9527/xcursor/lib/infra"
	"github.com/benz9527/xcursor/observability"
	"github.com/benz9527/xcursor/xlog"
)

type config struct {
	Script          string
	LogLevel        xlog.LogLevel
	LogEncoder      xlog.LogEncoderType
	Metrics         observability.MetricsExporterType
	MetricsAddr     string
	MetricsInterval time.Duration
	StopOnError     bool
}

func parseConfig(name string, args []string) (*config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	script := fs.StringP("script", "s", "", "command script to execute, stdin if empty")
	logLevel := fs.String("log-level", os.Getenv("XLOG_LVL"), "log level: debug, info, warn or error (env XLOG_LVL)")
	logEncoder := fs.String("log-encoder", "json", "log encoder: json or text")
	metrics := fs.String("metrics", string(observability.NoneMetrics), "metrics exporter: none, console or prometheus")
	metricsAddr := fs.String("metrics-addr", ":9464", "listen address of the prometheus metrics endpoint")
	metricsInterval := fs.Duration("metrics-interval", 10*time.Second, "export interval of the console metrics exporter")
	stopOnError := fs.Bool("stop-on-error", false, "stop at the first failed command")
	if err := fs.Parse(args); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "parse flags")
	}
	if fs.NArg() > 0 {
		return nil, infra.NewErrorStack("unexpected arguments, use --script to pass a file")
	}

	metricsType, err := observability.ParseMetricsExporterType(*metrics)
	if err != nil {
		return nil, err
	}
	cfg := &config{
		LogLevel:        xlog.ParseLogLevel(*logLevel),
		LogEncoder:      xlog.ParseLogEncoder(*logEncoder),
		Metrics:         metricsType,
		MetricsAddr:     *metricsAddr,
		MetricsInterval: *metricsInterval,
		StopOnError:     *stopOnError,
	}
	if len(*script) > 0 {
		if cfg.Script, err = filepath.Abs(*script); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "resolve script path")
		}
	}
	return cfg, nil
}
