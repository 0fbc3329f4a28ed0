package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xcursor/observability"
	"github.com/benz9527/xcursor/xlog"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Setenv("XLOG_LVL", "warn")
	cfg, err := parseConfig("xcursor", nil)
	require.NoError(t, err)
	require.Empty(t, cfg.Script)
	require.Equal(t, xlog.LogLevelWarn, cfg.LogLevel)
	require.Equal(t, xlog.JSON, cfg.LogEncoder)
	require.Equal(t, observability.NoneMetrics, cfg.Metrics)
	require.Equal(t, ":9464", cfg.MetricsAddr)
	require.Equal(t, 10*time.Second, cfg.MetricsInterval)
	require.False(t, cfg.StopOnError)
}

func TestParseConfig_Flags(t *testing.T) {
	cfg, err := parseConfig("xcursor", []string{
		"-s", "testdata/ops.txt",
		"--log-level", "error",
		"--log-encoder", "text",
		"--metrics", "prometheus",
		"--metrics-addr", "127.0.0.1:0",
		"--stop-on-error",
	})
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(cfg.Script))
	require.Equal(t, "ops.txt", filepath.Base(cfg.Script))
	require.Equal(t, xlog.LogLevelError, cfg.LogLevel)
	require.Equal(t, xlog.PlainText, cfg.LogEncoder)
	require.Equal(t, observability.PrometheusMetrics, cfg.Metrics)
	require.Equal(t, "127.0.0.1:0", cfg.MetricsAddr)
	require.True(t, cfg.StopOnError)
}

func TestParseConfig_Errors(t *testing.T) {
	testcases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--verbose"}},
		{"positional", []string{"ops.txt"}},
		{"metrics", []string{"--metrics", "otlp"}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, err := parseConfig("xcursor", tc.args)
			require.Error(tt, err)
		})
	}
}

func TestOpenScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.txt")
	require.NoError(t, os.WriteFile(path, []byte("add 1\nshow\n"), 0o644))

	r, err := openScript(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, r.Close())
	}()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "add 1\nshow\n", string(data))

	_, err = openScript(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)

	stdin, err := openScript("")
	require.NoError(t, err)
	require.NoError(t, stdin.Close())
}
