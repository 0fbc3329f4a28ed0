package xlog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xcursor/lib/infra"
)

type testMemOutWriter struct {
	data bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	return w.data.Write(p)
}

func (w *testMemOutWriter) Reset() {
	w.data.Reset()
}

func (w *testMemOutWriter) String() string {
	return w.data.String()
}

func (w *testMemOutWriter) Lines() []string {
	return strings.Split(strings.TrimSpace(w.data.String()), "\n")
}

func useTestMemWriter(t *testing.T) *testMemOutWriter {
	w := &testMemOutWriter{}
	writerMap[testMemAsOut] = zapcore.AddSync(w)
	t.Cleanup(func() {
		delete(writerMap, testMemAsOut)
	})
	return w
}

func TestParseLogLevel(t *testing.T) {
	testcases := []struct {
		in       string
		expected LogLevel
		zapLevel zapcore.Level
	}{
		{"", LogLevelDebug, zapcore.DebugLevel},
		{"debug", LogLevelDebug, zapcore.DebugLevel},
		{"info", LogLevelInfo, zapcore.InfoLevel},
		{" WARN ", LogLevelWarn, zapcore.WarnLevel},
		{"Error", LogLevelError, zapcore.ErrorLevel},
		{"verbose", LogLevelDebug, zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(tt *testing.T) {
			lvl := ParseLogLevel(tc.in)
			require.Equal(tt, tc.expected, lvl)
			require.Equal(tt, tc.zapLevel, lvl.zapLevel())
		})
	}
	require.Equal(t, zapcore.DebugLevel, LogLevel("unknown").zapLevel())
}

func TestParseLogEncoder(t *testing.T) {
	require.Equal(t, JSON, ParseLogEncoder("json"))
	require.Equal(t, JSON, ParseLogEncoder(""))
	require.Equal(t, PlainText, ParseLogEncoder("text"))
	require.Equal(t, PlainText, ParseLogEncoder(" Plain "))
}

func TestXLoggerOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})

	w := useTestMemWriter(t)
	t.Setenv("XLOG_LVL", "warn")
	logger := NewXLogger(nil, WithXLoggerWriter(testMemAsOut))
	logger.Info("below env level")
	logger.WarnContext(context.TODO(), "at env level")
	require.NotContains(t, w.String(), "below env level")
	require.Contains(t, w.String(), "at env level")
}

type testBanner struct{}

func (b testBanner) JSON() string {
	return "{\"app\":\"xcursor\"}"
}

func (b testBanner) PlainText() string {
	return "xcursor"
}

func TestXLogger_Banner(t *testing.T) {
	w := useTestMemWriter(t)
	printBanner = sync.Once{}
	logger := NewXLogger(WithXLoggerWriter(testMemAsOut), WithXLoggerEncoder(JSON))
	logger.Banner(testBanner{})
	require.Equal(t, "{\"banner\":\"{\\\"app\\\":\\\"xcursor\\\"}\"}\n", w.String())

	// Printed once per process.
	logger.Banner(testBanner{})
	require.Equal(t, "{\"banner\":\"{\\\"app\\\":\\\"xcursor\\\"}\"}\n", w.String())
	w.Reset()

	printBanner = sync.Once{}
	logger = NewXLogger(WithXLoggerWriter(testMemAsOut), WithXLoggerEncoder(PlainText))
	logger.Banner(testBanner{})
	require.Equal(t, "xcursor\n", w.String())
	w.Reset()

	printBanner = sync.Once{}
	NewNopXLogger().Banner(testBanner{})
	logger.Banner(nil)
	require.Empty(t, w.String())
}

func TestXLogger_ContextFields(t *testing.T) {
	w := useTestMemWriter(t)
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerContextFieldExtract("script", ""),
		WithXLoggerContextFieldExtract("line", "lineNo"),
		WithXLoggerContextFieldExtract("", "ignored"),
	)
	ctx := WithContextField(context.TODO(), "script", "ops.txt")
	ctx = WithContextField(ctx, "line", 3)

	logger.DebugContext(ctx, "exec", zap.String("cmd", "next"))
	logger.WarnContext(WithContextField(nil, "line", 4), "no script")
	logger.DebugContext(context.TODO(), "no context fields")
	// A plain string key is not one of ours.
	logger.DebugContext(context.WithValue(context.TODO(), "line", 5), "foreign key") //nolint:staticcheck

	lines := w.Lines()
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], `"script":"ops.txt"`)
	require.Contains(t, lines[0], `"lineNo":3`)
	require.Contains(t, lines[0], `"cmd":"next"`)
	require.Contains(t, lines[1], `"lvl":"WARN"`)
	require.Contains(t, lines[1], `"lineNo":4`)
	require.NotContains(t, lines[1], `"script"`)
	require.NotContains(t, lines[2], `"lineNo"`)
	require.NotContains(t, lines[3], `"lineNo"`)
	require.NotContains(t, w.String(), "ignored")
}

func TestXLogger_Errors(t *testing.T) {
	w := useTestMemWriter(t)
	logger := NewXLogger(WithXLoggerLevel(LogLevelInfo), WithXLoggerWriter(testMemAsOut))

	logger.Error(errors.New("closed pipe"), "write failed", zap.Int("value", 9))
	logger.Error(nil, "no error")
	logger.ErrorStack(infra.WrapErrorStackWithMessage(errors.New("bad argument"), "line 2"), "script failed")
	logger.ErrorStack(errors.New("plain"), "plain failed")
	require.NoError(t, logger.Sync())

	lines := w.Lines()
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], `"error":"closed pipe"`)
	require.Contains(t, lines[0], `"value":9`)
	require.NotContains(t, lines[1], `"error"`)
	require.Contains(t, lines[2], `"error":"line 2: bad argument"`)
	require.Contains(t, lines[2], `"errorStack":[`)
	require.Contains(t, lines[3], `"error":"plain"`)
	require.NotContains(t, lines[3], `"errorStack"`)
}

func TestXLogger_Named(t *testing.T) {
	w := useTestMemWriter(t)
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelInfo),
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerContextFieldExtract("line", ""),
	)
	child := logger.Named("harness")
	child.Debug("hidden")
	child.WarnContext(WithContextField(context.TODO(), "line", 7), "shown")
	require.NotContains(t, w.String(), "hidden")
	require.Contains(t, w.String(), `"component":"harness"`)
	require.Contains(t, w.String(), `"line":7`)
}

func TestNopXLogger(t *testing.T) {
	logger := NewNopXLogger()
	logger.Debug("nothing")
	logger.DebugContext(WithContextField(context.TODO(), "line", 1), "nothing")
	logger.ErrorStack(infra.NewErrorStack("nothing"), "nothing")
	require.NoError(t, logger.Sync())
	require.NotNil(t, logger.Named("child"))
}
