package xlog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

var logLevels = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

func (lvl LogLevel) zapLevel() zapcore.Level {
	if zl, ok := logLevels[lvl]; ok {
		return zl
	}
	return zapcore.DebugLevel
}

func (lvl LogLevel) String() string {
	return string(lvl)
}

// ParseLogLevel falls back to DEBUG for unknown or empty values.
func ParseLogLevel(level string) LogLevel {
	lvl := LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	if _, ok := logLevels[lvl]; ok {
		return lvl
	}
	return LogLevelDebug
}

type LogEncoderType uint8

const (
	JSON LogEncoderType = iota
	PlainText
	_encMax
)

// ParseLogEncoder accepts "json" and "text"/"plain"; everything else is JSON.
func ParseLogEncoder(enc string) LogEncoderType {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "text", "plain", "plaintext", "console":
		return PlainText
	default:
	}
	return JSON
}

type LogOutWriterType uint8

const (
	StdOut LogOutWriterType = iota
	StdErr
	testMemAsOut
	_writerMax
)

type Banner interface {
	JSON() string
	PlainText() string
}

// XLogger is the zap backed logger shared by the cursor list, the
// harness and the cli.
//
// The context variants append the fields registered by
// WithXLoggerContextFieldExtract, e.g. the script name and line number
// of the harness command being executed.
type XLogger interface {
	Sync() error
	Banner(banner Banner)
	Named(name string) XLogger

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
	// ErrorStack prints the frames of an infra.ErrorStack as a JSON array.
	ErrorStack(err error, msg string, fields ...zap.Field)

	DebugContext(ctx context.Context, msg string, fields ...zap.Field)
	WarnContext(ctx context.Context, msg string, fields ...zap.Field)
}
