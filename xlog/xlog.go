package xlog

import (
	"context"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xcursor/lib/infra"
)

var printBanner = sync.Once{}

type xLogger struct {
	logger *zap.Logger
	// context key -> log field name
	ctxFields map[string]string
	writer    LogOutWriterType
	encoder   LogEncoderType
}

func (l *xLogger) Sync() error {
	return l.logger.Sync()
}

func (l *xLogger) Named(name string) XLogger {
	return &xLogger{
		logger:    l.logger.Named(name),
		ctxFields: l.ctxFields,
		writer:    l.writer,
		encoder:   l.encoder,
	}
}

func (l *xLogger) Banner(banner Banner) {
	if banner == nil || !l.logger.Core().Enabled(zapcore.FatalLevel) {
		return
	}
	printBanner.Do(func() {
		msg := banner.JSON()
		if l.encoder == PlainText {
			msg = banner.PlainText()
		}
		core := zapcore.NewCore(
			encoderOf(l.encoder, bannerEncoderConfig()),
			outWriter(l.writer),
			zapcore.InfoLevel,
		)
		_ = core.Write(zapcore.Entry{Level: zapcore.InfoLevel, Message: msg}, nil)
	})
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	if err != nil {
		fields = append([]zap.Field{zap.String("error", err.Error())}, fields...)
	}
	l.logger.Error(msg, fields...)
}

func (l *xLogger) ErrorStack(err error, msg string, fields ...zap.Field) {
	if es, ok := err.(infra.ErrorStack); ok && es != nil {
		fields = append([]zap.Field{zap.Inline(es)}, fields...)
	} else if err != nil {
		fields = append([]zap.Field{zap.String("error", err.Error())}, fields...)
	}
	l.logger.Error(msg, fields...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	if ce := l.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(append(l.contextFields(ctx), fields...)...)
	}
}

func (l *xLogger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Warn(msg, append(l.contextFields(ctx), fields...)...)
}

// contextFields emits the registered keys in name order; absent keys are skipped.
func (l *xLogger) contextFields(ctx context.Context) []zap.Field {
	if ctx == nil || len(l.ctxFields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(l.ctxFields))
	for key := range l.ctxFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		if v := ctx.Value(contextKey(key)); v != nil {
			fields = append(fields, zap.Any(l.ctxFields[key], v))
		}
	}
	return fields
}

type contextKey string

// WithContextField stores a value that loggers configured by
// WithXLoggerContextFieldExtract(key) will emit.
func WithContextField(ctx context.Context, key string, value any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey(key), value)
}

type loggerCfg struct {
	ctxFields map[string]string
	writer    LogOutWriterType
	encoder   LogEncoderType
	level     zapcore.Level
}

type XLoggerOption func(*loggerCfg) error

func WithXLoggerWriter(w LogOutWriterType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if w >= _writerMax {
			return infra.NewErrorStack("[xlog] unknown writer")
		}
		cfg.writer = w
		return nil
	}
}

func WithXLoggerEncoder(enc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if enc >= _encMax {
			return infra.NewErrorStack("[xlog] unknown encoder")
		}
		cfg.encoder = enc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.level = lvl.zapLevel()
		return nil
	}
}

// WithXLoggerContextFieldExtract logs the context value stored under key
// as field mapTo, or as key itself when mapTo is empty.
func WithXLoggerContextFieldExtract(key, mapTo string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if len(key) == 0 {
			return nil
		}
		if len(mapTo) == 0 {
			mapTo = key
		}
		cfg.ctxFields[key] = mapTo
		return nil
	}
}

// NewXLogger panics on invalid options. The level defaults to env XLOG_LVL.
func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{
		ctxFields: make(map[string]string, 2),
		writer:    StdErr,
		encoder:   JSON,
		level:     ParseLogLevel(os.Getenv("XLOG_LVL")).zapLevel(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	core := zapcore.NewCore(
		encoderOf(cfg.encoder, recordEncoderConfig()),
		outWriter(cfg.writer),
		cfg.level,
	)
	return &xLogger{
		logger:    zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		ctxFields: cfg.ctxFields,
		writer:    cfg.writer,
		encoder:   cfg.encoder,
	}
}

// NewNopXLogger discards everything; used when a component is built without a logger.
func NewNopXLogger() XLogger {
	return &xLogger{logger: zap.NewNop()}
}
