package xlog

import (
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger prints the fx container events through an XLogger.
// Wiring steps go to debug, lifecycle transitions to info and every
// failure to error.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) step(err error, msg string, fields ...zap.Field) {
	if err != nil {
		l.logger.Error(err, msg+" failed", fields...)
		return
	}
	l.logger.Debug(msg, fields...)
}

func (l *FxXLogger) hook(kind, function, caller string, runtime time.Duration, err error) {
	l.step(err, "hook "+kind,
		zap.String("function", function),
		zap.String("caller", caller),
		zap.Duration("in", runtime),
	)
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.hook("OnStart", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.OnStopExecuted:
		l.hook("OnStop", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.Supplied:
		l.step(e.Err, "supply", zap.String("type", e.TypeName))
	case *fxevent.Provided:
		l.step(e.Err, "provide",
			zap.String("constructor", e.ConstructorName),
			zap.Strings("types", e.OutputTypeNames),
		)
	case *fxevent.Invoked:
		l.step(e.Err, "invoke", zap.String("function", e.FunctionName))
	case *fxevent.LoggerInitialized:
		l.step(e.Err, "fx logger", zap.String("constructor", e.ConstructorName))
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "app start failed")
		} else {
			l.logger.Info("app started")
		}
	case *fxevent.Stopping:
		sig := "none"
		if e.Signal != nil {
			sig = e.Signal.String()
		}
		l.logger.Info("app stopping", zap.String("signal", sig))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "app stop failed")
		} else {
			l.logger.Info("app stopped")
		}
	case *fxevent.RollingBack:
		l.logger.Error(e.StartErr, "app start failed, rolling back")
	case *fxevent.RolledBack:
		l.step(e.Err, "rollback")
	default:
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	if logger == nil {
		return &FxXLogger{}
	}
	return &FxXLogger{logger: logger.Named("fx")}
}
