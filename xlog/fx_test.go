package xlog

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
)

func TestFxXLogger_LogEvent(t *testing.T) {
	errFx := errors.New("fx error")
	testcases := []struct {
		name     string
		event    fxevent.Event
		level    string
		contains []string
	}{
		{"on start", &fxevent.OnStartExecuted{FunctionName: "runHarness", CallerName: "main"}, "DEBUG", []string{`"msg":"hook OnStart"`, `"function":"runHarness"`}},
		{"on start failed", &fxevent.OnStartExecuted{FunctionName: "runHarness", Err: errFx}, "ERROR", []string{`"msg":"hook OnStart failed"`, `"error":"fx error"`}},
		{"on stop", &fxevent.OnStopExecuted{FunctionName: "runHarness", CallerName: "main"}, "DEBUG", []string{`"msg":"hook OnStop"`}},
		{"supplied", &fxevent.Supplied{TypeName: "*main.config"}, "DEBUG", []string{`"type":"*main.config"`}},
		{"provided failed", &fxevent.Provided{ConstructorName: "newHarness", OutputTypeNames: []string{"*harness.Harness"}, Err: errFx}, "ERROR", []string{`"msg":"provide failed"`, `"types":["*harness.Harness"]`}},
		{"invoked", &fxevent.Invoked{FunctionName: "runHarness"}, "DEBUG", []string{`"msg":"invoke"`}},
		{"logger", &fxevent.LoggerInitialized{ConstructorName: "newFxLogger"}, "DEBUG", []string{`"constructor":"newFxLogger"`}},
		{"started", &fxevent.Started{}, "INFO", []string{`"msg":"app started"`}},
		{"start failed", &fxevent.Started{Err: errFx}, "ERROR", []string{`"msg":"app start failed"`}},
		{"stopping", &fxevent.Stopping{Signal: os.Interrupt}, "INFO", []string{`"signal":"interrupt"`}},
		{"stopping without signal", &fxevent.Stopping{}, "INFO", []string{`"signal":"none"`}},
		{"stopped", &fxevent.Stopped{}, "INFO", []string{`"msg":"app stopped"`}},
		{"stop failed", &fxevent.Stopped{Err: errFx}, "ERROR", []string{`"msg":"app stop failed"`}},
		{"rolling back", &fxevent.RollingBack{StartErr: errFx}, "ERROR", []string{`"msg":"app start failed, rolling back"`}},
		{"rolled back", &fxevent.RolledBack{}, "DEBUG", []string{`"msg":"rollback"`}},
	}

	w := useTestMemWriter(t)
	logger := NewFxXLogger(NewXLogger(WithXLoggerLevel(LogLevelDebug), WithXLoggerWriter(testMemAsOut)))
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			w.Reset()
			logger.LogEvent(tc.event)
			out := w.String()
			require.Contains(tt, out, `"lvl":"`+tc.level+`"`)
			require.Contains(tt, out, `"component":"fx"`)
			for _, s := range tc.contains {
				require.Contains(tt, out, s)
			}
		})
	}

	w.Reset()
	logger.LogEvent(&fxevent.Decorated{DecoratorName: "ignored"})
	require.Empty(t, w.String())
}

func TestFxXLogger_Nil(t *testing.T) {
	require.NotPanics(t, func() {
		NewFxXLogger(nil).LogEvent(&fxevent.Started{})
		var l *FxXLogger
		l.LogEvent(&fxevent.Started{})
	})
}
