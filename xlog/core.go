package xlog

import (
	"os"

	"go.uber.org/zap/zapcore"
)

var (
	writerMap = map[LogOutWriterType]zapcore.WriteSyncer{
		StdOut: zapcore.Lock(os.Stdout),
		StdErr: zapcore.Lock(os.Stderr),
	}
	encoderMap = map[LogEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
		JSON:      zapcore.NewJSONEncoder,
		PlainText: zapcore.NewConsoleEncoder,
	}
)

func outWriter(typ LogOutWriterType) zapcore.WriteSyncer {
	if out, ok := writerMap[typ]; ok {
		return out
	}
	return writerMap[StdErr]
}

func encoderOf(typ LogEncoderType, cfg zapcore.EncoderConfig) zapcore.Encoder {
	if newEnc, ok := encoderMap[typ]; ok {
		return newEnc(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func recordEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		TimeKey:       "ts",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: zapcore.OmitKey,
	}
}

// The banner is the bare message, no level, time or caller.
func bannerEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "banner",
		LevelKey:      zapcore.OmitKey,
		TimeKey:       zapcore.OmitKey,
		CallerKey:     zapcore.OmitKey,
		NameKey:       zapcore.OmitKey,
		StacktraceKey: zapcore.OmitKey,
	}
}
