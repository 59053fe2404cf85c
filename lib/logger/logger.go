package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger takes a message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type PrefixedLogger struct {
	Prefix string

	base *zap.SugaredLogger
}

var _ Logger = &PrefixedLogger{}

func New(prefix string, base *zap.Logger) *PrefixedLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &PrefixedLogger{
		Prefix: prefix,
		base:   base.Named(prefix).Sugar(),
	}
}

func Nop() *PrefixedLogger {
	return New("nop", zap.NewNop())
}

// Production builds the process wide zap logger used by the CLI.
func Production(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	conf := zap.NewProductionConfig()
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.Encoding = "console"
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return conf.Build()
}

func (pl *PrefixedLogger) With(kv ...any) *PrefixedLogger {
	return &PrefixedLogger{
		Prefix: pl.Prefix,
		base:   pl.base.With(kv...),
	}
}

func (pl *PrefixedLogger) Debug(msg string, kv ...any) {
	pl.base.Debugw(msg, kv...)
}

func (pl *PrefixedLogger) Info(msg string, kv ...any) {
	pl.base.Infow(msg, kv...)
}

func (pl *PrefixedLogger) Error(msg string, kv ...any) {
	pl.base.Errorw(msg, kv...)
}
