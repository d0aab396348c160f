package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/whowrote/authorship/pkg/config"
)

// Logger wraps a zap logger with helpers for common fields.
type Logger struct {
	*zap.Logger
}

// NewLogger builds a logger writing to file, or to stderr when file is empty.
// Results go to stdout, so logs stay off it.
func NewLogger(level, format, file string) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	output := "stderr"
	if file != "" {
		output = file
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    format,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: logger}, nil
}

// FromConfig builds a logger from the logging section of the config.
func FromConfig(cfg config.LoggingConfig) (*Logger, error) {
	return NewLogger(cfg.Level, cfg.Format, cfg.File)
}

func (l *Logger) WithBackend(backend string) *zap.Logger {
	return l.With(zap.String("backend", backend))
}

func (l *Logger) WithAuthor(name string, label int) *zap.Logger {
	return l.With(zap.String("author", name), zap.Int("label", label))
}

func (l *Logger) WithError(err error) *zap.Logger {
	return l.With(zap.Error(err))
}
