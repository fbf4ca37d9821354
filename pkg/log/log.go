// Package log wraps zap for the rest of notiq. Library code logs through L(),
// which is a no-op until the CLI installs a configured logger with SetDefault.
package log

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and encoding of a Logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Output string // stderr (default), stdout, or a file path
}

// Logger wraps zap.SugaredLogger with notiq specific helpers.
type Logger struct {
	*zap.SugaredLogger
}

var current atomic.Pointer[Logger]

func init() {
	current.Store(&Logger{SugaredLogger: zap.NewNop().Sugar()})
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log: invalid level: %w", err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	out := opts.Output
	if out == "" {
		out = "stderr"
	}
	cfg.OutputPaths = []string{out}
	cfg.ErrorOutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("log: build logger: %w", err)
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

// SetDefault installs l as the logger returned by L.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	current.Store(l)
}

// L returns the process logger.
func L() *Logger {
	return current.Load()
}

// WithFields adds structured fields to the logger.
func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

// WithError adds an error field to the logger.
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields("error", err)
}

// Named returns a child logger for a component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}
