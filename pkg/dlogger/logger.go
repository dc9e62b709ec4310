// Package dlogger builds zap loggers from a log level name
package dlogger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogLevelInfo sets the log level to info
	LogLevelInfo = "info"

	// LogLevelDebug sets the log level to debug
	LogLevelDebug = "debug"

	// LogLevelNone sets logger to no logging
	LogLevelNone = "none"

	rootName = "strata"
)

type options struct {
	component string
	console   bool
	outputs   []string
}

// Option configures the logger
type Option func(*options)

// Component names the logger after some component, e.g. "strata.core"
func Component(name string) Option {
	return func(o *options) {
		o.component = name
	}
}

// Console switches to a human-readable encoding, for terminals
func Console(enabled bool) Option {
	return func(o *options) {
		o.console = enabled
	}
}

// Outputs sets the paths or URLs the logs are written to (default: stderr)
func Outputs(paths ...string) Option {
	return func(o *options) {
		o.outputs = paths
	}
}

// GetLogger returns a zap logger with the specified level. The level "none" yields a no-op logger.
func GetLogger(logLevel string, opts ...Option) (*zap.Logger, error) {
	if logLevel == LogLevelNone {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	var o options
	for _, apply := range opts {
		apply(&o)
	}

	cfg := zap.NewProductionConfig()
	if o.console {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
	}
	if len(o.outputs) > 0 {
		cfg.OutputPaths = o.outputs
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	logger = logger.Named(rootName)
	if o.component != "" {
		logger = logger.Named(o.component)
	}
	return logger, nil
}

// MustGetLogger returns a zap logger with the specified level or panics
func MustGetLogger(logLevel string, opts ...Option) *zap.Logger {
	l, err := GetLogger(logLevel, opts...)
	if err != nil {
		panic(err)
	}
	return l
}
