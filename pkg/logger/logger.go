// Package logger provides the process-wide structured logger: a thin wrapper
// around zap's SugaredLogger that mirrors error-level entries to the
// configured error tracker. Components derive child loggers with
// Get().With("component", name) and keep them for their lifetime.
package logger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"barometer/pkg/errors"
)

var globalLogger *Logger

// Logger wraps zap.SugaredLogger with optional error tracking.
type Logger struct {
	*zap.SugaredLogger
	errorTracker errors.Tracker
}

// Init configures the global logger. env "production" selects the JSON
// encoder, anything else the colored console encoder. An unknown level
// falls back to info rather than failing startup.
func Init(level string, env string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}

	globalLogger = &Logger{SugaredLogger: logger.Sugar()}
	return nil
}

// SetErrorTracker attaches the tracker that error-level entries mirror to.
// Called once during bootstrap, after the tracker adapter exists.
func SetErrorTracker(tracker errors.Tracker) {
	if globalLogger != nil {
		globalLogger.errorTracker = tracker
	}
}

// Get returns the global logger, building a console fallback when Init has
// not run yet (tests, standalone tools).
func Get() *Logger {
	if globalLogger == nil {
		logger, _ := zap.NewDevelopment()
		globalLogger = &Logger{SugaredLogger: logger.Sugar()}
	}
	return globalLogger
}

// With derives a child logger carrying additional key-value fields. The
// tracker hook is inherited.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		errorTracker:  l.errorTracker,
	}
}

// Error logs at error level and mirrors the entry to the tracker.
func (l *Logger) Error(args ...interface{}) {
	l.SugaredLogger.Error(args...)
	l.capture(errors.New(fmt.Sprint(args...)))
}

// Errorf logs a formatted error and mirrors it to the tracker.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.SugaredLogger.Errorf(template, args...)
	l.capture(errors.Newf(template, args...))
}

// Fatalf reports the failure to the tracker and flushes it before zap
// exits the process. os.Exit skips deferred flushes, so this is the only
// chance the event has to leave the process.
func (l *Logger) Fatalf(template string, args ...interface{}) {
	if l.errorTracker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = l.errorTracker.CaptureMessage(ctx, fmt.Sprintf(template, args...), errors.LevelFatal, nil)
		_ = l.errorTracker.Flush(ctx)
		cancel()
	}
	l.SugaredLogger.Fatalf(template, args...)
}

func (l *Logger) capture(err error) {
	if l.errorTracker == nil {
		return
	}
	_ = l.errorTracker.CaptureError(context.Background(), err, nil)
}

// Sync flushes any buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
