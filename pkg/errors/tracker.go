package errors

import "context"

// Tracker forwards errors and notable events to an external tracking
// service. Callers never block the pipeline on it: implementations buffer
// and drain on Flush during shutdown.
type Tracker interface {
	// CaptureError reports an error with optional tags.
	CaptureError(ctx context.Context, err error, tags map[string]string) error

	// CaptureMessage reports a non-error event at the given level.
	CaptureMessage(ctx context.Context, message string, level Level, tags map[string]string) error

	// Flush drains buffered events, bounded by ctx.
	Flush(ctx context.Context) error
}

// Level grades captured events.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

func (l Level) String() string {
	return string(l)
}
