// Package noop provides the tracker used when error tracking is disabled:
// every capture succeeds and goes nowhere.
package noop

import (
	"context"

	"barometer/pkg/errors"
)

// Tracker discards all captured events.
type Tracker struct{}

var _ errors.Tracker = (*Tracker)(nil)

// New creates a no-op tracker.
func New() *Tracker {
	return &Tracker{}
}

func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	return nil
}

func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	return nil
}

func (t *Tracker) Flush(ctx context.Context) error {
	return nil
}
