package calibration

import (
	"context"
)

// Repository defines the interface for calibration artifact storage (PostgreSQL)
type Repository interface {
	// Store persists a new artifact and assigns it the next version.
	// The artifact's Version field is set on success.
	Store(ctx context.Context, artifact *Artifact) error

	// Latest returns the most recent artifact, or errors.ErrNoCalibration
	// when none has been stored yet
	Latest(ctx context.Context) (*Artifact, error)
}
