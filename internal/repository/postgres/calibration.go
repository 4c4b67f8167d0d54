package postgres

import (
	"context"
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"

	"barometer/internal/domain/calibration"
	"barometer/internal/domain/quote"
	"barometer/pkg/errors"
)

// dateOf converts a DATE column value back to a civil date. pq hands
// DATE columns over as UTC midnight timestamps.
func dateOf(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

// Compile-time check
var _ calibration.Repository = (*CalibrationRepository)(nil)

// CalibrationRepository implements calibration.Repository using sqlx.
//
// Artifacts are small and append-only; Postgres keeps the version sequence
// transactional so two concurrent calibration runs never share a version.
type CalibrationRepository struct {
	db *sqlx.DB
}

// NewCalibrationRepository creates a new calibration artifact repository
func NewCalibrationRepository(db *sqlx.DB) *CalibrationRepository {
	return &CalibrationRepository{db: db}
}

type calibrationRow struct {
	Version        int64     `db:"version"`
	CalibratedAt   time.Time `db:"calibrated_at"`
	DataRangeStart time.Time `db:"data_range_start"`
	DataRangeEnd   time.Time `db:"data_range_end"`
	TotalQuotes    int       `db:"total_quotes"`
	WeightMild     float64   `db:"weight_mild"`
	WeightModerate float64   `db:"weight_moderate"`
	WeightStrong   float64   `db:"weight_strong"`
	PctMild        float64   `db:"pct_mild"`
	PctModerate    float64   `db:"pct_moderate"`
	PctStrong      float64   `db:"pct_strong"`
	Degraded       bool      `db:"degraded"`
}

func (r calibrationRow) toDomain() *calibration.Artifact {
	return &calibration.Artifact{
		Version: r.Version,
		Weights: calibration.Weights{
			Mild:     r.WeightMild,
			Moderate: r.WeightModerate,
			Strong:   r.WeightStrong,
		},
		CalibratedAt:   r.CalibratedAt,
		DataRangeStart: dateOf(r.DataRangeStart),
		DataRangeEnd:   dateOf(r.DataRangeEnd),
		TotalQuotes:    r.TotalQuotes,
		Distribution: map[quote.Intensity]float64{
			quote.IntensityMild:     r.PctMild,
			quote.IntensityModerate: r.PctModerate,
			quote.IntensityStrong:   r.PctStrong,
		},
		Degraded: r.Degraded,
	}
}

// Store persists a new artifact and assigns it the next version
func (r *CalibrationRepository) Store(ctx context.Context, artifact *calibration.Artifact) error {
	query := `
		INSERT INTO calibration_artifacts (
			calibrated_at, data_range_start, data_range_end, total_quotes,
			weight_mild, weight_moderate, weight_strong,
			pct_mild, pct_moderate, pct_strong, degraded
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING version`

	var version int64
	err := r.db.GetContext(ctx, &version, query,
		artifact.CalibratedAt,
		artifact.DataRangeStart.In(time.UTC), artifact.DataRangeEnd.In(time.UTC),
		artifact.TotalQuotes,
		artifact.Weights.Mild, artifact.Weights.Moderate, artifact.Weights.Strong,
		artifact.Distribution[quote.IntensityMild],
		artifact.Distribution[quote.IntensityModerate],
		artifact.Distribution[quote.IntensityStrong],
		artifact.Degraded,
	)
	if err != nil {
		return errors.Wrap(err, "failed to store calibration artifact")
	}

	artifact.Version = version
	return nil
}

// Latest returns the most recent artifact
func (r *CalibrationRepository) Latest(ctx context.Context) (*calibration.Artifact, error) {
	var row calibrationRow

	query := `
		SELECT version, calibrated_at, data_range_start, data_range_end, total_quotes,
		       weight_mild, weight_moderate, weight_strong,
		       pct_mild, pct_moderate, pct_strong, degraded
		FROM calibration_artifacts
		ORDER BY version DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &row, query)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNoCalibration
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load calibration artifact")
	}

	return row.toDomain(), nil
}

// EnsureSchema creates the artifact table when it does not exist yet.
// Called by the calibrate command so a fresh environment works without
// a separate migration step.
func (r *CalibrationRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS calibration_artifacts (
			version          BIGSERIAL PRIMARY KEY,
			calibrated_at    TIMESTAMPTZ NOT NULL,
			data_range_start DATE NOT NULL,
			data_range_end   DATE NOT NULL,
			total_quotes     INTEGER NOT NULL,
			weight_mild      DOUBLE PRECISION NOT NULL,
			weight_moderate  DOUBLE PRECISION NOT NULL,
			weight_strong    DOUBLE PRECISION NOT NULL,
			pct_mild         DOUBLE PRECISION NOT NULL,
			pct_moderate     DOUBLE PRECISION NOT NULL,
			pct_strong       DOUBLE PRECISION NOT NULL,
			degraded         BOOLEAN NOT NULL DEFAULT FALSE
		)`

	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "failed to ensure calibration schema")
	}
	return nil
}
