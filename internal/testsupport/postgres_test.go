package testsupport

import (
	"context"
	"database/sql"
	"testing"
)

func TestPostgresHelper_DropCalibrationArtifacts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	helper := NewTestPostgres(t)
	ctx := context.Background()

	// A placeholder table is enough; the repository creates the real
	// schema in its own tests.
	_, err := helper.DB().ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS calibration_artifacts (version BIGSERIAL PRIMARY KEY)")
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	if err := helper.DropCalibrationArtifacts(ctx); err != nil {
		t.Fatalf("drop failed: %v", err)
	}

	var exists sql.NullString
	err = helper.DB().QueryRowContext(ctx, "SELECT to_regclass('public.calibration_artifacts')").Scan(&exists)
	if err != nil {
		t.Fatalf("failed to query table existence: %v", err)
	}
	if exists.Valid {
		t.Fatalf("expected table to be dropped, found: %s", exists.String)
	}

	// Dropping an absent table stays a no-op.
	if err := helper.DropCalibrationArtifacts(ctx); err != nil {
		t.Fatalf("second drop failed: %v", err)
	}
}
