package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"barometer/internal/adapters/config"
	"barometer/internal/adapters/postgres"
)

// PostgresTestHelper dials the integration Postgres and tears the
// connection down with the test.
type PostgresTestHelper struct {
	client *postgres.Client
}

// NewPostgresTestHelper opens a pooled connection. Closing is registered
// as a test cleanup, an explicit Close is also safe.
func NewPostgresTestHelper(t *testing.T, cfg config.PostgresConfig) *PostgresTestHelper {
	t.Helper()

	client, err := postgres.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create postgres client: %v", err)
	}

	helper := &PostgresTestHelper{client: client}
	t.Cleanup(helper.Close)

	return helper
}

// DB returns the database handle repositories are constructed with.
func (h *PostgresTestHelper) DB() *sqlx.DB {
	return h.client.DB()
}

// Close closes the pool. database/sql makes repeat closes harmless.
func (h *PostgresTestHelper) Close() {
	_ = h.client.Close()
}

// DropCalibrationArtifacts removes the artifact table entirely so a test
// paired with EnsureSchema starts from version 1.
func (h *PostgresTestHelper) DropCalibrationArtifacts(ctx context.Context) error {
	_, err := h.client.DB().ExecContext(ctx, "DROP TABLE IF EXISTS calibration_artifacts")
	return err
}

// NewTestPostgres builds the helper from the integration environment,
// skipping the test when that environment is absent.
func NewTestPostgres(t *testing.T) *PostgresTestHelper {
	t.Helper()
	return NewPostgresTestHelper(t, LoadDatabaseConfigsFromEnv(t).Postgres)
}
