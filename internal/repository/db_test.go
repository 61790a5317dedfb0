package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB returns a migrated in-memory SQLite database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, common.DatabaseConfig{Driver: common.DriverSQLite, DSN: ":memory:"}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, discardLogger()) })

	_, err = Migrate(ctx, db, discardLogger())
	require.NoError(t, err)
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), common.DatabaseConfig{Driver: "oracle", DSN: "x"}, discardLogger())
	require.Error(t, err)
	require.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	n, err := Migrate(context.Background(), db, discardLogger())
	require.NoError(t, err)
	require.Zero(t, n)

	applied, err := appliedVersions(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, applied, len(migrations))
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.HealthCheck(context.Background(), 0, discardLogger()))
	require.Equal(t, "sqlite3", db.Dialect())
}

func TestPendingMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, common.DatabaseConfig{Driver: common.DriverSQLite, DSN: ":memory:"}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, discardLogger()) })

	pending, err := PendingMigrations(ctx, db)
	require.NoError(t, err)
	require.Len(t, pending, len(migrations))
	require.Equal(t, "001_"+migrations[0].name, pending[0])

	_, err = Migrate(ctx, db, discardLogger())
	require.NoError(t, err)
	pending, err = PendingMigrations(ctx, db)
	require.NoError(t, err)
	require.Empty(t, pending)
}
