package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"generation_runs",
		"projects",
		"time_series",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Migrations are idempotent
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestProjectsTableConstraints verifies enum and range checks on the projects table
func TestProjectsTableConstraints(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO generation_runs (id, seed, projects, sampled_projects, schema_version, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		"run1", "42", 1, 1, "1")
	require.NoError(t, err)

	insert := `INSERT INTO projects (run_id, project_id, project_type, baseline_cost, baseline_duration, soil_quality,
		contractor_reliability, supply_delay_rate, design_change_rate, weather_risk_index,
		change_orders_count, change_orders_value, cost_multiplier, final_cost, final_duration, seq)
		VALUES (?, ?, ?, 100, 24, ?, ?, 1, 0.2, 0.5, 0, 0, 1.1, 110, ?, 0)`

	_, err = db.ExecContext(ctx, insert, "run1", "P1000", "road", "good", 0.8, 26)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "run1", "P1001", "tunnel", "good", 0.8, 26)
	require.True(t, isConstraintViolation(err), "should fail with invalid project type")

	_, err = db.ExecContext(ctx, insert, "run1", "P1002", "road", "rocky", 0.8, 26)
	require.True(t, isConstraintViolation(err), "should fail with invalid soil quality")

	_, err = db.ExecContext(ctx, insert, "run1", "P1003", "road", "good", 0.1, 26)
	require.True(t, isConstraintViolation(err), "should fail with reliability out of range")

	_, err = db.ExecContext(ctx, insert, "run1", "P1004", "road", "good", 0.8, 0)
	require.True(t, isConstraintViolation(err), "should fail with zero duration")

	_, err = db.ExecContext(ctx, insert, "missing", "P1005", "road", "good", 0.8, 26)
	require.True(t, isConstraintViolation(err), "should fail with unknown run")
}

func TestIsConstraintViolation(t *testing.T) {
	require.False(t, isConstraintViolation(nil))
	require.False(t, isConstraintViolation(errors.New("database is locked")))
	require.True(t, isConstraintViolation(errors.New("constraint failed: UNIQUE constraint failed: projects.run_id (1555)")))
	require.True(t, isConstraintViolation(errors.New("NOT NULL constraint failed: projects.final_cost")))
}
