package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// A single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	return &DB{db}, nil
}

// RunMigrations creates the dataset tables if they do not exist yet
func (db *DB) RunMigrations() error {
	migration := `
-- One row per generation pass
CREATE TABLE IF NOT EXISTS generation_runs (
    id TEXT PRIMARY KEY,
    seed TEXT NOT NULL,
    projects INTEGER NOT NULL,
    sampled_projects INTEGER NOT NULL,
    schema_version TEXT NOT NULL,
    clamped_durations INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL
);

-- Project table
CREATE TABLE IF NOT EXISTS projects (
    run_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    project_type TEXT NOT NULL CHECK(project_type IN ('road', 'bridge', 'building')),
    baseline_cost REAL NOT NULL CHECK(baseline_cost > 0),
    baseline_duration INTEGER NOT NULL CHECK(baseline_duration >= 1),
    soil_quality TEXT NOT NULL CHECK(soil_quality IN ('good', 'moderate', 'poor')),
    contractor_reliability REAL NOT NULL CHECK(contractor_reliability BETWEEN 0.2 AND 0.99),
    supply_delay_rate INTEGER NOT NULL CHECK(supply_delay_rate >= 0),
    design_change_rate REAL NOT NULL CHECK(design_change_rate BETWEEN 0 AND 1),
    weather_risk_index REAL NOT NULL CHECK(weather_risk_index BETWEEN 0 AND 1),
    change_orders_count INTEGER NOT NULL CHECK(change_orders_count >= 0),
    change_orders_value REAL NOT NULL CHECK(change_orders_value >= 0),
    cost_multiplier REAL NOT NULL CHECK(cost_multiplier > 0),
    final_cost REAL NOT NULL CHECK(final_cost > 0),
    final_duration INTEGER NOT NULL CHECK(final_duration >= 1),
    seq INTEGER NOT NULL,
    PRIMARY KEY (run_id, project_id),
    FOREIGN KEY (run_id) REFERENCES generation_runs(id)
);
CREATE INDEX IF NOT EXISTS idx_projects_seq ON projects(run_id, seq);

-- Monthly spend for sampled projects
CREATE TABLE IF NOT EXISTS time_series (
    run_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    month_index INTEGER NOT NULL CHECK(month_index >= 1),
    monthly_spend REAL NOT NULL CHECK(monthly_spend >= 0),
    cumulative_cost REAL NOT NULL CHECK(cumulative_cost >= 0),
    reported_design_change INTEGER NOT NULL CHECK(reported_design_change IN (0, 1)),
    PRIMARY KEY (run_id, project_id, month_index),
    FOREIGN KEY (run_id, project_id) REFERENCES projects(run_id, project_id)
);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
