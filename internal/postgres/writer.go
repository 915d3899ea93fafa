// Package postgres loads generated datasets into PostgreSQL with COPY.
package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/rpggio/capsim/internal/generator"
	"github.com/rpggio/capsim/internal/repository"
	"github.com/rpggio/capsim/internal/schema"
)

const ddl = `
CREATE TABLE IF NOT EXISTS generation_runs (
    id TEXT PRIMARY KEY,
    seed TEXT NOT NULL,
    projects INTEGER NOT NULL,
    sampled_projects INTEGER NOT NULL,
    schema_version TEXT NOT NULL,
    clamped_durations INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    run_id TEXT NOT NULL REFERENCES generation_runs(id),
    project_id TEXT NOT NULL,
    project_type TEXT NOT NULL CHECK (project_type IN ('road', 'bridge', 'building')),
    baseline_cost DOUBLE PRECISION NOT NULL,
    baseline_duration BIGINT NOT NULL,
    soil_quality TEXT NOT NULL CHECK (soil_quality IN ('good', 'moderate', 'poor')),
    contractor_reliability DOUBLE PRECISION NOT NULL CHECK (contractor_reliability BETWEEN 0.2 AND 0.99),
    supply_delay_rate BIGINT NOT NULL,
    design_change_rate DOUBLE PRECISION NOT NULL,
    weather_risk_index DOUBLE PRECISION NOT NULL,
    change_orders_count BIGINT NOT NULL,
    change_orders_value DOUBLE PRECISION NOT NULL,
    cost_multiplier DOUBLE PRECISION NOT NULL,
    final_cost DOUBLE PRECISION NOT NULL CHECK (final_cost > 0),
    final_duration BIGINT NOT NULL CHECK (final_duration >= 1),
    PRIMARY KEY (run_id, project_id)
);

CREATE TABLE IF NOT EXISTS time_series (
    run_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    month_index BIGINT NOT NULL,
    monthly_spend DOUBLE PRECISION NOT NULL,
    cumulative_cost DOUBLE PRECISION NOT NULL,
    reported_design_change BOOLEAN NOT NULL,
    PRIMARY KEY (run_id, project_id, month_index),
    FOREIGN KEY (run_id, project_id) REFERENCES projects(run_id, project_id)
);
`

// Writer implements generator.Writer for PostgreSQL.
type Writer struct {
	dsn string
}

// NewWriter creates a Writer that connects to dsn on every Write.
func NewWriter(dsn string) *Writer {
	return &Writer{dsn: dsn}
}

// Write creates the tables if needed and copies the dataset in one transaction.
func (w *Writer) Write(ctx context.Context, ds *generator.Dataset) error {
	conn, err := pgx.Connect(ctx, w.dsn)
	if err != nil {
		return fmt.Errorf("%w: connect: %v", repository.ErrStorage, err)
	}
	defer conn.Close(ctx)

	if err := load(ctx, conn, ds); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return nil
}

func load(ctx context.Context, conn *pgx.Conn, ds *generator.Dataset) error {
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	run := ds.Run
	_, err = tx.Exec(ctx, `
		INSERT INTO generation_runs (id, seed, projects, sampled_projects, schema_version, clamped_durations, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, strconv.FormatUint(run.Seed, 10), run.Projects, run.SampledProjects,
		run.SchemaVersion, run.ClampedDurations, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	projectRows, err := ProjectRows(ds)
	if err != nil {
		return err
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{schema.Projects.Name}, withRunID(schema.Projects.Header()),
		pgx.CopyFromRows(projectRows)); err != nil {
		return fmt.Errorf("copy projects: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{schema.TimeSeries.Name}, withRunID(schema.TimeSeries.Header()),
		pgx.CopyFromRows(TimeSeriesRows(ds))); err != nil {
		return fmt.Errorf("copy time series: %w", err)
	}

	return tx.Commit(ctx)
}

func withRunID(columns []string) []string {
	return append([]string{"run_id"}, columns...)
}

// ProjectRows builds COPY rows for the project table, led by the run id.
func ProjectRows(ds *generator.Dataset) ([][]any, error) {
	rows := make([][]any, 0, len(ds.Projects))
	for _, r := range ds.Projects {
		values, err := schema.ProjectValues(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", repository.ErrInvalidInput, r.ID, err)
		}
		rows = append(rows, append([]any{ds.Run.ID}, values...))
	}
	return rows, nil
}

// TimeSeriesRows builds COPY rows for the time-series table, led by the run id.
func TimeSeriesRows(ds *generator.Dataset) [][]any {
	rows := make([][]any, 0, len(ds.TimeSeries))
	for _, p := range ds.TimeSeries {
		rows = append(rows, append([]any{ds.Run.ID}, schema.TimeSeriesValues(p)...))
	}
	return rows
}
