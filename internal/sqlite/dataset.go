package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpggio/capsim/internal/generator"
	"github.com/rpggio/capsim/internal/repository"
	"github.com/rpggio/capsim/internal/schema"
)

// DatasetRepository implements generator.Writer for SQLite
type DatasetRepository struct {
	db *DB
}

// NewDatasetRepository creates a new DatasetRepository
func NewDatasetRepository(db *DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func insertQuery(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
}

// Write stores the run and both tables in a single transaction
func (r *DatasetRepository) Write(ctx context.Context, ds *generator.Dataset) error {
	if err := r.write(ctx, ds); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %w: %v", repository.ErrStorage, repository.ErrInvalidInput, err)
		}
		return fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return nil
}

func (r *DatasetRepository) write(ctx context.Context, ds *generator.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	run := ds.Run
	_, err = tx.ExecContext(ctx, `
		INSERT INTO generation_runs (id, seed, projects, sampled_projects, schema_version, clamped_durations, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		strconv.FormatUint(run.Seed, 10),
		run.Projects,
		run.SampledProjects,
		run.SchemaVersion,
		run.ClampedDurations,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	projectStmt, err := tx.PrepareContext(ctx,
		insertQuery("projects", append([]string{"run_id"}, append(schema.Projects.Header(), "seq")...)))
	if err != nil {
		return fmt.Errorf("failed to prepare project insert: %w", err)
	}
	defer projectStmt.Close()

	for i, rec := range ds.Projects {
		values, err := schema.ProjectValues(rec)
		if err != nil {
			return fmt.Errorf("failed to encode project %s: %w", rec.ID, err)
		}
		args := append([]any{run.ID}, values...)
		args = append(args, i)
		if _, err := projectStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert project %s: %w", rec.ID, err)
		}
	}

	pointStmt, err := tx.PrepareContext(ctx,
		insertQuery("time_series", append([]string{"run_id"}, schema.TimeSeries.Header()...)))
	if err != nil {
		return fmt.Errorf("failed to prepare time series insert: %w", err)
	}
	defer pointStmt.Close()

	for _, p := range ds.TimeSeries {
		args := append([]any{run.ID}, schema.TimeSeriesValues(p)...)
		if _, err := pointStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert time series point %s/%d: %w", p.ProjectID, p.MonthIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a stored run by ID
func (r *DatasetRepository) GetRun(ctx context.Context, id string) (*generator.Run, error) {
	query := `
		SELECT id, seed, projects, sampled_projects, schema_version, clamped_durations, started_at, finished_at
		FROM generation_runs
		WHERE id = ?
	`

	var run generator.Run
	var seed string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&seed,
		&run.Projects,
		&run.SampledProjects,
		&run.SchemaVersion,
		&run.ClampedDurations,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &run, nil
}

// CountRows returns the number of project and time series rows stored for a run
func (r *DatasetRepository) CountRows(ctx context.Context, runID string) (projects, points int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE run_id = ?),
			(SELECT COUNT(*) FROM time_series WHERE run_id = ?)
	`, runID, runID).Scan(&projects, &points)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return projects, points, nil
}

// ProjectIDs returns the project ids of a run in generation order
func (r *DatasetRepository) ProjectIDs(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT project_id FROM projects WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return ids, nil
}
