package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/csvstore"
	"github.com/rpggio/capsim/internal/generator"
	"github.com/rpggio/capsim/internal/postgres"
	"github.com/rpggio/capsim/internal/sqlite"
)

// newWriter opens the sink named in out. The returned close function is
// always safe to call.
func newWriter(out config.OutputConfig) (generator.Writer, func() error, error) {
	noop := func() error { return nil }

	switch out.Sink {
	case config.SinkCSV:
		return csvstore.NewWriter(out.Dir, csvstore.Files{
			Projects:   out.ProjectsFile,
			TimeSeries: out.TimeSeriesFile,
			Schema:     out.SchemaFile,
		}), noop, nil

	case config.SinkSQLite:
		if err := ensureDBDir(out.SQLitePath); err != nil {
			return nil, noop, fmt.Errorf("failed to prepare database path: %w", err)
		}
		db, err := sqlite.New(out.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, noop, err
		}
		return sqlite.NewDatasetRepository(db), db.Close, nil

	case config.SinkPostgres:
		return postgres.NewWriter(out.PostgresDSN), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown output sink %q", out.Sink)
	}
}

func describeSink(out config.OutputConfig) string {
	switch out.Sink {
	case config.SinkSQLite:
		return "sqlite " + out.SQLitePath
	case config.SinkPostgres:
		return "postgres"
	default:
		return out.Dir
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
