// Package csvstore writes generated datasets as flat CSV files.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rpggio/capsim/internal/generator"
	"github.com/rpggio/capsim/internal/repository"
	"github.com/rpggio/capsim/internal/schema"
)

// Files names the outputs inside the target directory. An empty Schema
// skips the schema export.
type Files struct {
	Projects   string
	TimeSeries string
	Schema     string
}

// Writer implements generator.Writer for CSV files.
type Writer struct {
	dir   string
	files Files
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, files Files) *Writer {
	return &Writer{dir: dir, files: files}
}

// Write creates the output directory and writes both tables, plus the schema
// when configured.
func (w *Writer) Write(ctx context.Context, ds *generator.Dataset) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", repository.ErrStorage, err)
	}

	if err := w.writeFile(w.files.Projects, func(out io.Writer) error {
		return WriteProjects(out, ds)
	}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.writeFile(w.files.TimeSeries, func(out io.Writer) error {
		return WriteTimeSeries(out, ds)
	}); err != nil {
		return err
	}
	if w.files.Schema == "" {
		return nil
	}
	return w.writeFile(w.files.Schema, schema.WriteYAML)
}

func (w *Writer) writeFile(name string, fill func(io.Writer) error) error {
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	if err := fill(file); err != nil {
		file.Close()
		return fmt.Errorf("%w: write %s: %v", repository.ErrStorage, path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", repository.ErrStorage, path, err)
	}
	return nil
}

// WriteProjects writes the project table with a header row.
func WriteProjects(out io.Writer, ds *generator.Dataset) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(schema.Projects.Header()); err != nil {
		return err
	}
	for _, r := range ds.Projects {
		row, err := schema.ProjectRow(r)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", repository.ErrInvalidInput, r.ID, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTimeSeries writes the time-series table with a header row.
func WriteTimeSeries(out io.Writer, ds *generator.Dataset) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(schema.TimeSeries.Header()); err != nil {
		return err
	}
	for _, p := range ds.TimeSeries {
		if err := cw.Write(schema.TimeSeriesRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
