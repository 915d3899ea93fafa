package generator

import (
	"time"

	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/domain/timeseries"
)

// Run describes one generation pass.
type Run struct {
	ID               string    `json:"run_id"`
	Seed             uint64    `json:"seed"`
	Projects         int       `json:"projects"`
	SampledProjects  int       `json:"sampled_projects"`
	SchemaVersion    string    `json:"schema_version"`
	ClampedDurations int       `json:"clamped_durations"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// Dataset holds both generated tables. Time series points are ordered by
// project generation order, then month.
type Dataset struct {
	Run        Run                `json:"run"`
	Projects   []project.Record   `json:"projects"`
	TimeSeries []timeseries.Point `json:"time_series"`
}

// Summary is a compact description of a dataset.
type Summary struct {
	Run            Run     `json:"run"`
	ProjectRows    int     `json:"project_rows"`
	TimeSeriesRows int     `json:"time_series_rows"`
	FirstProjectID string  `json:"first_project_id"`
	MeanFinalCost  float64 `json:"mean_final_cost"`
	MeanDuration   float64 `json:"mean_final_duration"`
}
