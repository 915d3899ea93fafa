package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/capsim/internal/generator"
)

// GenerateInput overrides the base configuration for a single run. Zero
// values keep the configured defaults.
type GenerateInput struct {
	Projects        int     `json:"projects,omitempty" jsonschema:"number of projects to generate"`
	SampledProjects int     `json:"sampled_projects,omitempty" jsonschema:"number of leading projects that get a monthly spend series"`
	Seed            *uint64 `json:"seed,omitempty" jsonschema:"seed of the pseudo-random source"`
	Persist         bool    `json:"persist,omitempty" jsonschema:"write the dataset to the configured output sink"`
}

// GenerateOutput summarizes a generation run.
type GenerateOutput struct {
	RunID             string  `json:"run_id"`
	Seed              uint64  `json:"seed"`
	SchemaVersion     string  `json:"schema_version"`
	ProjectRows       int     `json:"project_rows"`
	TimeSeriesRows    int     `json:"time_series_rows"`
	FirstProjectID    string  `json:"first_project_id"`
	MeanFinalCost     float64 `json:"mean_final_cost"`
	MeanFinalDuration float64 `json:"mean_final_duration"`
	ClampedDurations  int     `json:"clamped_durations"`
	Persisted         bool    `json:"persisted"`
}

func registerTools(server *sdkmcp.Server, cfg Config) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "generate_dataset",
		Description: "Generate the synthetic project table and monthly spend time series",
	}, generateHandler(cfg))
}

func generateHandler(cfg Config) sdkmcp.ToolHandlerFor[GenerateInput, GenerateOutput] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, in GenerateInput) (*sdkmcp.CallToolResult, GenerateOutput, error) {
		run := cfg.Base
		if in.Projects != 0 {
			run.Generator.Projects = in.Projects
		}
		if in.SampledProjects != 0 {
			run.Generator.SampledProjects = in.SampledProjects
		}
		if in.Seed != nil {
			run.Generator.Seed = *in.Seed
		}

		var (
			ds  *generator.Dataset
			err error
		)
		if in.Persist {
			ds, err = cfg.Service.GenerateAndWrite(ctx, run)
		} else {
			ds, err = cfg.Service.Generate(ctx, run)
		}
		if err != nil {
			return nil, GenerateOutput{}, err
		}

		sum := generator.Summarize(ds)
		return nil, GenerateOutput{
			RunID:             sum.Run.ID,
			Seed:              sum.Run.Seed,
			SchemaVersion:     sum.Run.SchemaVersion,
			ProjectRows:       sum.ProjectRows,
			TimeSeriesRows:    sum.TimeSeriesRows,
			FirstProjectID:    sum.FirstProjectID,
			MeanFinalCost:     sum.MeanFinalCost,
			MeanFinalDuration: sum.MeanDuration,
			ClampedDurations:  sum.Run.ClampedDurations,
			Persisted:         in.Persist,
		}, nil
	}
}
