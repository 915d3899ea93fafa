package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/domain/timeseries"
	"github.com/rpggio/capsim/internal/rng"
	"github.com/rpggio/capsim/internal/schema"
)

// Service runs the generation pipeline and hands the result to a Writer.
type Service struct {
	writer Writer
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new generator service. A nil logger discards output.
func NewService(writer Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{writer: writer, logger: logger, now: time.Now}
}

// Generate builds a dataset from cfg. The configuration is validated before
// any value is drawn; the same configuration always yields the same tables.
func (s *Service) Generate(ctx context.Context, cfg config.Config) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := cfg.Generator
	run := Run{
		ID:              uuid.NewString(),
		Seed:            g.Seed,
		Projects:        g.Projects,
		SampledProjects: g.SampledProjects,
		SchemaVersion:   schema.Version,
		StartedAt:       s.now(),
	}
	logger := s.logger.With("run_id", run.ID, "seed", g.Seed)

	src := rng.New(g.Seed)

	attrs := project.NewSampler(cfg.Attributes).Sample(src, g.Projects)
	logger.Debug("sampled attributes", "projects", len(attrs))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, clamped, err := s.deriveRecords(logger, cfg, src, attrs)
	if err != nil {
		return nil, err
	}
	run.ClampedDurations = clamped

	synth := timeseries.NewSynthesizer(cfg.TimeSeries)
	var points []timeseries.Point
	for _, rec := range records[:g.SampledProjects] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := synth.Synthesize(src, rec)
		if err != nil {
			return nil, fmt.Errorf("synthesizing time series: %w", err)
		}
		points = append(points, series...)
	}
	logger.Debug("synthesized time series", "rows", len(points))

	if err := schema.Validate(records, points, g.SampledProjects); err != nil {
		return nil, err
	}

	run.FinishedAt = s.now()
	return &Dataset{Run: run, Projects: records, TimeSeries: points}, nil
}

// deriveRecords applies the cost-duration model and change-order simulation
// to every project. Noise draws for all projects precede the change-order
// count draws, which precede the change-order value draws.
func (s *Service) deriveRecords(logger *slog.Logger, cfg config.Config, src *rng.Source, attrs []project.Attributes) ([]project.Record, int, error) {
	g := cfg.Generator
	costs := project.NewCostModel(cfg.CostModel)
	orders := project.NewChangeOrderModel(cfg.ChangeOrders)

	records := make([]project.Record, len(attrs))
	clamped := 0
	for i, a := range attrs {
		id := project.FormatID(g.IDPrefix, g.IDBase+i)
		out := costs.Derive(a, src.Normal(0, costs.NoiseSigma()))

		months, wasClamped, err := project.EnforceDuration(id, out.DurationMonths, g.MaxDurationMonths, g.DurationPolicy)
		if err != nil {
			return nil, 0, err
		}
		if wasClamped {
			clamped++
			logger.Warn("clamped degenerate duration", "project_id", id, "derived_months", out.DurationMonths)
		}

		records[i] = project.Record{
			ID:             id,
			Attributes:     a,
			CostMultiplier: out.CostMultiplier,
			FinalCost:      out.FinalCost,
			FinalDuration:  months,
		}
	}

	for i := range records {
		records[i].ChangeOrdersCount = src.Poisson(orders.Rate(records[i].DesignChangeRate))
	}
	for i := range records {
		r := &records[i]
		r.ChangeOrdersValue = orders.Value(r.FinalCost, r.DesignChangeRate, src.Float64(), r.ChangeOrdersCount)
	}

	return records, clamped, nil
}

// GenerateAndWrite generates a dataset and persists it with the service's
// writer.
func (s *Service) GenerateAndWrite(ctx context.Context, cfg config.Config) (*Dataset, error) {
	ds, err := s.Generate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.writer.Write(ctx, ds); err != nil {
		return nil, fmt.Errorf("writing dataset: %w", err)
	}
	s.logger.Info("dataset written",
		"run_id", ds.Run.ID,
		"projects", len(ds.Projects),
		"time_series_rows", len(ds.TimeSeries),
		"clamped_durations", ds.Run.ClampedDurations,
	)
	return ds, nil
}

// Summarize describes ds in a few numbers.
func Summarize(ds *Dataset) Summary {
	costs := make([]float64, len(ds.Projects))
	durations := make([]float64, len(ds.Projects))
	for i, r := range ds.Projects {
		costs[i] = r.FinalCost
		durations[i] = float64(r.FinalDuration)
	}

	sum := Summary{
		Run:            ds.Run,
		ProjectRows:    len(ds.Projects),
		TimeSeriesRows: len(ds.TimeSeries),
	}
	if len(ds.Projects) > 0 {
		sum.FirstProjectID = ds.Projects[0].ID
		sum.MeanFinalCost = project.Round(stat.Mean(costs, nil), 2)
		sum.MeanDuration = project.Round(stat.Mean(durations, nil), 2)
	}
	return sum
}
