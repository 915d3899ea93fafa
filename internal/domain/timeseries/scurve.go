// Package timeseries synthesizes monthly spend reports for a project.
//
// A planned cumulative-fraction curve is built from the normalized running sum
// of Beta-distributed increments. Reported spend follows the plan with
// multiplicative reporting noise, and occasional months are never reported at
// all. Reported cumulative totals therefore drift from the project's final
// cost; the drift is part of the model and is not reconciled.
package timeseries

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/rng"
)

// Point is one reported month of spend for a project.
type Point struct {
	ProjectID            string  `json:"project_id"`
	MonthIndex           int     `json:"month_index"`
	MonthlySpend         float64 `json:"monthly_spend"`
	CumulativeCost       float64 `json:"cumulative_cost"`
	ReportedDesignChange bool    `json:"reported_design_change"`
}

// Synthesizer generates spend time series from project records.
type Synthesizer struct {
	cfg config.TimeSeriesConfig
}

func NewSynthesizer(cfg config.TimeSeriesConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// NormalizedCurve returns the running sum of increments divided by its final
// value. For non-negative increments with a positive total the result is
// non-decreasing and ends at exactly 1.
func NormalizedCurve(increments []float64) []float64 {
	curve := floats.CumSum(make([]float64, len(increments)), increments)
	if len(curve) == 0 {
		return curve
	}
	total := curve[len(curve)-1]
	floats.Scale(1/total, curve)
	curve[len(curve)-1] = 1
	return curve
}

// MonthlyPlan converts a normalized cumulative curve into planned spend per
// month for a project of the given total cost.
func MonthlyPlan(total float64, curve []float64) []float64 {
	plan := make([]float64, len(curve))
	prev := 0.0
	for i, c := range curve {
		plan[i] = total * (c - prev)
		prev = c
	}
	return plan
}

// PlannedCurve draws the S-curve shape for a project of the given length.
func (s *Synthesizer) PlannedCurve(src *rng.Source, months int) []float64 {
	a := s.cfg.ShapeBase + src.Uniform(0, s.cfg.ShapeJitter)
	b := s.cfg.ShapeBase + src.Uniform(0, s.cfg.ShapeJitter)

	increments := make([]float64, months)
	for i := range increments {
		increments[i] = src.Beta(a, b)
	}
	return NormalizedCurve(increments)
}

// Synthesize produces the reported monthly spend series for rec. Month
// indexes are 1-based and skip months whose report went missing.
func (s *Synthesizer) Synthesize(src *rng.Source, rec project.Record) ([]Point, error) {
	months := rec.FinalDuration
	if months < 1 {
		return nil, &project.DegenerateError{ProjectID: rec.ID, Months: months}
	}

	plan := MonthlyPlan(rec.FinalCost, s.PlannedCurve(src, months))

	points := make([]Point, 0, months)
	cumulative := 0.0
	for m, planned := range plan {
		if src.Float64() < s.cfg.MissingReportProb {
			continue
		}
		monthly := math.Max(0, planned*(1+src.Normal(0, s.cfg.ReportingNoiseSigma)))
		cumulative += monthly
		points = append(points, Point{
			ProjectID:            rec.ID,
			MonthIndex:           m + 1,
			MonthlySpend:         project.Round(monthly, 2),
			CumulativeCost:       project.Round(cumulative, 2),
			ReportedDesignChange: src.Bernoulli(rec.DesignChangeRate),
		})
	}
	return points, nil
}
