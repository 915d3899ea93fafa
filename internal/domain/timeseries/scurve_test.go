package timeseries_test

import (
	"testing"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/domain/timeseries"
	"github.com/rpggio/capsim/internal/rng"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, months int, cost float64) project.Record {
	return project.Record{
		ID: id,
		Attributes: project.Attributes{
			DesignChangeRate: 0.25,
		},
		FinalCost:     cost,
		FinalDuration: months,
	}
}

func TestNormalizedCurve(t *testing.T) {
	curve := timeseries.NormalizedCurve([]float64{0.2, 0.5, 0.3, 0.1})
	require.InDeltaSlice(t, []float64{0.2 / 1.1, 0.7 / 1.1, 1.0 / 1.1, 1}, curve, 1e-12)
	require.Equal(t, 1.0, curve[len(curve)-1])
}

func TestPlannedCurve_NonDecreasingEndsAtOne(t *testing.T) {
	s := timeseries.NewSynthesizer(config.Default().TimeSeries)
	src := rng.New(42)

	for _, months := range []int{1, 2, 12, 37, 90} {
		curve := s.PlannedCurve(src, months)
		require.Len(t, curve, months)
		for i := 1; i < len(curve); i++ {
			require.GreaterOrEqual(t, curve[i], curve[i-1])
		}
		require.InDelta(t, 1.0, curve[months-1], 1e-12)
	}
}

func TestMonthlyPlan_SumsToTotal(t *testing.T) {
	plan := timeseries.MonthlyPlan(120, []float64{0.1, 0.4, 0.9, 1})
	require.InDeltaSlice(t, []float64{12, 36, 60, 12}, plan, 1e-9)

	sum := 0.0
	for _, p := range plan {
		sum += p
	}
	require.InDelta(t, 120, sum, 1e-9)
}

func TestSynthesize_CumulativeIsMonotonic(t *testing.T) {
	s := timeseries.NewSynthesizer(config.Default().TimeSeries)
	src := rng.New(9)

	for i := 0; i < 20; i++ {
		rec := testRecord(project.FormatID("P", 1000+i), 12+i*3, 250)
		points, err := s.Synthesize(src, rec)
		require.NoError(t, err)
		require.LessOrEqual(t, len(points), rec.FinalDuration)

		prevMonth, prevCum := 0, 0.0
		for _, p := range points {
			require.Equal(t, rec.ID, p.ProjectID)
			require.Greater(t, p.MonthIndex, prevMonth)
			require.LessOrEqual(t, p.MonthIndex, rec.FinalDuration)
			require.GreaterOrEqual(t, p.MonthlySpend, 0.0)
			require.GreaterOrEqual(t, p.CumulativeCost, prevCum)
			prevMonth, prevCum = p.MonthIndex, p.CumulativeCost
		}
	}
}

func TestSynthesize_NoNoiseNoGapsReachesFinalCost(t *testing.T) {
	cfg := config.Default().TimeSeries
	cfg.MissingReportProb = 0
	cfg.ReportingNoiseSigma = 0
	s := timeseries.NewSynthesizer(cfg)

	points, err := s.Synthesize(rng.New(1), testRecord("P1000", 24, 180))
	require.NoError(t, err)
	require.Len(t, points, 24)
	for i, p := range points {
		require.Equal(t, i+1, p.MonthIndex)
	}
	require.InDelta(t, 180, points[len(points)-1].CumulativeCost, 0.01)
}

func TestSynthesize_MissingMonthRate(t *testing.T) {
	cfg := config.Default().TimeSeries
	s := timeseries.NewSynthesizer(cfg)
	src := rng.New(2024)

	const projects, months = 200, 500
	emitted := 0
	for i := 0; i < projects; i++ {
		points, err := s.Synthesize(src, testRecord("P1", months, 10))
		require.NoError(t, err)
		emitted += len(points)
	}

	missingRate := 1 - float64(emitted)/float64(projects*months)
	require.InDelta(t, cfg.MissingReportProb, missingRate, 0.004)
}

func TestSynthesize_DegenerateDuration(t *testing.T) {
	s := timeseries.NewSynthesizer(config.Default().TimeSeries)

	_, err := s.Synthesize(rng.New(1), testRecord("P1003", 0, 50))
	require.ErrorIs(t, err, project.ErrDegenerateProject)
}

func TestSynthesize_SingleMonth(t *testing.T) {
	cfg := config.Default().TimeSeries
	cfg.MissingReportProb = 0
	s := timeseries.NewSynthesizer(cfg)

	points, err := s.Synthesize(rng.New(3), testRecord("P1004", 1, 40))
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, 1, points[0].MonthIndex)
	require.Equal(t, points[0].MonthlySpend, points[0].CumulativeCost)
}

func TestSynthesize_Deterministic(t *testing.T) {
	s := timeseries.NewSynthesizer(config.Default().TimeSeries)
	rec := testRecord("P1000", 30, 300)

	a, err := s.Synthesize(rng.New(77), rec)
	require.NoError(t, err)
	b, err := s.Synthesize(rng.New(77), rec)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
