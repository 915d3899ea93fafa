package project_test

import (
	"math"
	"testing"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/rng"
	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	for _, typ := range project.Types {
		parsed, err := project.ParseType(typ.String())
		require.NoError(t, err)
		require.Equal(t, typ, parsed)
	}
	for _, q := range project.SoilQualities {
		parsed, err := project.ParseSoilQuality(q.String())
		require.NoError(t, err)
		require.Equal(t, q, parsed)
	}

	_, err := project.ParseType("tunnel")
	require.ErrorIs(t, err, project.ErrUnknownCategory)
	_, err = project.ParseSoilQuality("rocky")
	require.ErrorIs(t, err, project.ErrUnknownCategory)

	_, err = project.Type(7).MarshalText()
	require.ErrorIs(t, err, project.ErrUnknownCategory)
}

func TestSoilCodes(t *testing.T) {
	require.Equal(t, 0.0, project.SoilGood.Code())
	require.Equal(t, 1.0, project.SoilModerate.Code())
	require.Equal(t, 2.0, project.SoilPoor.Code())
}

func TestFormatIDAndRound(t *testing.T) {
	require.Equal(t, "P1000", project.FormatID("P", 1000))
	require.Equal(t, 1.23, project.Round(1.234, 2))
	require.Equal(t, 0.12, project.Round(0.125, 2))
	require.Equal(t, 2.0, project.Round(2.5, 0))
}

func TestSampler_Domains(t *testing.T) {
	cfg := config.Default().Attributes
	attrs := project.NewSampler(cfg).Sample(rng.New(42), 1000)
	require.Len(t, attrs, 1000)

	seenTypes := map[project.Type]int{}
	for _, a := range attrs {
		require.True(t, a.Type.Valid())
		require.True(t, a.SoilQuality.Valid())
		seenTypes[a.Type]++

		require.Greater(t, a.BaselineCost, 0.0)
		require.Equal(t, project.Round(a.BaselineCost, 2), a.BaselineCost)

		r := cfg.DurationRange[a.Type.String()]
		require.GreaterOrEqual(t, a.BaselineDuration, r.Min)
		require.Less(t, a.BaselineDuration, r.Max)

		require.GreaterOrEqual(t, a.ContractorReliability, 0.2)
		require.LessOrEqual(t, a.ContractorReliability, 0.99)
		require.GreaterOrEqual(t, a.SupplyDelayRate, 0)
		require.GreaterOrEqual(t, a.DesignChangeRate, 0.0)
		require.LessOrEqual(t, a.DesignChangeRate, 1.0)
		require.GreaterOrEqual(t, a.WeatherRiskIndex, 0.0)
		require.LessOrEqual(t, a.WeatherRiskIndex, 1.0)
	}

	require.InDelta(t, 0.5, float64(seenTypes[project.TypeRoad])/1000, 0.06)
	require.InDelta(t, 0.2, float64(seenTypes[project.TypeBridge])/1000, 0.05)
}

func TestSampler_Deterministic(t *testing.T) {
	s := project.NewSampler(config.Default().Attributes)
	require.Equal(t, s.Sample(rng.New(5), 50), s.Sample(rng.New(5), 50))
}

func TestSampler_ClipsReliability(t *testing.T) {
	cfg := config.Default().Attributes
	cfg.Reliability = config.BetaParams{Alpha: 50, Beta: 0.5}
	cfg.ReliabilityMax = 0.9

	for _, a := range project.NewSampler(cfg).Sample(rng.New(1), 200) {
		require.LessOrEqual(t, a.ContractorReliability, 0.9)
	}
}

func TestCostModel_LowRiskProjectStaysNearBaseline(t *testing.T) {
	cfg := config.Default().CostModel
	m := project.NewCostModel(cfg)
	a := project.Attributes{
		Type:                  project.TypeRoad,
		BaselineCost:          100,
		BaselineDuration:      24,
		SoilQuality:           project.SoilGood,
		ContractorReliability: 0.99,
		DesignChangeRate:      0,
	}

	for _, noise := range []float64{-0.3, 0, 0.1, 0.4} {
		out := m.Derive(a, noise)
		want := math.Exp(cfg.Theta0 + cfg.ThetaContractor*0.01 + noise)
		require.InDelta(t, want, out.CostMultiplier, 1e-12)
		require.InDelta(t, math.Exp(cfg.Theta0+noise), out.CostMultiplier, 0.02)
		require.Equal(t, project.Round(100*out.CostMultiplier, 2), out.FinalCost)
	}
}

func TestCostModel_RiskFactorsRaiseCostAndDuration(t *testing.T) {
	m := project.NewCostModel(config.Default().CostModel)
	low := project.Attributes{BaselineCost: 50, BaselineDuration: 30, SoilQuality: project.SoilGood, ContractorReliability: 0.95}
	high := low
	high.SoilQuality = project.SoilPoor
	high.SupplyDelayRate = 3
	high.DesignChangeRate = 0.6
	high.WeatherRiskIndex = 0.9

	lo, hi := m.Derive(low, 0), m.Derive(high, 0)
	require.Greater(t, hi.FinalCost, lo.FinalCost)
	require.Greater(t, hi.FinalDuration, lo.FinalDuration)
}

func TestCostModel_Duration(t *testing.T) {
	m := project.NewCostModel(config.Default().CostModel)
	a := project.Attributes{
		BaselineCost:          10,
		BaselineDuration:      20,
		SoilQuality:           project.SoilModerate,
		ContractorReliability: 0.8,
		SupplyDelayRate:       1,
		DesignChangeRate:      0.2,
		WeatherRiskIndex:      0.5,
	}
	// 1 + 0.1 + 0.04 + 0.08 + 0.05 + 0.075 = 1.345
	require.InDelta(t, 1.345, m.DurationMultiplier(a), 1e-12)
	require.Equal(t, 27, m.Derive(a, 0).FinalDuration)
}

func TestCostModel_AdversarialDurationGoesDegenerate(t *testing.T) {
	cfg := config.Default().CostModel
	cfg.DurationBase = 0.01
	m := project.NewCostModel(cfg)

	out := m.Derive(project.Attributes{BaselineCost: 1, BaselineDuration: 12, ContractorReliability: 0.99}, 0)
	require.Equal(t, 0, out.FinalDuration)
}

func TestEnforceDuration(t *testing.T) {
	months, clamped, err := project.EnforceDuration("P1000", 14, 600, config.DurationPolicyReject)
	require.NoError(t, err)
	require.False(t, clamped)
	require.Equal(t, 14, months)

	months, clamped, err = project.EnforceDuration("P1000", 0, 600, config.DurationPolicyClamp)
	require.NoError(t, err)
	require.True(t, clamped)
	require.Equal(t, 1, months)

	_, _, err = project.EnforceDuration("P1001", 0, 600, config.DurationPolicyReject)
	require.ErrorIs(t, err, project.ErrDegenerateProject)
	var derr *project.DegenerateError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "P1001", derr.ProjectID)

	months, _, err = project.EnforceDuration("P1002", 600, 600, config.DurationPolicyClamp)
	require.NoError(t, err)
	require.Equal(t, 600, months)
}

func TestEnforceDuration_OutOfRange(t *testing.T) {
	for _, months := range []float64{601, 1e15, 1e300, math.Inf(1), math.NaN()} {
		for _, policy := range []string{config.DurationPolicyClamp, config.DurationPolicyReject} {
			_, clamped, err := project.EnforceDuration("P1003", months, 600, policy)
			require.ErrorIs(t, err, project.ErrDegenerateProject)
			require.False(t, clamped)

			var rerr *project.DurationRangeError
			require.ErrorAs(t, err, &rerr)
			require.Equal(t, "P1003", rerr.ProjectID)
			require.Equal(t, 600, rerr.Max)
		}
	}
}

func TestCostModel_HugeDurationSaturates(t *testing.T) {
	cfg := config.Default().CostModel
	cfg.DurationBase = 1e30
	m := project.NewCostModel(cfg)

	out := m.Derive(project.Attributes{BaselineCost: 1, BaselineDuration: 12, ContractorReliability: 0.99}, 0)
	require.Greater(t, out.DurationMonths, 1e30)
	require.Equal(t, math.MaxInt32, out.FinalDuration)
}

func TestChangeOrderModel(t *testing.T) {
	m := project.NewChangeOrderModel(config.Default().ChangeOrders)

	require.InDelta(t, 0.2, m.Rate(0), 1e-12)
	require.InDelta(t, 0.8, m.Rate(0.2), 1e-12)

	require.Equal(t, 0.0, m.Value(100, 0.3, 0.5, 0))
	// 200 * 0.25 * 0.3 * 0.5 * 2
	require.Equal(t, 15.0, m.Value(200, 0.25, 0.5, 2))
}
