package project

import (
	"math"

	"github.com/rpggio/capsim/internal/config"
)

// CostModel derives final cost and duration from project attributes.
//
// Cost follows a log-linear model with Gaussian noise on the log scale;
// duration uses a noise-free multiplicative model over the same risk factors.
type CostModel struct {
	cfg config.CostModelConfig
}

func NewCostModel(cfg config.CostModelConfig) *CostModel {
	return &CostModel{cfg: cfg}
}

// Outcome is the derived part of a project record.
type Outcome struct {
	CostMultiplier float64
	FinalCost      float64
	// DurationMonths is the rounded but unbounded duration. FinalDuration is
	// the same value saturated to the int32 range.
	DurationMonths float64
	FinalDuration  int
}

// NoiseSigma is the standard deviation of the log-scale cost noise.
func (m *CostModel) NoiseSigma() float64 {
	return m.cfg.NoiseSigma
}

// LogMultiplier is the noise-free linear predictor of the log cost multiplier.
func (m *CostModel) LogMultiplier(a Attributes) float64 {
	c := m.cfg
	return c.Theta0 +
		c.ThetaSoil*a.SoilQuality.Code() +
		c.ThetaContractor*(1-a.ContractorReliability) +
		c.ThetaSupply*float64(a.SupplyDelayRate) +
		c.ThetaDesign*a.DesignChangeRate +
		c.ThetaWeather*a.WeatherRiskIndex
}

// DurationMultiplier scales the baseline duration.
func (m *CostModel) DurationMultiplier(a Attributes) float64 {
	c := m.cfg
	return c.DurationBase +
		c.DurationSoil*a.SoilQuality.Code() +
		c.DurationContractor*(1-a.ContractorReliability) +
		c.DurationSupply*float64(a.SupplyDelayRate) +
		c.DurationDesign*a.DesignChangeRate +
		c.DurationWeather*a.WeatherRiskIndex
}

// Derive applies the model to a with the given log-scale noise draw. The
// returned duration is not bounded; see EnforceDuration.
func (m *CostModel) Derive(a Attributes, noise float64) Outcome {
	multiplier := math.Exp(m.LogMultiplier(a) + noise)
	months := math.RoundToEven(float64(a.BaselineDuration) * m.DurationMultiplier(a))
	return Outcome{
		CostMultiplier: multiplier,
		FinalCost:      Round(a.BaselineCost*multiplier, 2),
		DurationMonths: months,
		FinalDuration:  saturate(months),
	}
}

func saturate(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

// EnforceDuration bounds a derived duration in months. A duration above
// maxMonths, or one that is not a number, is a *DurationRangeError under
// either policy. Below one month, the clamp policy returns one month with
// clamped set and the reject policy returns a *DegenerateError.
func EnforceDuration(projectID string, months float64, maxMonths int, policy string) (result int, clamped bool, err error) {
	if math.IsNaN(months) || months > float64(maxMonths) {
		return 0, false, &DurationRangeError{ProjectID: projectID, Months: months, Max: maxMonths}
	}
	if months >= 1 {
		return int(months), false, nil
	}
	if policy == config.DurationPolicyReject {
		return 0, false, &DegenerateError{ProjectID: projectID, Months: saturate(months)}
	}
	return 1, true, nil
}
