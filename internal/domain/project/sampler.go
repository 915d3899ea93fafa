package project

import (
	"math"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/rng"
)

// Sampler draws project covariates.
type Sampler struct {
	cfg         config.AttributeConfig
	typeWeights []float64
	soilWeights []float64
}

// NewSampler builds a Sampler from validated attribute configuration.
func NewSampler(cfg config.AttributeConfig) *Sampler {
	typeWeights := make([]float64, len(Types))
	for i, t := range Types {
		typeWeights[i] = cfg.TypeWeights[t.String()]
	}
	soilWeights := make([]float64, len(SoilQualities))
	for i, q := range SoilQualities {
		soilWeights[i] = cfg.SoilWeights[q.String()]
	}
	return &Sampler{cfg: cfg, typeWeights: typeWeights, soilWeights: soilWeights}
}

// Sample draws attributes for n projects. Draws are taken one attribute at a
// time across all projects: types, baseline costs, baseline durations, soil,
// reliability, supply delays, design change rates, weather risk.
func (s *Sampler) Sample(src *rng.Source, n int) []Attributes {
	attrs := make([]Attributes, n)

	for i := range attrs {
		attrs[i].Type = Types[src.Categorical(s.typeWeights)]
	}
	for i := range attrs {
		mean := s.cfg.CostLogMean[attrs[i].Type.String()]
		attrs[i].BaselineCost = Round(src.LogNormal(mean, s.cfg.CostSigma), 2)
	}
	for i := range attrs {
		r := s.cfg.DurationRange[attrs[i].Type.String()]
		attrs[i].BaselineDuration = src.IntRange(r.Min, r.Max)
	}
	for i := range attrs {
		attrs[i].SoilQuality = SoilQualities[src.Categorical(s.soilWeights)]
	}
	for i := range attrs {
		v := src.Beta(s.cfg.Reliability.Alpha, s.cfg.Reliability.Beta)
		attrs[i].ContractorReliability = clip(v, s.cfg.ReliabilityMin, s.cfg.ReliabilityMax)
	}
	for i := range attrs {
		attrs[i].SupplyDelayRate = src.Poisson(s.cfg.SupplyDelayLambda)
	}
	for i := range attrs {
		attrs[i].DesignChangeRate = src.Beta(s.cfg.DesignChange.Alpha, s.cfg.DesignChange.Beta)
	}
	for i := range attrs {
		attrs[i].WeatherRiskIndex = src.Uniform(s.cfg.WeatherMin, s.cfg.WeatherMax)
	}

	return attrs
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
