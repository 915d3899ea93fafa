package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// probabilityTolerance bounds how far a weight vector may drift from summing to one.
const probabilityTolerance = 1e-9

// Contractor reliability may be clipped more tightly but never outside these.
const (
	reliabilityFloor   = 0.2
	reliabilityCeiling = 0.99
)

// maxDurationCeiling bounds generator.max_duration_months so a spend curve
// always fits in memory.
const maxDurationCeiling = 12000

// Known category keys. Kept here so configuration can be validated without
// importing the domain packages.
var (
	projectTypeKeys = []string{"road", "bridge", "building"}
	soilQualityKeys = []string{"good", "moderate", "poor"}
)

// ValidationError describes a single invalid configuration value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration before any sampling happens.
func (c Config) Validate() error {
	g := c.Generator
	if g.Projects <= 0 {
		return invalid("generator.projects", "must be positive, got %d", g.Projects)
	}
	if g.SampledProjects <= 0 {
		return invalid("generator.sampled_projects", "must be positive, got %d", g.SampledProjects)
	}
	if g.SampledProjects > g.Projects {
		return invalid("generator.sampled_projects", "%d exceeds project count %d", g.SampledProjects, g.Projects)
	}
	if g.IDBase < 0 {
		return invalid("generator.id_base", "must not be negative, got %d", g.IDBase)
	}
	if g.IDPrefix == "" {
		return invalid("generator.id_prefix", "must not be empty")
	}
	if g.MaxDurationMonths < 1 || g.MaxDurationMonths > maxDurationCeiling {
		return invalid("generator.max_duration_months", "must be in [1, %d], got %d", maxDurationCeiling, g.MaxDurationMonths)
	}
	switch g.DurationPolicy {
	case DurationPolicyClamp, DurationPolicyReject:
	default:
		return invalid("generator.duration_policy", "unknown policy %q", g.DurationPolicy)
	}

	if err := c.Attributes.validate(); err != nil {
		return err
	}
	for _, key := range projectTypeKeys {
		if longest := c.Attributes.DurationRange[key].Max - 1; longest > g.MaxDurationMonths {
			return invalid("generator.max_duration_months", "%d is below the longest %s baseline duration %d", g.MaxDurationMonths, key, longest)
		}
	}
	if err := c.CostModel.validate(); err != nil {
		return err
	}
	if err := c.ChangeOrders.validate(); err != nil {
		return err
	}
	if err := c.TimeSeries.validate(); err != nil {
		return err
	}

	switch c.Output.Sink {
	case SinkCSV:
		if c.Output.Dir == "" {
			return invalid("output.dir", "required for csv sink")
		}
	case SinkSQLite:
		if c.Output.SQLitePath == "" {
			return invalid("output.sqlite_path", "required for sqlite sink")
		}
	case SinkPostgres:
		if c.Output.PostgresDSN == "" {
			return invalid("output.postgres_dsn", "required for postgres sink")
		}
	default:
		return invalid("output.sink", "unknown sink %q", c.Output.Sink)
	}
	return nil
}

func (a AttributeConfig) validate() error {
	if err := validateWeights("attributes.type_weights", a.TypeWeights, projectTypeKeys); err != nil {
		return err
	}
	if err := validateWeights("attributes.soil_weights", a.SoilWeights, soilQualityKeys); err != nil {
		return err
	}
	for _, key := range projectTypeKeys {
		if _, ok := a.CostLogMean[key]; !ok {
			return invalid("attributes.cost_log_mean", "missing project type %q", key)
		}
		r, ok := a.DurationRange[key]
		if !ok {
			return invalid("attributes.duration_range", "missing project type %q", key)
		}
		if r.Min < 1 || r.Max <= r.Min {
			return invalid("attributes.duration_range", "%s: need 1 <= min < max, got [%d, %d)", key, r.Min, r.Max)
		}
	}
	if !positive(a.CostSigma) {
		return invalid("attributes.cost_sigma", "must be positive")
	}
	if err := a.Reliability.validate("attributes.reliability"); err != nil {
		return err
	}
	if err := a.DesignChange.validate("attributes.design_change"); err != nil {
		return err
	}
	if a.ReliabilityMin < reliabilityFloor || a.ReliabilityMax > reliabilityCeiling || a.ReliabilityMin >= a.ReliabilityMax {
		return invalid("attributes.reliability_min", "need %g <= min < max <= %g, got [%g, %g]",
			reliabilityFloor, reliabilityCeiling, a.ReliabilityMin, a.ReliabilityMax)
	}
	if !positive(a.SupplyDelayLambda) {
		return invalid("attributes.supply_delay_lambda", "must be positive")
	}
	if a.WeatherMin < 0 || a.WeatherMax > 1 || a.WeatherMin >= a.WeatherMax {
		return invalid("attributes.weather_min", "need 0 <= min < max <= 1, got [%g, %g]", a.WeatherMin, a.WeatherMax)
	}
	return nil
}

func (b BetaParams) validate(field string) error {
	if !positive(b.Alpha) || !positive(b.Beta) {
		return invalid(field, "alpha and beta must be positive, got (%g, %g)", b.Alpha, b.Beta)
	}
	return nil
}

func (m CostModelConfig) validate() error {
	coefficients := []struct {
		field string
		value float64
	}{
		{"cost_model.theta0", m.Theta0},
		{"cost_model.theta_soil", m.ThetaSoil},
		{"cost_model.theta_contractor", m.ThetaContractor},
		{"cost_model.theta_supply", m.ThetaSupply},
		{"cost_model.theta_design", m.ThetaDesign},
		{"cost_model.theta_weather", m.ThetaWeather},
		{"cost_model.duration_base", m.DurationBase},
		{"cost_model.duration_soil", m.DurationSoil},
		{"cost_model.duration_contractor", m.DurationContractor},
		{"cost_model.duration_supply", m.DurationSupply},
		{"cost_model.duration_design", m.DurationDesign},
		{"cost_model.duration_weather", m.DurationWeather},
	}
	for _, c := range coefficients {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return invalid(c.field, "must be finite")
		}
	}
	if m.NoiseSigma < 0 || math.IsNaN(m.NoiseSigma) {
		return invalid("cost_model.noise_sigma", "must not be negative")
	}
	return nil
}

func (c ChangeOrderConfig) validate() error {
	if c.LambdaSlope < 0 {
		return invalid("change_orders.lambda_slope", "must not be negative, got %g", c.LambdaSlope)
	}
	if c.LambdaIntercept <= 0 {
		return invalid("change_orders.lambda_intercept", "must be positive, got %g", c.LambdaIntercept)
	}
	if c.ValueFactor < 0 {
		return invalid("change_orders.value_factor", "must not be negative")
	}
	return nil
}

func (t TimeSeriesConfig) validate() error {
	if !positive(t.ShapeBase) || t.ShapeJitter < 0 {
		return invalid("time_series.shape_base", "need positive base and non-negative jitter")
	}
	if t.MissingReportProb < 0 || t.MissingReportProb >= 1 {
		return invalid("time_series.missing_report_prob", "must be in [0, 1), got %g", t.MissingReportProb)
	}
	if t.ReportingNoiseSigma < 0 {
		return invalid("time_series.reporting_noise_sigma", "must not be negative")
	}
	return nil
}

func validateWeights(field string, weights map[string]float64, keys []string) error {
	if len(weights) != len(keys) {
		return invalid(field, "expected %d categories, got %d", len(keys), len(weights))
	}
	var sum float64
	for _, key := range keys {
		w, ok := weights[key]
		if !ok {
			return invalid(field, "missing category %q", key)
		}
		if w < 0 || math.IsNaN(w) {
			return invalid(field, "%s: weight must not be negative", key)
		}
		sum += w
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return invalid(field, "weights sum to %g, want 1", sum)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
