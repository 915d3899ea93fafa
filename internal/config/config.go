package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines generator configuration.
type Config struct {
	Generator    GeneratorConfig   `yaml:"generator"`
	Attributes   AttributeConfig   `yaml:"attributes"`
	CostModel    CostModelConfig   `yaml:"cost_model"`
	ChangeOrders ChangeOrderConfig `yaml:"change_orders"`
	TimeSeries   TimeSeriesConfig  `yaml:"time_series"`
	Output       OutputConfig      `yaml:"output"`
	Log          LogConfig         `yaml:"log"`
}

// Duration policies applied when a derived final duration falls below one month.
const (
	DurationPolicyClamp  = "clamp"
	DurationPolicyReject = "reject"
)

// Output sinks.
const (
	SinkCSV      = "csv"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

type GeneratorConfig struct {
	Projects          int    `yaml:"projects"`
	SampledProjects   int    `yaml:"sampled_projects"`
	Seed              uint64 `yaml:"seed"`
	IDBase            int    `yaml:"id_base"`
	IDPrefix          string `yaml:"id_prefix"`
	DurationPolicy    string `yaml:"duration_policy"`
	MaxDurationMonths int    `yaml:"max_duration_months"`
}

// IntRange is a half-open integer interval [Min, Max).
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// BetaParams parameterizes a Beta distribution.
type BetaParams struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

// AttributeConfig holds the distribution parameters for project covariates.
// Map keys are the string forms of project types and soil qualities.
type AttributeConfig struct {
	TypeWeights       map[string]float64  `yaml:"type_weights"`
	CostLogMean       map[string]float64  `yaml:"cost_log_mean"`
	CostSigma         float64             `yaml:"cost_sigma"`
	DurationRange     map[string]IntRange `yaml:"duration_range"`
	SoilWeights       map[string]float64  `yaml:"soil_weights"`
	Reliability       BetaParams          `yaml:"reliability"`
	ReliabilityMin    float64             `yaml:"reliability_min"`
	ReliabilityMax    float64             `yaml:"reliability_max"`
	SupplyDelayLambda float64             `yaml:"supply_delay_lambda"`
	DesignChange      BetaParams          `yaml:"design_change"`
	WeatherMin        float64             `yaml:"weather_min"`
	WeatherMax        float64             `yaml:"weather_max"`
}

// CostModelConfig holds the log-linear cost coefficients and the
// multiplicative duration weights.
type CostModelConfig struct {
	Theta0          float64 `yaml:"theta0"`
	ThetaSoil       float64 `yaml:"theta_soil"`
	ThetaContractor float64 `yaml:"theta_contractor"`
	ThetaSupply     float64 `yaml:"theta_supply"`
	ThetaDesign     float64 `yaml:"theta_design"`
	ThetaWeather    float64 `yaml:"theta_weather"`
	NoiseSigma      float64 `yaml:"noise_sigma"`

	DurationBase       float64 `yaml:"duration_base"`
	DurationSoil       float64 `yaml:"duration_soil"`
	DurationContractor float64 `yaml:"duration_contractor"`
	DurationSupply     float64 `yaml:"duration_supply"`
	DurationDesign     float64 `yaml:"duration_design"`
	DurationWeather    float64 `yaml:"duration_weather"`
}

type ChangeOrderConfig struct {
	LambdaSlope     float64 `yaml:"lambda_slope"`
	LambdaIntercept float64 `yaml:"lambda_intercept"`
	ValueFactor     float64 `yaml:"value_factor"`
}

type TimeSeriesConfig struct {
	ShapeBase           float64 `yaml:"shape_base"`
	ShapeJitter         float64 `yaml:"shape_jitter"`
	MissingReportProb   float64 `yaml:"missing_report_prob"`
	ReportingNoiseSigma float64 `yaml:"reporting_noise_sigma"`
}

type OutputConfig struct {
	Sink           string `yaml:"sink"`
	Dir            string `yaml:"dir"`
	ProjectsFile   string `yaml:"projects_file"`
	TimeSeriesFile string `yaml:"time_series_file"`
	SchemaFile     string `yaml:"schema_file"`
	SQLitePath     string `yaml:"sqlite_path"`
	PostgresDSN    string `yaml:"postgres_dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Generator: GeneratorConfig{
			Projects:          300,
			SampledProjects:   5,
			Seed:              42,
			IDBase:            1000,
			IDPrefix:          "P",
			DurationPolicy:    DurationPolicyClamp,
			MaxDurationMonths: 600,
		},
		Attributes: AttributeConfig{
			TypeWeights: map[string]float64{"road": 0.5, "bridge": 0.2, "building": 0.3},
			CostLogMean: map[string]float64{"road": 5.0, "bridge": 6.0, "building": 5.5},
			CostSigma:   0.4,
			DurationRange: map[string]IntRange{
				"road":     {Min: 12, Max: 48},
				"bridge":   {Min: 18, Max: 72},
				"building": {Min: 12, Max: 48},
			},
			SoilWeights:       map[string]float64{"good": 0.45, "moderate": 0.35, "poor": 0.2},
			Reliability:       BetaParams{Alpha: 5, Beta: 2},
			ReliabilityMin:    0.2,
			ReliabilityMax:    0.99,
			SupplyDelayLambda: 1.0,
			DesignChange:      BetaParams{Alpha: 2, Beta: 6},
			WeatherMin:        0,
			WeatherMax:        1,
		},
		CostModel: CostModelConfig{
			Theta0:          0.02,
			ThetaSoil:       0.15,
			ThetaContractor: -0.9,
			ThetaSupply:     0.12,
			ThetaDesign:     0.8,
			ThetaWeather:    0.5,
			NoiseSigma:      0.25,

			DurationBase:       1,
			DurationSoil:       0.1,
			DurationContractor: 0.2,
			DurationSupply:     0.08,
			DurationDesign:     0.25,
			DurationWeather:    0.15,
		},
		ChangeOrders: ChangeOrderConfig{
			LambdaSlope:     3,
			LambdaIntercept: 0.2,
			ValueFactor:     0.3,
		},
		TimeSeries: TimeSeriesConfig{
			ShapeBase:           2,
			ShapeJitter:         1,
			MissingReportProb:   0.02,
			ReportingNoiseSigma: 0.05,
		},
		Output: OutputConfig{
			Sink:           SinkCSV,
			Dir:            "data/raw",
			ProjectsFile:   "synthetic_projects.csv",
			TimeSeriesFile: "sample_time_series.csv",
			SchemaFile:     "schema.yaml",
			SQLitePath:     "data/raw/capsim.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and CAPSIM_* environment variables, in that order. An empty path falls back
// to CAPSIM_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CAPSIM_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CAPSIM_PROJECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: "CAPSIM_PROJECTS", Reason: err.Error()}
		}
		cfg.Generator.Projects = n
	}
	if v := os.Getenv("CAPSIM_SAMPLED_PROJECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: "CAPSIM_SAMPLED_PROJECTS", Reason: err.Error()}
		}
		cfg.Generator.SampledProjects = n
	}
	if v := os.Getenv("CAPSIM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &ValidationError{Field: "CAPSIM_SEED", Reason: err.Error()}
		}
		cfg.Generator.Seed = seed
	}
	if v := os.Getenv("CAPSIM_OUTPUT_SINK"); v != "" {
		cfg.Output.Sink = v
	}
	if v := os.Getenv("CAPSIM_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("CAPSIM_SQLITE_PATH"); v != "" {
		cfg.Output.SQLitePath = v
	}
	if v := os.Getenv("CAPSIM_POSTGRES_DSN"); v != "" {
		cfg.Output.PostgresDSN = v
	}
	if v := os.Getenv("CAPSIM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
