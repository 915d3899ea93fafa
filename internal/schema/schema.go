// Package schema defines the versioned contract of the two generated tables
// and encodes domain values into rows at the storage boundary.
package schema

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/domain/timeseries"
)

// Version identifies the column layout below. Bump it on any change to names,
// order, types or enumerated domains.
const Version = "1"

// ColumnType is the logical type of a column.
type ColumnType string

const (
	TypeString   ColumnType = "string"
	TypeCategory ColumnType = "category"
	TypeInt      ColumnType = "int"
	TypeFloat    ColumnType = "float"
	TypeBool     ColumnType = "bool"
)

// Column describes one column of a table.
type Column struct {
	Name        string     `yaml:"name"`
	Type        ColumnType `yaml:"type"`
	Precision   int        `yaml:"precision,omitempty"`
	Enum        []string   `yaml:"enum,omitempty"`
	Description string     `yaml:"description"`
}

// Table is an ordered set of columns.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// Header returns the column names in order.
func (t Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema is the full contract between the generator and its consumers.
type Schema struct {
	Version string  `yaml:"version"`
	Tables  []Table `yaml:"tables"`
}

func enumOf[T fmt.Stringer](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// Projects is the project table: one row per generated project.
var Projects = Table{
	Name: "projects",
	Columns: []Column{
		{Name: "project_id", Type: TypeString, Description: "prefix followed by a sequence number"},
		{Name: "project_type", Type: TypeCategory, Enum: enumOf(project.Types), Description: "kind of project"},
		{Name: "baseline_cost", Type: TypeFloat, Precision: 2, Description: "pre-adjustment cost, millions"},
		{Name: "baseline_duration", Type: TypeInt, Description: "pre-adjustment duration, months"},
		{Name: "soil_quality", Type: TypeCategory, Enum: enumOf(project.SoilQualities), Description: "site ground condition"},
		{Name: "contractor_reliability", Type: TypeFloat, Precision: 3, Description: "in [0.2, 0.99]"},
		{Name: "supply_delay_rate", Type: TypeInt, Description: "supply delay event count"},
		{Name: "design_change_rate", Type: TypeFloat, Precision: 3, Description: "in [0, 1]"},
		{Name: "weather_risk_index", Type: TypeFloat, Precision: 3, Description: "in [0, 1]"},
		{Name: "change_orders_count", Type: TypeInt, Description: "number of change orders"},
		{Name: "change_orders_value", Type: TypeFloat, Precision: 2, Description: "aggregate change order value, millions"},
		{Name: "cost_multiplier", Type: TypeFloat, Precision: 3, Description: "final cost over baseline cost"},
		{Name: "final_cost", Type: TypeFloat, Precision: 2, Description: "derived cost, millions"},
		{Name: "final_duration", Type: TypeInt, Description: "derived duration, months, at least 1"},
	},
}

// TimeSeries is the monthly spend table for the sampled projects.
var TimeSeries = Table{
	Name: "time_series",
	Columns: []Column{
		{Name: "project_id", Type: TypeString, Description: "references projects.project_id"},
		{Name: "month_index", Type: TypeInt, Description: "1-based month, may skip unreported months"},
		{Name: "monthly_spend", Type: TypeFloat, Precision: 2, Description: "reported spend for the month, millions"},
		{Name: "cumulative_cost", Type: TypeFloat, Precision: 2, Description: "running total of reported spend, millions"},
		{Name: "reported_design_change", Type: TypeBool, Description: "design change reported this month, encoded 0/1"},
	},
}

// Current returns the schema at Version.
func Current() Schema {
	return Schema{Version: Version, Tables: []Table{Projects, TimeSeries}}
}

// WriteYAML writes the current schema as YAML.
func WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Current()); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return enc.Close()
}

// ProjectValues returns the typed column values of r in Projects order, with
// floats rounded to their column precision.
func ProjectValues(r project.Record) ([]any, error) {
	typ, err := r.Type.MarshalText()
	if err != nil {
		return nil, err
	}
	soil, err := r.SoilQuality.MarshalText()
	if err != nil {
		return nil, err
	}
	return []any{
		r.ID,
		string(typ),
		project.Round(r.BaselineCost, 2),
		int64(r.BaselineDuration),
		string(soil),
		project.Round(r.ContractorReliability, 3),
		int64(r.SupplyDelayRate),
		project.Round(r.DesignChangeRate, 3),
		project.Round(r.WeatherRiskIndex, 3),
		int64(r.ChangeOrdersCount),
		project.Round(r.ChangeOrdersValue, 2),
		project.Round(r.CostMultiplier, 3),
		project.Round(r.FinalCost, 2),
		int64(r.FinalDuration),
	}, nil
}

// TimeSeriesValues returns the typed column values of p in TimeSeries order.
func TimeSeriesValues(p timeseries.Point) []any {
	return []any{
		p.ProjectID,
		int64(p.MonthIndex),
		project.Round(p.MonthlySpend, 2),
		project.Round(p.CumulativeCost, 2),
		p.ReportedDesignChange,
	}
}

// ProjectRow encodes r as text fields.
func ProjectRow(r project.Record) ([]string, error) {
	values, err := ProjectValues(r)
	if err != nil {
		return nil, err
	}
	return formatRow(values), nil
}

// TimeSeriesRow encodes p as text fields.
func TimeSeriesRow(p timeseries.Point) []string {
	return formatRow(TimeSeriesValues(p))
}

func formatRow(values []any) []string {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = formatValue(v)
	}
	return row
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}
