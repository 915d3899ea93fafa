package project

import (
	"fmt"
	"math"
)

// Type is the kind of capital-construction project.
type Type int

const (
	TypeRoad Type = iota
	TypeBridge
	TypeBuilding
)

// Types lists project types in sampling order.
var Types = []Type{TypeRoad, TypeBridge, TypeBuilding}

func (t Type) String() string {
	switch t {
	case TypeRoad:
		return "road"
	case TypeBridge:
		return "bridge"
	case TypeBuilding:
		return "building"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Valid reports whether t is one of the enumerated project types.
func (t Type) Valid() bool {
	return t >= TypeRoad && t <= TypeBuilding
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: project type %d", ErrUnknownCategory, int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType converts the serialized form back to a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: project type %q", ErrUnknownCategory, s)
}

// SoilQuality is the ground condition at the project site. Its integer value
// is the ordinal code used by the cost and duration models.
type SoilQuality int

const (
	SoilGood SoilQuality = iota
	SoilModerate
	SoilPoor
)

// SoilQualities lists soil qualities in sampling order.
var SoilQualities = []SoilQuality{SoilGood, SoilModerate, SoilPoor}

func (s SoilQuality) String() string {
	switch s {
	case SoilGood:
		return "good"
	case SoilModerate:
		return "moderate"
	case SoilPoor:
		return "poor"
	default:
		return fmt.Sprintf("SoilQuality(%d)", int(s))
	}
}

// Code returns the ordinal code: good=0, moderate=1, poor=2.
func (s SoilQuality) Code() float64 {
	return float64(s)
}

func (s SoilQuality) Valid() bool {
	return s >= SoilGood && s <= SoilPoor
}

func (s SoilQuality) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: soil quality %d", ErrUnknownCategory, int(s))
	}
	return []byte(s.String()), nil
}

func (s *SoilQuality) UnmarshalText(text []byte) error {
	parsed, err := ParseSoilQuality(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSoilQuality converts the serialized form back to a SoilQuality.
func ParseSoilQuality(s string) (SoilQuality, error) {
	for _, q := range SoilQualities {
		if q.String() == s {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: soil quality %q", ErrUnknownCategory, s)
}

// Attributes are the covariates sampled for a project before any causal
// adjustment.
type Attributes struct {
	Type                  Type        `json:"project_type"`
	BaselineCost          float64     `json:"baseline_cost"`
	BaselineDuration      int         `json:"baseline_duration"`
	SoilQuality           SoilQuality `json:"soil_quality"`
	ContractorReliability float64     `json:"contractor_reliability"`
	SupplyDelayRate       int         `json:"supply_delay_rate"`
	DesignChangeRate      float64     `json:"design_change_rate"`
	WeatherRiskIndex      float64     `json:"weather_risk_index"`
}

// Record is one generated project. Final cost and duration are always derived
// from the attributes by the cost-duration model.
type Record struct {
	ID string `json:"project_id"`
	Attributes
	ChangeOrdersCount int     `json:"change_orders_count"`
	ChangeOrdersValue float64 `json:"change_orders_value"`
	CostMultiplier    float64 `json:"cost_multiplier"`
	FinalCost         float64 `json:"final_cost"`
	FinalDuration     int     `json:"final_duration"`
}

// FormatID builds a project id from a prefix and sequence number, e.g. P1000.
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s%d", prefix, n)
}

// Round rounds v to the given number of decimal places, with ties going to
// the even neighbour.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
