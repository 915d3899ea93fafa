package schema

import (
	"errors"
	"fmt"
	"math"

	"github.com/rpggio/capsim/internal/domain/project"
	"github.com/rpggio/capsim/internal/domain/timeseries"
)

// ErrInvalidDataset is returned when generated tables break the contract.
var ErrInvalidDataset = errors.New("invalid dataset")

// Reliability bounds of the contract.
const (
	MinReliability = 0.2
	MaxReliability = 0.99
)

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDataset, fmt.Sprintf(format, args...))
}

// Validate checks the domain invariants of both tables: enumerated
// categories, value ranges, unique project ids, time series restricted to the
// first sampled projects, and non-decreasing cumulative cost per project.
func Validate(projects []project.Record, points []timeseries.Point, sampled int) error {
	index := make(map[string]int, len(projects))
	for i, r := range projects {
		if _, dup := index[r.ID]; dup {
			return violation("duplicate project id %s", r.ID)
		}
		index[r.ID] = i

		if err := validateProject(r); err != nil {
			return err
		}
	}

	type progress struct {
		month      int
		cumulative float64
	}
	last := make(map[string]progress)
	for _, p := range points {
		i, ok := index[p.ProjectID]
		if !ok {
			return violation("time series references unknown project %s", p.ProjectID)
		}
		if i >= sampled {
			return violation("time series for %s outside the first %d projects", p.ProjectID, sampled)
		}
		if p.MonthIndex < 1 || p.MonthIndex > projects[i].FinalDuration {
			return violation("%s: month %d outside [1, %d]", p.ProjectID, p.MonthIndex, projects[i].FinalDuration)
		}
		if p.MonthlySpend < 0 {
			return violation("%s: negative spend in month %d", p.ProjectID, p.MonthIndex)
		}
		prev := last[p.ProjectID]
		if p.MonthIndex <= prev.month {
			return violation("%s: month %d not after month %d", p.ProjectID, p.MonthIndex, prev.month)
		}
		if p.CumulativeCost < prev.cumulative {
			return violation("%s: cumulative cost decreases at month %d", p.ProjectID, p.MonthIndex)
		}
		last[p.ProjectID] = progress{month: p.MonthIndex, cumulative: p.CumulativeCost}
	}
	return nil
}

func validateProject(r project.Record) error {
	switch {
	case !r.Type.Valid():
		return violation("%s: project type %d", r.ID, int(r.Type))
	case !r.SoilQuality.Valid():
		return violation("%s: soil quality %d", r.ID, int(r.SoilQuality))
	case r.ContractorReliability < MinReliability || r.ContractorReliability > MaxReliability:
		return violation("%s: contractor reliability %g", r.ID, r.ContractorReliability)
	case !unit(r.DesignChangeRate):
		return violation("%s: design change rate %g", r.ID, r.DesignChangeRate)
	case !unit(r.WeatherRiskIndex):
		return violation("%s: weather risk index %g", r.ID, r.WeatherRiskIndex)
	case r.SupplyDelayRate < 0 || r.ChangeOrdersCount < 0 || r.ChangeOrdersValue < 0:
		return violation("%s: negative count or value", r.ID)
	case !positiveFinite(r.BaselineCost) || r.BaselineDuration < 1:
		return violation("%s: baseline %g over %d months", r.ID, r.BaselineCost, r.BaselineDuration)
	case !positiveFinite(r.FinalCost) || !positiveFinite(r.CostMultiplier):
		return violation("%s: final cost %g", r.ID, r.FinalCost)
	case r.FinalDuration < 1:
		return violation("%s: final duration %d", r.ID, r.FinalDuration)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
