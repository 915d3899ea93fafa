package project

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateProject indicates a derived final duration that cannot
	// carry a monthly spend curve.
	ErrDegenerateProject = errors.New("degenerate project")
	// ErrUnknownCategory indicates a category string outside its enumerated domain.
	ErrUnknownCategory = errors.New("unknown category")
)

// DegenerateError reports the project whose derived duration cannot carry a
// monthly spend curve.
type DegenerateError struct {
	ProjectID string
	Months    int
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("%s: %s has final duration %d months", ErrDegenerateProject, e.ProjectID, e.Months)
}

func (e *DegenerateError) Unwrap() error {
	return ErrDegenerateProject
}

// DurationRangeError reports a derived duration too long to synthesize.
type DurationRangeError struct {
	ProjectID string
	Months    float64
	Max       int
}

func (e *DurationRangeError) Error() string {
	return fmt.Sprintf("%s: %s has final duration %g months, limit is %d", ErrDegenerateProject, e.ProjectID, e.Months, e.Max)
}

func (e *DurationRangeError) Unwrap() error {
	return ErrDegenerateProject
}
