package engine

import (
	"travel-mate/core/allocation"
	"travel-mate/core/determinism"
	"travel-mate/core/meals"
	"travel-mate/core/trace"
)

// Totals are the three headline amounts of a result.
type Totals struct {
	GrossAllowance determinism.Money `json:"gross_allowance"`
	MealDeductions determinism.Money `json:"meal_deductions"`
	NetAllowance   determinism.Money `json:"net_allowance"`
}

// TripResult is the breakdown of one segment.
type TripResult struct {
	TripID         string                    `json:"trip_id"`
	CountryCode    string                    `json:"country_code"`
	GrossAllowance determinism.Money         `json:"gross_allowance"`
	MealDeductions determinism.Money         `json:"meal_deductions"`
	NetAllowance   determinism.Money         `json:"net_allowance"`
	Days           []allocation.DayAllowance `json:"-"`
	Meals          []meals.DayDeduction      `json:"-"`
	Steps          []trace.Step              `json:"-"`
}

// CalculationSteps renders the trip's own steps.
func (t TripResult) CalculationSteps() []string {
	return trace.RenderAll(t.Steps)
}

// Result is the outcome of one calculation.
//
// Totals are summed from unrounded trip amounts and rounded once, so they
// may differ from the sum of per-trip nets by at most one cent per trip.
type Result struct {
	RuleVersion string       `json:"rule_version"`
	Totals      Totals       `json:"totals"`
	ByTrip      []TripResult `json:"by_trip"`
	Steps       []trace.Step `json:"-"`
}

// CalculationSteps renders the full audit trail in calculation order.
func (r *Result) CalculationSteps() []string {
	return trace.RenderAll(r.Steps)
}

// TripIDs lists the trip ids in calculation order.
func (r *Result) TripIDs() []string {
	ids := make([]string, len(r.ByTrip))
	for i, t := range r.ByTrip {
		ids[i] = t.TripID
	}
	return ids
}
