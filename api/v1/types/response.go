// Package types - Public API DTOs
// This package contains ONLY data transfer objects for the public API.
// NO ENGINE IMPORTS ALLOWED - this is the stable API contract.
package types

// CalculateResponse is the public response for a per-diem calculation.
// This struct is the API contract - changes are breaking changes.
type CalculateResponse struct {
	// RuleVersion identifies the rate table and rules that produced this result
	RuleVersion string `json:"rule_version"`

	Totals TotalsDTO `json:"totals"`

	// CalculationSteps is the rendered audit trail, for display only
	CalculationSteps []string `json:"calculation_steps"`

	ByTrip []TripDTO `json:"by_trip"`

	// Trace is the structured audit trail, included on request
	Trace []StepDTO `json:"trace,omitempty"`
}

// TotalsDTO holds the headline amounts as 2-decimal strings
type TotalsDTO struct {
	GrossAllowance string `json:"gross_allowance"`
	MealDeductions string `json:"meal_deductions"`
	NetAllowance   string `json:"net_allowance"`
}

// TripDTO is the breakdown of one trip segment
type TripDTO struct {
	TripID         string `json:"trip_id"`
	CountryCode    string `json:"country_code"`
	GrossAllowance string `json:"gross_allowance"`
	MealDeductions string `json:"meal_deductions"`
	NetAllowance   string `json:"net_allowance"`
}

// StepDTO is one structured audit record
type StepDTO struct {
	Kind        string `json:"kind"`
	TripID      string `json:"trip_id,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Date        string `json:"date,omitempty"`
	Meal        string `json:"meal,omitempty"`
	Ratio       string `json:"ratio,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Gross       string `json:"gross,omitempty"`
	Deductions  string `json:"deductions,omitempty"`
	Net         string `json:"net,omitempty"`

	// Message is the rendered form of the step
	Message string `json:"message"`
}

// ErrorResponse is returned instead of a result when a calculation fails
type ErrorResponse struct {
	Error ErrorDTO `json:"error"`
}

// ErrorDTO describes a failed calculation
type ErrorDTO struct {
	// Type is e.g. "PRECONDITION_VIOLATION" or "INPUT_ERROR"
	Type    string `json:"type"`
	Message string `json:"message"`

	// Context carries the identifiers needed to fix the input
	Context map[string]string `json:"context,omitempty"`
}
