// Package trace records every arithmetic step of a calculation as structured,
// immutable records. Rendering to display strings lives in format.go so the
// audit trail stays machine-inspectable.
package trace

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"travel-mate/core/determinism"
)

// Kind identifies what a step records.
type Kind string

const (
	KindRuleVersion      Kind = "rule_version"
	KindRates            Kind = "rates"
	KindSingleDay        Kind = "single_day"
	KindArrivalDeparture Kind = "arrival_departure_day"
	KindFullDay          Kind = "full_day"
	KindMealDeduction    Kind = "meal_deduction"
	KindMealSubtotal     Kind = "meal_subtotal"
	KindNoMealDeduction  Kind = "no_meal_deduction"
	KindTripSubtotal     Kind = "trip_subtotal"
	KindTotal            Kind = "total"
)

// Step is one audit record. Fields irrelevant to a Kind are left zero.
type Step struct {
	Kind        Kind   `json:"kind"`
	RuleVersion string `json:"rule_version,omitempty"`
	TripID      string `json:"trip_id,omitempty"`
	CountryCode string `json:"country_code,omitempty"`

	// Date is the calendar day the step applies to
	Date civil.Date `json:"date,omitzero"`

	// Domestic marks which rate regime a rates step announced
	Domestic bool `json:"domestic,omitempty"`

	// Hours is the absence duration of a single-day trip
	Hours decimal.Decimal `json:"hours,omitzero"`

	// MinHours is the minimum absence a single-day trip must reach
	MinHours decimal.Decimal `json:"min_hours,omitzero"`

	// Qualifies is set when a single-day trip met the minimum absence
	Qualifies bool `json:"qualifies,omitempty"`

	// Meal and Ratio describe a meal deduction
	Meal  string          `json:"meal,omitempty"`
	Ratio decimal.Decimal `json:"ratio,omitzero"`

	// FullDayRate and PartialDayRate are set on rates steps
	FullDayRate    determinism.Money `json:"full_day_rate,omitzero"`
	PartialDayRate determinism.Money `json:"partial_day_rate,omitzero"`

	// Amount is the priced or deducted amount of the step
	Amount determinism.Money `json:"amount,omitzero"`

	// Gross, Deductions and Net are set on subtotal and total steps
	Gross      determinism.Money `json:"gross,omitzero"`
	Deductions determinism.Money `json:"deductions,omitzero"`
	Net        determinism.Money `json:"net,omitzero"`
}

// RuleVersion announces the rule version a calculation applies.
func RuleVersion(version string) Step {
	return Step{Kind: KindRuleVersion, RuleVersion: version}
}

// Rates announces the rate set chosen for a trip.
func Rates(tripID, country string, domestic bool, full, partial determinism.Money) Step {
	return Step{
		Kind:           KindRates,
		TripID:         tripID,
		CountryCode:    country,
		Domestic:       domestic,
		FullDayRate:    full,
		PartialDayRate: partial,
	}
}

// SingleDay records the pricing of a trip that starts and ends on one date.
func SingleDay(tripID string, day civil.Date, hours, minHours decimal.Decimal, qualifies bool, amount determinism.Money) Step {
	return Step{
		Kind:      KindSingleDay,
		TripID:    tripID,
		Date:      day,
		Hours:     hours,
		MinHours:  minHours,
		Qualifies: qualifies,
		Amount:    amount,
	}
}

// ArrivalDeparture records a first or last day priced at the partial rate.
func ArrivalDeparture(tripID string, day civil.Date, amount determinism.Money) Step {
	return Step{Kind: KindArrivalDeparture, TripID: tripID, Date: day, Amount: amount}
}

// FullDay records a day strictly inside a trip priced at the full rate.
func FullDay(tripID string, day civil.Date, amount determinism.Money) Step {
	return Step{Kind: KindFullDay, TripID: tripID, Date: day, Amount: amount}
}

// MealDeduction records one provided meal.
func MealDeduction(tripID string, day civil.Date, meal string, ratio decimal.Decimal, amount determinism.Money) Step {
	return Step{
		Kind:   KindMealDeduction,
		TripID: tripID,
		Date:   day,
		Meal:   meal,
		Ratio:  ratio,
		Amount: amount,
	}
}

// MealSubtotal records the deductions of one day.
func MealSubtotal(tripID string, day civil.Date, amount determinism.Money) Step {
	return Step{Kind: KindMealSubtotal, TripID: tripID, Date: day, Amount: amount}
}

// NoMealDeduction records that a trip had nothing deducted.
func NoMealDeduction(tripID string) Step {
	return Step{Kind: KindNoMealDeduction, TripID: tripID}
}

// TripSubtotal records gross - deductions = net for one trip.
func TripSubtotal(tripID string, gross, deductions, net determinism.Money) Step {
	return Step{Kind: KindTripSubtotal, TripID: tripID, Gross: gross, Deductions: deductions, Net: net}
}

// Total records the grand totals of a calculation.
func Total(gross, deductions, net determinism.Money) Step {
	return Step{Kind: KindTotal, Gross: gross, Deductions: deductions, Net: net}
}
