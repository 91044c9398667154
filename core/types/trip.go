// Package types - Trip segment input types
package types

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"travel-mate/core/determinism"
)

// DomesticCountry is the country whose rates apply when none is given.
const DomesticCountry = "DE"

// Receipt is an expense receipt attached to a trip. Only the ID takes part in
// the calculation (duplicate detection).
type Receipt struct {
	// ID is unique across a calculation batch
	ID string `json:"receipt_id"`

	// Amount is the receipt total
	Amount determinism.Money `json:"amount"`
}

// DayMealProvision records which meals the employer provided on one day.
type DayMealProvision struct {
	Day       civil.Date `json:"day"`
	Breakfast bool       `json:"breakfast"`
	Lunch     bool       `json:"lunch"`
	Dinner    bool       `json:"dinner"`
}

// Provided reports whether meal was provided on the day.
func (p DayMealProvision) Provided(meal Meal) bool {
	switch meal {
	case Breakfast:
		return p.Breakfast
	case Lunch:
		return p.Lunch
	case Dinner:
		return p.Dinner
	default:
		return false
	}
}

// TripSegment is one trip's allowance-relevant time window.
//
// Calendar dates are derived from Start and End in their own location, so
// callers decide the time zone by how they construct the timestamps. A zero
// Start or End means the value is missing.
type TripSegment struct {
	// TripID identifies the trip in errors and trace steps
	TripID string `json:"trip_id"`

	// Start is the departure timestamp
	Start time.Time `json:"start"`

	// End is the return timestamp
	End time.Time `json:"end"`

	// CountryCode selects the rate set; empty means DomesticCountry
	CountryCode string `json:"country_code"`

	// City is informational only
	City string `json:"city,omitempty"`

	// ProvidedMeals lists employer-provided meals per day
	ProvidedMeals []DayMealProvision `json:"provided_meals,omitempty"`

	// Receipts attached to the trip
	Receipts []Receipt `json:"receipts,omitempty"`
}

// Country returns the upper-cased country code, defaulting to DomesticCountry.
func (s TripSegment) Country() string {
	code := strings.ToUpper(strings.TrimSpace(s.CountryCode))
	if code == "" {
		return DomesticCountry
	}
	return code
}

// StartDate returns the calendar date of Start
func (s TripSegment) StartDate() civil.Date {
	return civil.DateOf(s.Start)
}

// EndDate returns the calendar date of End
func (s TripSegment) EndDate() civil.Date {
	return civil.DateOf(s.End)
}

// Duration returns the elapsed time between Start and End
func (s TripSegment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// SingleDay reports whether the segment starts and ends on the same date.
func (s TripSegment) SingleDay() bool {
	return s.StartDate() == s.EndDate()
}

// EachDate calls fn for every calendar date from StartDate to EndDate inclusive.
func (s TripSegment) EachDate(fn func(day civil.Date)) {
	last := s.EndDate()
	for day := s.StartDate(); !day.After(last); day = day.AddDays(1) {
		fn(day)
	}
}

// ByStart orders segments by ascending start time.
func ByStart(a, b TripSegment) bool {
	return a.Start.Before(b.Start)
}
