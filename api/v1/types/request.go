// Package types - Request DTOs
package types

// CalculateRequest is the public request for a per-diem calculation
type CalculateRequest struct {
	// Segments are the trip segments of one batch, in any order
	Segments []SegmentDTO `json:"segments"`
}

// SegmentDTO is one trip segment on the wire
type SegmentDTO struct {
	// TripID identifies the owning trip
	TripID string `json:"trip_id"`

	// Start and End are RFC 3339 timestamps. An empty value is "missing".
	Start string `json:"start"`
	End   string `json:"end"`

	// CountryCode is an ISO country code; empty means domestic ("DE")
	CountryCode string `json:"country_code,omitempty"`

	City string `json:"city,omitempty"`

	// ProvidedMeals lists meals provided per calendar day
	ProvidedMeals []MealProvisionDTO `json:"provided_meals,omitempty"`

	// Receipts are checked for duplicate ids only
	Receipts []ReceiptDTO `json:"receipts,omitempty"`
}

// MealProvisionDTO records the meals provided on one day
type MealProvisionDTO struct {
	// Day is a calendar date (YYYY-MM-DD)
	Day       string `json:"day"`
	Breakfast bool   `json:"breakfast,omitempty"`
	Lunch     bool   `json:"lunch,omitempty"`
	Dinner    bool   `json:"dinner,omitempty"`
}

// ReceiptDTO is a receipt reference
type ReceiptDTO struct {
	ReceiptID string `json:"receipt_id"`

	// Amount as decimal string (e.g., "12.50")
	Amount string `json:"amount"`
}
