// Package rates resolves country codes to per-diem rate sets.
//
// A Table is immutable once built. The effective table of a build is loaded
// once, either from the embedded default file or from an operator-supplied HCL
// file, and must declare the same RuleVersion as the build.
package rates

import (
	"sort"
	"strings"

	"travel-mate/core/determinism"
	"travel-mate/core/types"
	"travel-mate/internal/errors"
)

// RuleVersion identifies the rate table and calculation logic of this build.
// It is stamped on every result and is never taken from callers.
const RuleVersion = "DE_TRAVEL_RULES_2026_01"

// RateSet holds the two daily rates of one country.
type RateSet struct {
	FullDay    determinism.Money `json:"full_day"`
	PartialDay determinism.Money `json:"partial_day"`
}

// Entry is one row of a Table listing.
type Entry struct {
	Code     string  `json:"country_code"`
	Domestic bool    `json:"domestic"`
	Rates    RateSet `json:"rates"`
}

// Table maps country codes to rate sets.
type Table struct {
	domestic      RateSet
	international map[string]RateSet
	source        string
}

// NewTable builds a table from a domestic rate set and a country→rates map.
// The map is copied and its keys upper-cased.
func NewTable(domestic RateSet, international map[string]RateSet) *Table {
	intl := make(map[string]RateSet, len(international))
	for code, rs := range international {
		intl[strings.ToUpper(code)] = rs
	}
	return &Table{
		domestic:      domestic,
		international: intl,
		source:        "programmatic",
	}
}

// Resolve returns the rate set for a country code. Codes are case-insensitive.
func (t *Table) Resolve(countryCode string) (RateSet, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == types.DomesticCountry {
		return t.domestic, nil
	}
	rs, ok := t.international[code]
	if !ok {
		return RateSet{}, errors.Precondition(
			"No international per-diem rates configured for country code %s.", code,
		).WithContext(errors.KeyCountryCode, code)
	}
	return rs, nil
}

// IsDomestic reports whether code resolves to the domestic rate set.
func (t *Table) IsDomestic(countryCode string) bool {
	return strings.ToUpper(strings.TrimSpace(countryCode)) == types.DomesticCountry
}

// Codes returns every supported code, domestic first, then sorted.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.international)+1)
	for code := range t.international {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return append([]string{types.DomesticCountry}, codes...)
}

// Entries lists the table in Codes order.
func (t *Table) Entries() []Entry {
	codes := t.Codes()
	entries := make([]Entry, 0, len(codes))
	for _, code := range codes {
		rs, _ := t.Resolve(code)
		entries = append(entries, Entry{Code: code, Domestic: t.IsDomestic(code), Rates: rs})
	}
	return entries
}

// Source describes where the table was loaded from.
func (t *Table) Source() string {
	return t.source
}
