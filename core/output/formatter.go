// Package output renders calculation responses for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"travel-mate/api/v1/types"
	"travel-mate/core/ui"
	"travel-mate/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is a human-readable terminal report
	FormatText Format = "text"

	// FormatJSON is the machine-readable v1 response
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the response to w
	Render(w io.Writer, resp types.CalculateResponse) error
}

// Registry manages formatter registration
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry creates a registry with the built-in formatters.
// Color only affects the text formatter.
func NewRegistry(color bool) *Registry {
	r := &Registry{formatters: map[Format]Formatter{}}
	r.Register(&TextFormatter{Color: color})
	r.Register(&JSONFormatter{Indent: "  "})
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format name
func (r *Registry) Get(name string) (Formatter, error) {
	f, ok := r.formatters[Format(strings.ToLower(name))]
	if !ok {
		return nil, errors.Newf(errors.TypeConfig, "unknown output format %q (supported: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f, nil
}

// Names lists registered format names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// JSONFormatter writes the response as JSON
type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) Format() Format { return FormatJSON }

func (f *JSONFormatter) Render(w io.Writer, resp types.CalculateResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	return nil
}

// TextFormatter writes a terminal report: per-trip table, audit trail, totals
type TextFormatter struct {
	Color bool
}

func (f *TextFormatter) Format() Format { return FormatText }

func (f *TextFormatter) Render(w io.Writer, resp types.CalculateResponse) error {
	tw := ui.NewWriter(w, !f.Color)

	tw.Header("Trips")
	tbl := tw.NewTable("Trip", "Country", "Gross", "Meals", "Net").AlignRight(2, 3, 4)
	for _, t := range resp.ByTrip {
		tbl.AddRow(t.TripID, t.CountryCode, t.GrossAllowance, t.MealDeductions, t.NetAllowance)
	}
	tbl.Render()

	tw.Header("Calculation Steps")
	for i, line := range resp.CalculationSteps {
		tw.Step(i+1, line)
	}

	summary := tw.NewAllowanceSummary()
	summary.RuleVersion = resp.RuleVersion
	summary.GrossAllowance = resp.Totals.GrossAllowance
	summary.MealDeductions = resp.Totals.MealDeductions
	summary.NetAllowance = resp.Totals.NetAllowance
	summary.Trips = len(resp.ByTrip)
	summary.Render()
	return nil
}
