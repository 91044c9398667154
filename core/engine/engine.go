// Package engine turns a batch of trip segments into an auditable per-diem
// result. It is the only entry point callers need; the CLI and the snapshot
// store are thin wrappers around it.
//
// An Engine holds nothing but its read-only rate table and logger, so one
// instance can serve any number of concurrent Calculate calls.
package engine

import (
	"go.uber.org/zap"

	"travel-mate/core/allocation"
	"travel-mate/core/determinism"
	"travel-mate/core/meals"
	"travel-mate/core/rates"
	"travel-mate/core/trace"
	"travel-mate/core/types"
	"travel-mate/core/validation"
)

// Engine calculates per-diem allowances.
type Engine struct {
	table  *rates.Table
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRateTable replaces the built-in rate table.
func WithRateTable(t *rates.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithLogger sets the logger. Calculations are silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		table:  rates.DefaultTable(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RateTable returns the table the engine prices with.
func (e *Engine) RateTable() *rates.Table {
	return e.table
}

// Calculate validates the batch and prices every segment. Any precondition
// failure aborts the whole call; no partial result is ever returned.
func (e *Engine) Calculate(segments []types.TripSegment) (*Result, error) {
	if err := validation.Validate(segments); err != nil {
		e.logger.Debug("batch rejected", zap.Error(err))
		return nil, err
	}

	ordered := determinism.SortedCopy(segments, types.ByStart)

	// Resolve up front so an unsupported country fails before any pricing.
	sets := make([]rates.RateSet, len(ordered))
	for i, seg := range ordered {
		rs, err := e.table.Resolve(seg.Country())
		if err != nil {
			e.logger.Debug("rate lookup failed", zap.String("trip_id", seg.TripID), zap.Error(err))
			return nil, err
		}
		sets[i] = rs
	}

	res := &Result{
		RuleVersion: rates.RuleVersion,
		Steps:       []trace.Step{trace.RuleVersion(rates.RuleVersion)},
		ByTrip:      make([]TripResult, 0, len(ordered)),
	}

	gross := determinism.Zero(determinism.EUR)
	deductions := determinism.Zero(determinism.EUR)
	net := determinism.Zero(determinism.EUR)

	for i, seg := range ordered {
		tr := e.priceSegment(seg, sets[i])
		res.ByTrip = append(res.ByTrip, tr)
		res.Steps = append(res.Steps, tr.Steps...)

		gross = gross.Add(tr.GrossAllowance)
		deductions = deductions.Add(tr.MealDeductions)
		net = net.Add(tr.NetAllowance)
	}

	res.Totals = Totals{
		GrossAllowance: gross.Quantize(),
		MealDeductions: deductions.Quantize(),
		NetAllowance:   net.Quantize(),
	}
	res.Steps = append(res.Steps, trace.Total(res.Totals.GrossAllowance, res.Totals.MealDeductions, res.Totals.NetAllowance))

	e.logger.Info("per diem calculated",
		zap.String("rule_version", res.RuleVersion),
		zap.Int("trips", len(res.ByTrip)),
		zap.String("gross", res.Totals.GrossAllowance.Fixed()),
		zap.String("deductions", res.Totals.MealDeductions.Fixed()),
		zap.String("net", res.Totals.NetAllowance.Fixed()),
	)
	return res, nil
}

// CalculateAndPersist returns the payload a persistence collaborator stores
// verbatim. It performs no I/O.
func (e *Engine) CalculateAndPersist(segments []types.TripSegment) (*Result, error) {
	return e.Calculate(segments)
}

func (e *Engine) priceSegment(seg types.TripSegment, rs rates.RateSet) TripResult {
	country := seg.Country()
	steps := []trace.Step{
		trace.Rates(seg.TripID, country, e.table.IsDomestic(country), rs.FullDay, rs.PartialDay),
	}

	alloc := allocation.Allocate(seg, rs)
	steps = append(steps, alloc.Steps...)

	ded := meals.Deduct(seg, rs.FullDay)
	steps = append(steps, ded.Steps...)

	net := alloc.Gross.Sub(ded.Total).Quantize()
	steps = append(steps, trace.TripSubtotal(seg.TripID, alloc.Gross, ded.Total, net))

	e.logger.Debug("trip priced",
		zap.String("trip_id", seg.TripID),
		zap.String("country_code", country),
		zap.Int("days", len(alloc.Days)),
		zap.String("gross", alloc.Gross.Fixed()),
		zap.String("deductions", ded.Total.Fixed()),
		zap.String("net", net.Fixed()),
	)

	return TripResult{
		TripID:         seg.TripID,
		CountryCode:    country,
		GrossAllowance: alloc.Gross,
		MealDeductions: ded.Total,
		NetAllowance:   net,
		Days:           alloc.Days,
		Meals:          ded.Days,
		Steps:          steps,
	}
}
