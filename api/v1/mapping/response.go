package mapping

import (
	stderrors "errors"
	"sort"

	"travel-mate/api/v1/types"
	"travel-mate/core/engine"
	"travel-mate/core/trace"
	"travel-mate/internal/errors"
)

// ResponseOptions controls optional response sections
type ResponseOptions struct {
	// IncludeTrace adds the structured steps
	IncludeTrace bool
}

// MapResponse maps an engine result to the API response.
// This is a PURE function - no side effects, no state
func MapResponse(res *engine.Result, opts ResponseOptions) types.CalculateResponse {
	resp := types.CalculateResponse{
		RuleVersion: res.RuleVersion,
		Totals: types.TotalsDTO{
			GrossAllowance: res.Totals.GrossAllowance.Fixed(),
			MealDeductions: res.Totals.MealDeductions.Fixed(),
			NetAllowance:   res.Totals.NetAllowance.Fixed(),
		},
		CalculationSteps: res.CalculationSteps(),
		ByTrip:           make([]types.TripDTO, len(res.ByTrip)),
	}

	for i, t := range res.ByTrip {
		resp.ByTrip[i] = types.TripDTO{
			TripID:         t.TripID,
			CountryCode:    t.CountryCode,
			GrossAllowance: t.GrossAllowance.Fixed(),
			MealDeductions: t.MealDeductions.Fixed(),
			NetAllowance:   t.NetAllowance.Fixed(),
		}
	}

	if opts.IncludeTrace {
		resp.Trace = make([]types.StepDTO, len(res.Steps))
		for i, s := range res.Steps {
			resp.Trace[i] = mapStep(s)
		}
	}

	return resp
}

func mapStep(s trace.Step) types.StepDTO {
	dto := types.StepDTO{
		Kind:        string(s.Kind),
		TripID:      s.TripID,
		CountryCode: s.CountryCode,
		Message:     trace.Render(s),
	}
	if !s.Date.IsZero() {
		dto.Date = s.Date.String()
	}

	switch s.Kind {
	case trace.KindSingleDay, trace.KindArrivalDeparture, trace.KindFullDay, trace.KindMealSubtotal:
		dto.Amount = s.Amount.Fixed()
	case trace.KindMealDeduction:
		dto.Meal = s.Meal
		dto.Ratio = s.Ratio.StringFixed(2)
		dto.Amount = s.Amount.Fixed()
	case trace.KindTripSubtotal, trace.KindTotal:
		dto.Gross = s.Gross.Fixed()
		dto.Deductions = s.Deductions.Fixed()
		dto.Net = s.Net.Fixed()
	}
	return dto
}

// MapError maps a failure to the API error payload. Errors that are not
// domain errors are reported as internal.
func MapError(err error) types.ErrorResponse {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return types.ErrorResponse{Error: types.ErrorDTO{
			Type:    string(errors.TypeInternal),
			Message: err.Error(),
		}}
	}

	dto := types.ErrorDTO{Type: string(e.Type), Message: e.Message}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dto.Context = make(map[string]string, len(keys))
		for _, k := range keys {
			dto.Context[k] = e.ContextString(k)
		}
	}
	return types.ErrorResponse{Error: dto}
}
