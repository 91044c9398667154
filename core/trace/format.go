package trace

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Render formats one step as a human-readable audit line. The wording is for
// display; consumers that need the values read the Step fields.
func Render(s Step) string {
	switch s.Kind {
	case KindRuleVersion:
		return fmt.Sprintf("Applying rule version: %s", s.RuleVersion)

	case KindRates:
		regime := "domestic rates"
		if !s.Domestic {
			regime = fmt.Sprintf("international rates for %s", s.CountryCode)
		}
		return fmt.Sprintf("Trip %s: %s (full_day=%s, partial_day=%s).",
			s.TripID, regime, s.FullDayRate.Fixed(), s.PartialDayRate.Fixed())

	case KindSingleDay:
		if s.Qualifies {
			return fmt.Sprintf("Single-day trip %s: absence %sh >= %sh, partial-day rate %s.",
				s.Date, s.Hours.StringFixed(2), s.MinHours.String(), s.Amount.Fixed())
		}
		return fmt.Sprintf("Single-day trip %s: absence %sh < %sh, no per diem.",
			s.Date, s.Hours.StringFixed(2), s.MinHours.String())

	case KindArrivalDeparture:
		return fmt.Sprintf("%s: arrival/departure partial-day rate %s.", s.Date, s.Amount.Fixed())

	case KindFullDay:
		return fmt.Sprintf("%s: full-day rate %s.", s.Date, s.Amount.Fixed())

	case KindMealDeduction:
		return fmt.Sprintf("%s: %s provided, deduct %s%% of full-day rate = %s.",
			s.Date, s.Meal, s.Ratio.Mul(hundred).StringFixed(0), s.Amount.Fixed())

	case KindMealSubtotal:
		return fmt.Sprintf("%s: meal deduction subtotal %s.", s.Date, s.Amount.Fixed())

	case KindNoMealDeduction:
		return fmt.Sprintf("Trip %s: no meal deductions.", s.TripID)

	case KindTripSubtotal:
		return fmt.Sprintf("Trip %s subtotal = %s - %s = %s.",
			s.TripID, s.Gross.Fixed(), s.Deductions.Fixed(), s.Net.Fixed())

	case KindTotal:
		return fmt.Sprintf("Overall total = gross %s - deductions %s = %s.",
			s.Gross.Fixed(), s.Deductions.Fixed(), s.Net.Fixed())

	default:
		return fmt.Sprintf("%s step for trip %s", s.Kind, s.TripID)
	}
}

// RenderAll formats steps in order.
func RenderAll(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = Render(s)
	}
	return out
}
