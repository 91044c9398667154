// Package meals computes per-diem reductions for employer-provided meals.
package meals

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"travel-mate/core/determinism"
	"travel-mate/core/trace"
	"travel-mate/core/types"
)

// Ratios are the shares of the full-day rate deducted per provided meal.
var Ratios = map[types.Meal]decimal.Decimal{
	types.Breakfast: decimal.RequireFromString("0.20"),
	types.Lunch:     decimal.RequireFromString("0.40"),
	types.Dinner:    decimal.RequireFromString("0.40"),
}

// MealDeduction is one deducted meal.
type MealDeduction struct {
	Meal   types.Meal
	Ratio  decimal.Decimal
	Amount determinism.Money
}

// DayDeduction groups the deductions of one calendar day.
type DayDeduction struct {
	Date     civil.Date
	Meals    []MealDeduction
	Subtotal determinism.Money
}

// Deduction is the meal breakdown of one segment.
type Deduction struct {
	Total determinism.Money
	Days  []DayDeduction
	Steps []trace.Step
}

// Deduct computes the meal deductions of seg against the full-day rate of its
// country. Every deduction uses the full-day rate, whether the day itself was
// priced full or partial. Days without a provision record are unknown, not
// meal-free, and deduct nothing. If a day has several records the last wins.
func Deduct(seg types.TripSegment, fullDayRate determinism.Money) Deduction {
	byDay := make(map[civil.Date]types.DayMealProvision, len(seg.ProvidedMeals))
	for _, p := range seg.ProvidedMeals {
		byDay[p.Day] = p
	}

	total := determinism.Zero(fullDayRate.Currency())
	var out Deduction

	seg.EachDate(func(day civil.Date) {
		provision, ok := byDay[day]
		if !ok {
			return
		}

		dd := DayDeduction{Date: day, Subtotal: determinism.Zero(fullDayRate.Currency())}
		for _, meal := range types.Meals {
			if !provision.Provided(meal) {
				continue
			}
			ratio := Ratios[meal]
			amount := fullDayRate.Mul(ratio).Quantize()
			dd.Meals = append(dd.Meals, MealDeduction{Meal: meal, Ratio: ratio, Amount: amount})
			dd.Subtotal = dd.Subtotal.Add(amount)
			out.Steps = append(out.Steps, trace.MealDeduction(seg.TripID, day, meal.String(), ratio, amount))
		}

		if dd.Subtotal.IsZero() {
			return
		}
		total = total.Add(dd.Subtotal)
		out.Days = append(out.Days, dd)
		out.Steps = append(out.Steps, trace.MealSubtotal(seg.TripID, day, dd.Subtotal))
	})

	if total.IsZero() {
		out.Steps = append(out.Steps, trace.NoMealDeduction(seg.TripID))
	}
	out.Total = total.Quantize()
	return out
}
