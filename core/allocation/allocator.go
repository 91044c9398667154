// Package allocation splits a trip segment into calendar days and prices each
// day against a rate set.
package allocation

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"travel-mate/core/determinism"
	"travel-mate/core/rates"
	"travel-mate/core/trace"
	"travel-mate/core/types"
)

// MinimumAbsence is the absence a single-day trip needs to earn the partial
// rate. It does not apply to arrival and departure days of longer trips.
const MinimumAbsence = 8 * time.Hour

var (
	minimumHours = decimal.NewFromInt(int64(MinimumAbsence / time.Hour))
	nanosPerHour = decimal.NewFromInt(int64(time.Hour))
)

// DayType classifies a priced day.
type DayType string

const (
	DaySingle           DayType = "single"
	DayArrivalDeparture DayType = "arrival_departure"
	DayFull             DayType = "full"
)

// DayAllowance is the price of one calendar day.
type DayAllowance struct {
	Date   civil.Date
	Type   DayType
	Amount determinism.Money
}

// Allocation is the priced breakdown of one segment.
type Allocation struct {
	Gross determinism.Money
	Days  []DayAllowance
	Steps []trace.Step
}

// Allocate prices every calendar day of seg using rs.
func Allocate(seg types.TripSegment, rs rates.RateSet) Allocation {
	if seg.SingleDay() {
		return allocateSingleDay(seg, rs)
	}

	first, last := seg.StartDate(), seg.EndDate()
	total := determinism.Zero(rs.FullDay.Currency())
	var out Allocation

	seg.EachDate(func(day civil.Date) {
		if day == first || day == last {
			total = total.Add(rs.PartialDay)
			out.Days = append(out.Days, DayAllowance{Date: day, Type: DayArrivalDeparture, Amount: rs.PartialDay})
			out.Steps = append(out.Steps, trace.ArrivalDeparture(seg.TripID, day, rs.PartialDay))
			return
		}
		total = total.Add(rs.FullDay)
		out.Days = append(out.Days, DayAllowance{Date: day, Type: DayFull, Amount: rs.FullDay})
		out.Steps = append(out.Steps, trace.FullDay(seg.TripID, day, rs.FullDay))
	})

	out.Gross = total.Quantize()
	return out
}

func allocateSingleDay(seg types.TripSegment, rs rates.RateSet) Allocation {
	day := seg.StartDate()
	elapsed := seg.Duration()
	hours := decimal.NewFromInt(elapsed.Nanoseconds()).Div(nanosPerHour)

	amount := determinism.Zero(rs.PartialDay.Currency())
	qualifies := elapsed >= MinimumAbsence
	if qualifies {
		amount = rs.PartialDay
	}
	amount = amount.Quantize()

	return Allocation{
		Gross: amount,
		Days:  []DayAllowance{{Date: day, Type: DaySingle, Amount: amount}},
		Steps: []trace.Step{trace.SingleDay(seg.TripID, day, hours, minimumHours, qualifies, amount)},
	}
}
