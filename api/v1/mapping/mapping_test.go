package mapping

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"travel-mate/api/v1/types"
	"travel-mate/core/engine"
	"travel-mate/internal/errors"
)

const sampleRequest = `{
  "segments": [
    {
      "trip_id": "berlin",
      "start": "2026-02-01T08:00:00+01:00",
      "end": "2026-02-03T18:00:00+01:00",
      "city": "Berlin",
      "provided_meals": [{"day": "2026-02-02", "breakfast": true, "lunch": true}],
      "receipts": [{"receipt_id": "r1", "amount": "89.90"}]
    },
    {
      "trip_id": "vienna",
      "start": "2026-02-10T06:30:00+01:00",
      "end": "2026-02-10T19:00:00+01:00",
      "country_code": "at"
    }
  ]
}`

func TestDecodeAndMapRequest(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	segs, err := MapRequest(req)
	if err != nil {
		t.Fatalf("MapRequest: %v", err)
	}

	if len(segs) != 2 {
		t.Fatalf("got %d segments", len(segs))
	}
	if segs[0].StartDate().String() != "2026-02-01" || segs[0].EndDate().String() != "2026-02-03" {
		t.Errorf("dates = %s..%s", segs[0].StartDate(), segs[0].EndDate())
	}
	if len(segs[0].ProvidedMeals) != 1 || !segs[0].ProvidedMeals[0].Lunch {
		t.Errorf("meals = %+v", segs[0].ProvidedMeals)
	}
	if segs[0].Receipts[0].Amount.Fixed() != "89.90" {
		t.Errorf("receipt amount = %s", segs[0].Receipts[0].Amount.Fixed())
	}
	if segs[1].Country() != "AT" {
		t.Errorf("country = %s", segs[1].Country())
	}
}

func TestDecodeRequest_RejectsUnknownFields(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader(`{"segments": [], "currency": "USD"}`))
	if !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestMapRequest_EmptyTimestampIsMissing(t *testing.T) {
	segs, err := MapRequest(types.CalculateRequest{Segments: []types.SegmentDTO{
		{TripID: "t1", Start: "2026-02-01T08:00:00Z"},
	}})
	if err != nil {
		t.Fatalf("MapRequest: %v", err)
	}
	if !segs[0].End.IsZero() {
		t.Errorf("End = %v, want zero", segs[0].End)
	}

	_, err = engine.New().Calculate(segs)
	if !errors.IsType(err, errors.TypePrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
}

func TestMapRequest_InputErrors(t *testing.T) {
	valid := types.SegmentDTO{TripID: "t1", Start: "2026-02-01T08:00:00Z", End: "2026-02-02T08:00:00Z"}

	tests := []struct {
		name   string
		mutate func(*types.SegmentDTO)
		want   string
	}{
		{"missing trip id", func(s *types.SegmentDTO) { s.TripID = " " }, "trip_id is required"},
		{"bad start", func(s *types.SegmentDTO) { s.Start = "01.02.2026 08:00" }, "invalid start timestamp"},
		{"bad end", func(s *types.SegmentDTO) { s.End = "2026-02-02" }, "invalid end timestamp"},
		{"bad meal day", func(s *types.SegmentDTO) {
			s.ProvidedMeals = []types.MealProvisionDTO{{Day: "2026-02-30", Breakfast: true}}
		}, "invalid meal day"},
		{"bad amount", func(s *types.SegmentDTO) {
			s.Receipts = []types.ReceiptDTO{{ReceiptID: "r1", Amount: "twelve"}}
		}, "invalid amount"},
		{"missing receipt id", func(s *types.SegmentDTO) {
			s.Receipts = []types.ReceiptDTO{{Amount: "1.00"}}
		}, "receipt_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := valid
			tt.mutate(&seg)
			_, err := MapRequest(types.CalculateRequest{Segments: []types.SegmentDTO{valid, seg}})

			e, ok := errors.As(err)
			if !ok || e.Type != errors.TypeInput {
				t.Fatalf("expected input error, got %v", err)
			}
			if !strings.Contains(e.Message, tt.want) {
				t.Errorf("message %q does not contain %q", e.Message, tt.want)
			}
			if e.ContextString("segment") != "1" {
				t.Errorf("segment context = %q, want 1", e.ContextString("segment"))
			}
		})
	}
}

func TestMapResponse(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(sampleRequest))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	segs, err := MapRequest(req)
	if err != nil {
		t.Fatalf("MapRequest: %v", err)
	}
	res, err := engine.New().Calculate(segs)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	resp := MapResponse(res, ResponseOptions{})
	// DE 14+28+14 - 16.80, AT single day 27.00
	if resp.Totals.GrossAllowance != "83.00" || resp.Totals.MealDeductions != "16.80" || resp.Totals.NetAllowance != "66.20" {
		t.Errorf("totals = %+v", resp.Totals)
	}
	if len(resp.ByTrip) != 2 || resp.ByTrip[1].CountryCode != "AT" || resp.ByTrip[1].NetAllowance != "27.00" {
		t.Errorf("by_trip = %+v", resp.ByTrip)
	}
	if resp.Trace != nil {
		t.Errorf("trace included without being requested")
	}
	if len(resp.CalculationSteps) != len(res.Steps) {
		t.Errorf("calculation_steps = %d, want %d", len(resp.CalculationSteps), len(res.Steps))
	}

	resp = MapResponse(res, ResponseOptions{IncludeTrace: true})
	if len(resp.Trace) != len(res.Steps) {
		t.Fatalf("trace = %d steps, want %d", len(resp.Trace), len(res.Steps))
	}
	var meal types.StepDTO
	for _, s := range resp.Trace {
		if s.Kind == "meal_deduction" {
			meal = s
			break
		}
	}
	if meal.Meal != "breakfast" || meal.Ratio != "0.20" || meal.Amount != "5.60" || meal.Date != "2026-02-02" {
		t.Errorf("meal step = %+v", meal)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"rule_version":"DE_TRAVEL_RULES_2026_01"`) {
		t.Errorf("rule_version missing from %s", raw)
	}
}

func TestMapError(t *testing.T) {
	_, err := engine.New().Calculate(nil)
	resp := MapError(err)
	if resp.Error.Type != "PRECONDITION_VIOLATION" {
		t.Errorf("type = %s", resp.Error.Type)
	}

	err = errors.Precondition("Trips %s and %s overlap.", "a", "b").
		WithContext(errors.KeyPreviousTripID, "a").
		WithContext(errors.KeyTripID, "b")
	resp = MapError(err)
	if resp.Error.Context["previous_trip_id"] != "a" || resp.Error.Context["trip_id"] != "b" {
		t.Errorf("context = %v", resp.Error.Context)
	}

	resp = MapError(io.ErrUnexpectedEOF)
	if resp.Error.Type != "INTERNAL_ERROR" {
		t.Errorf("type = %s, want INTERNAL_ERROR", resp.Error.Type)
	}
}
