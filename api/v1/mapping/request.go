// Package mapping - Explicit mapping between the wire format and the engine.
// This is the ONLY place where engine types touch API types.
// Rules:
// - Requests are parsed strictly; anything malformed is an input error
// - No mutation of engine results
// - No business logic: validation of trip semantics stays in the engine
package mapping

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"travel-mate/api/v1/types"
	"travel-mate/core/determinism"
	coretypes "travel-mate/core/types"
	"travel-mate/internal/errors"
)

// DecodeRequest reads a JSON request. Unknown fields are rejected.
func DecodeRequest(r io.Reader) (types.CalculateRequest, error) {
	var req types.CalculateRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Input("decoding request", err)
	}
	return req, nil
}

// MapRequest converts a request into trip segments. Timestamps are RFC 3339;
// an empty timestamp maps to the zero time, which the engine reports as missing.
func MapRequest(req types.CalculateRequest) ([]coretypes.TripSegment, error) {
	segments := make([]coretypes.TripSegment, 0, len(req.Segments))
	for i, dto := range req.Segments {
		seg, err := mapSegment(dto)
		if err != nil {
			return nil, err.WithContext("segment", i)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func mapSegment(dto types.SegmentDTO) (coretypes.TripSegment, *errors.Error) {
	if strings.TrimSpace(dto.TripID) == "" {
		return coretypes.TripSegment{}, errors.New(errors.TypeInput, "trip_id is required")
	}

	start, err := parseTimestamp(dto.TripID, "start", dto.Start)
	if err != nil {
		return coretypes.TripSegment{}, err
	}
	end, err := parseTimestamp(dto.TripID, "end", dto.End)
	if err != nil {
		return coretypes.TripSegment{}, err
	}

	seg := coretypes.TripSegment{
		TripID:      dto.TripID,
		Start:       start,
		End:         end,
		CountryCode: dto.CountryCode,
		City:        dto.City,
	}

	for _, m := range dto.ProvidedMeals {
		day, perr := civil.ParseDate(m.Day)
		if perr != nil {
			return coretypes.TripSegment{}, errors.Wrapf(errors.TypeInput, perr, "trip %s: invalid meal day %q", dto.TripID, m.Day).
				WithContext(errors.KeyTripID, dto.TripID)
		}
		seg.ProvidedMeals = append(seg.ProvidedMeals, coretypes.DayMealProvision{
			Day:       day,
			Breakfast: m.Breakfast,
			Lunch:     m.Lunch,
			Dinner:    m.Dinner,
		})
	}

	for _, r := range dto.Receipts {
		if r.ReceiptID == "" {
			return coretypes.TripSegment{}, errors.Newf(errors.TypeInput, "trip %s: receipt_id is required", dto.TripID).
				WithContext(errors.KeyTripID, dto.TripID)
		}
		amount, perr := determinism.NewMoney(r.Amount, determinism.EUR)
		if perr != nil {
			return coretypes.TripSegment{}, errors.Wrapf(errors.TypeInput, perr, "receipt %s: invalid amount %q", r.ReceiptID, r.Amount).
				WithContext(errors.KeyTripID, dto.TripID).
				WithContext(errors.KeyReceiptID, r.ReceiptID)
		}
		seg.Receipts = append(seg.Receipts, coretypes.Receipt{ID: r.ReceiptID, Amount: amount})
	}

	return seg, nil
}

func parseTimestamp(tripID, field, raw string) (time.Time, *errors.Error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.TypeInput, err, "trip %s: invalid %s timestamp %q", tripID, field, raw).
			WithContext(errors.KeyTripID, tripID)
	}
	return t, nil
}
