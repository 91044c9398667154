// Package validation checks the structural preconditions of a batch of trip
// segments before any money is computed.
package validation

import (
	"travel-mate/core/determinism"
	"travel-mate/core/types"
	"travel-mate/internal/errors"
)

// Validate runs every batch check and returns the first violation as a
// precondition error. It never inspects rates or prices anything.
func Validate(segments []types.TripSegment) error {
	if len(segments) == 0 {
		return errors.Precondition("At least one trip segment is required.")
	}
	if err := checkTiming(segments); err != nil {
		return err
	}
	if err := checkOverlaps(segments); err != nil {
		return err
	}
	return checkDuplicateReceipts(segments)
}

func checkTiming(segments []types.TripSegment) error {
	for _, s := range segments {
		if s.Start.IsZero() || s.End.IsZero() {
			return errors.Precondition("Trip %s has missing start/end datetime.", s.TripID).
				WithContext(errors.KeyTripID, s.TripID)
		}
		if !s.End.After(s.Start) {
			return errors.Precondition("Trip %s has impossible time span (end before/equal start).", s.TripID).
				WithContext(errors.KeyTripID, s.TripID)
		}
	}
	return nil
}

// checkOverlaps compares adjacent pairs of the start-ordered batch. For sorted
// intervals an overlap anywhere implies an overlap between some adjacent pair,
// so this is complete.
func checkOverlaps(segments []types.TripSegment) error {
	ordered := determinism.SortedCopy(segments, types.ByStart)
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if cur.Start.Before(prev.End) {
			return errors.Precondition("Trips %s and %s overlap.", prev.TripID, cur.TripID).
				WithContext(errors.KeyPreviousTripID, prev.TripID).
				WithContext(errors.KeyTripID, cur.TripID)
		}
	}
	return nil
}

// checkDuplicateReceipts walks receipts in input order and reports the first id
// seen twice, naming the trip that introduced it and the trip repeating it.
func checkDuplicateReceipts(segments []types.TripSegment) error {
	owner := make(map[string]string)
	for _, s := range segments {
		for _, r := range s.Receipts {
			if first, seen := owner[r.ID]; seen {
				return errors.Precondition("Duplicate receipt id %s in trips %s and %s.", r.ID, first, s.TripID).
					WithContext(errors.KeyReceiptID, r.ID).
					WithContext(errors.KeyPreviousTripID, first).
					WithContext(errors.KeyTripID, s.TripID)
			}
			owner[r.ID] = s.TripID
		}
	}
	return nil
}
