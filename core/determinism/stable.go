// Package determinism provides primitives for guaranteeing deterministic execution:
// exact money, stable ordering and content hashes.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// SortedCopy returns a stably sorted copy; the input slice is left untouched.
// Elements comparing equal keep their input order.
func SortedCopy[T any](slice []T, less func(a, b T) bool) []T {
	out := make([]T, len(slice))
	copy(out, slice)
	SortSlice(out, less)
	return out
}

// SortSlice sorts a slice in a stable, deterministic manner
func SortSlice[T any](slice []T, less func(a, b T) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		return less(slice[i], slice[j])
	})
}
