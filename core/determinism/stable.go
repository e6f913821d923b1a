// Package determinism provides primitives for guaranteeing deterministic
// execution. Allocation code must use these instead of raw map iteration
// wherever ordering affects results.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// SortedKeys returns map keys in sorted order
func SortedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

// RangeMapSorted iterates over a map in sorted key order
func RangeMapSorted[K comparable, V any](m map[K]V, fn func(K, V) bool) {
	for _, k := range SortedKeys(m) {
		if !fn(k, m[k]) {
			break
		}
	}
}

// SortSlice sorts a slice stably
func SortSlice[T any](slice []T, less func(a, b T) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		return less(slice[i], slice[j])
	})
}

// Fingerprint hashes ordered parts into a short stable identifier.
// Used to fingerprint (region table, configuration) pairs so callers
// can cache or compare runs by input identity.
type Fingerprint string

// NewFingerprint computes a fingerprint over the given parts
func NewFingerprint(parts ...string) Fingerprint {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0}) // separator
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))[:16])
}

// String returns the fingerprint text
func (f Fingerprint) String() string {
	return string(f)
}
