package domain

import (
	"math"
	"testing"
)

// assertFloatNear fails if got differs from want by more than a small epsilon.
func assertFloatNear(t *testing.T, field string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 1e-9 {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}
