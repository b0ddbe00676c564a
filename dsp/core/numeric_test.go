package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDBGainRoundTrip(t *testing.T) {
	for _, db := range []float64{-24, -6, 0, 3, 12} {
		got := GainToDB(DBToGain(db))
		if !NearlyEqual(got, db, 1e-10) {
			t.Fatalf("GainToDB(DBToGain(%v)) = %v", db, got)
		}
	}
	if !math.IsInf(GainToDB(0), -1) {
		t.Fatal("expected -Inf for zero gain")
	}
}

func TestNormalizedMapping(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		skew     float64
	}{
		{name: "linear", min: -12, max: 12, skew: 1},
		{name: "low skew", min: 20, max: 20000, skew: 0.3},
		{name: "high skew", min: 0, max: 10, skew: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromNormalized(0, tt.min, tt.max, tt.skew); got != tt.min {
				t.Fatalf("FromNormalized(0) = %v, want %v", got, tt.min)
			}
			if got := FromNormalized(1, tt.min, tt.max, tt.skew); !NearlyEqual(got, tt.max, 1e-12) {
				t.Fatalf("FromNormalized(1) = %v, want %v", got, tt.max)
			}

			prev := math.Inf(-1)
			for i := 0; i <= 20; i++ {
				norm := float64(i) / 20
				v := FromNormalized(norm, tt.min, tt.max, tt.skew)
				if v < prev {
					t.Fatalf("mapping not monotonic at %v: %v < %v", norm, v, prev)
				}
				prev = v

				back := ToNormalized(v, tt.min, tt.max, tt.skew)
				if !NearlyEqual(back, norm, 1e-9) {
					t.Fatalf("ToNormalized(FromNormalized(%v)) = %v", norm, back)
				}
			}
		})
	}
}

func TestFromNormalizedClampsInput(t *testing.T) {
	if got := FromNormalized(1.5, 0, 10, 1); got != 10 {
		t.Fatalf("FromNormalized(1.5) = %v, want 10", got)
	}
	if got := FromNormalized(-1, 0, 10, 1); got != 0 {
		t.Fatalf("FromNormalized(-1) = %v, want 0", got)
	}
}
