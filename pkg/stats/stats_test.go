package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"several", []float64{1, 2, 3, 4}, 2.5},
		{"negative", []float64{-2, 2}, 0},
	}
	for _, tt := range tests {
		if got := Mean(tt.values); !almostEqual(got, tt.want) {
			t.Errorf("%s: Mean = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{9, 1, 5}, 5},
		{"even averages central pair", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		if got := Median(tt.values); !almostEqual(got, tt.want) {
			t.Errorf("%s: Median = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Median mutated its input: %v", values)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev(nil); got != 0 {
		t.Errorf("StdDev(nil) = %v, want 0", got)
	}
	if got := StdDev([]float64{5}); got != 0 {
		t.Errorf("StdDev(single) = %v, want 0", got)
	}
	// Population std dev of {2,4,4,4,5,5,7,9} is exactly 2.
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(got, 2) {
		t.Errorf("StdDev = %v, want 2", got)
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(10, 5, 0); got != 0 {
		t.Errorf("ZScore with zero stdDev = %v, want 0", got)
	}
	if got := ZScore(12, 10, 2); !almostEqual(got, 1) {
		t.Errorf("ZScore = %v, want 1", got)
	}
	if got := ZScore(6, 10, 2); !almostEqual(got, -2) {
		t.Errorf("ZScore = %v, want -2", got)
	}
}

func TestMinMax(t *testing.T) {
	if got := Min(nil); got != 0 {
		t.Errorf("Min(nil) = %v, want 0", got)
	}
	if got := Max(nil); got != 0 {
		t.Errorf("Max(nil) = %v, want 0", got)
	}
	values := []float64{3, -1, 7, 2}
	if got := Min(values); got != -1 {
		t.Errorf("Min = %v, want -1", got)
	}
	if got := Max(values); got != 7 {
		t.Errorf("Max = %v, want 7", got)
	}
}
