package stats

import (
	"math"
	"testing"
)

func TestQuantile_Empty(t *testing.T) {
	if got := Quantile(nil, 0.9); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
}

func TestQuantile_Single(t *testing.T) {
	if got := Quantile([]float64{7}, 0.5); got != 7 {
		t.Fatalf("expected 7 got %v", got)
	}
}

func TestQuantile_Interpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	// position = 3*0.9 = 2.7 -> 3 + (4-3)*0.7
	if got := Quantile(values, 0.9); math.Abs(got-3.7) > 1e-9 {
		t.Fatalf("expected 3.7 got %v", got)
	}
	if got := Quantile(values, 0.5); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("expected 2.5 got %v", got)
	}
}

func TestQuantile_UnsortedInput(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	if got := Quantile(values, 0.5); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("expected 2.5 got %v", got)
	}
	// the input must not be reordered
	if values[0] != 4 || values[3] != 2 {
		t.Fatalf("input mutated: %v", values)
	}
}

func TestQuantile_Bounds(t *testing.T) {
	values := []float64{5, 9, 1, 12, 3, 3, 8}
	min, max := 1.0, 12.0
	for p := 0.0; p <= 1.0; p += 0.05 {
		got := Quantile(values, p)
		if got < min || got > max {
			t.Fatalf("p=%v out of bounds: %v", p, got)
		}
	}
	if got := Quantile(values, 0); got != min {
		t.Fatalf("p=0 expected min got %v", got)
	}
	if got := Quantile(values, 1); got != max {
		t.Fatalf("p=1 expected max got %v", got)
	}
}
