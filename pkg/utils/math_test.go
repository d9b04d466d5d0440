package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	norm := NormalizeL2(x)
	if norm != 5 {
		t.Errorf("norm = %f, want 5", norm)
	}
	if math.Abs(float64(x[0])-0.6) > 1e-6 || math.Abs(float64(x[1])-0.8) > 1e-6 {
		t.Errorf("normalized = %v", x)
	}

	zero := []float32{0, 0, 0}
	if NormalizeL2(zero) != 0 {
		t.Error("zero vector norm should be 0")
	}
	for _, v := range zero {
		if v != 0 {
			t.Errorf("zero vector changed: %v", zero)
		}
	}
}

func TestNormalizedCopy(t *testing.T) {
	x := []float32{0, 2}
	c := NormalizedCopy(x)
	if x[1] != 2 {
		t.Error("input should not be modified")
	}
	if c[1] != 1 {
		t.Errorf("copy = %v", c)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{{-0.5, 0}, {0.25, 0.25}, {1.5, 1}}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
