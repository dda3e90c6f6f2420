package core

import (
	"math"
	"testing"
)

func TestNaNs(t *testing.T) {
	buf := NaNs(3)
	for i, v := range buf {
		if !math.IsNaN(v) {
			t.Fatalf("buf[%d] = %v, want NaN", i, v)
		}
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		n    int
		want int
	}{
		{"no trim", []float64{1, 2, 3}, 0, 3},
		{"one each side", []float64{1, 2, 3, 4}, 1, 2},
		{"all trimmed", []float64{1, 2}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trim(tt.in, tt.n)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
	got := Trim([]float64{1, 2, 3, 4}, 1)
	if got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected trim result: %v", got)
	}
}
