package render

import (
	"math"
	"testing"
)

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestFiveNumberSummary(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, nil},
		{"single", []float64{2.5}, []float64{2.5, 2.5, 2.5, 2.5, 2.5}},
		{"odd count", []float64{3, 1, 2}, []float64{1, 1.5, 2, 2.5, 3}},
		{"even count", []float64{4, 1, 3, 2}, []float64{1, 1.75, 2.5, 3.25, 4}},
		{"unsorted input", []float64{2.1, 3.9, 1.5}, []float64{1.5, 1.8, 2.1, 3.0, 3.9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fiveNumberSummary(tc.in)
			if !floatsEqual(got, tc.want) {
				t.Errorf("fiveNumberSummary(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFiveNumberSummaryDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	fiveNumberSummary(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}
