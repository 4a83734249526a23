package ui

import "testing"

func TestRangeAround(t *testing.T) {
	tests := []struct {
		value, factor float32
		want          SliderRange
	}{
		{1, 10, SliderRange{Min: 0.1, Max: 10}},
		{2, 0.5, SliderRange{Min: 1, Max: 4}},
		{4, 1, SliderRange{Min: 4, Max: 4}},
	}
	for _, tt := range tests {
		got := RangeAround(tt.value, tt.factor)
		if !near(got.Min, tt.want.Min) || !near(got.Max, tt.want.Max) {
			t.Errorf("RangeAround(%v, %v) = %+v, want %+v", tt.value, tt.factor, got, tt.want)
		}
	}
}

func TestSliderRangeClamp(t *testing.T) {
	r := SliderRange{Min: 1, Max: 3}
	for in, want := range map[float32]float32{0: 1, 2: 2, 5: 3} {
		if got := r.Clamp(in); got != want {
			t.Errorf("Clamp(%v) = %v, want %v", in, got, want)
		}
	}
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
