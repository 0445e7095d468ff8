package analysis

import (
	"math"
	"testing"
)

func TestEstimateCalories(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		miles    float64
		expected float64
	}{
		{"reference run", 150, 3.0, 337.5},
		{"zero distance", 150, 0, 0},
		{"rounds to two places", 163, 3.11, 380.2},
		{"half rounds up", 1, 0.01, 0.01},
		{"long run", 180, 26.2, 3537},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCalories(tt.weight, tt.miles)
			if got != tt.expected {
				t.Errorf("EstimateCalories(%v, %v) = %v, want %v", tt.weight, tt.miles, got, tt.expected)
			}
		})
	}
}

func TestEstimateCaloriesIsDeterministic(t *testing.T) {
	a := EstimateCalories(171.3, 6.21)
	b := EstimateCalories(171.3, 6.21)
	if math.Float64bits(a) != math.Float64bits(b) {
		t.Errorf("EstimateCalories not reproducible: %v vs %v", a, b)
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		x        float64
		places   int
		expected float64
	}{
		{1.005, 0, 1},
		{1.005, 2, 1},
		{2.5, 0, 3},
		{3.14159, 2, 3.14},
		{2.675, 1, 2.7},
		{0.125, 2, 0.13},
		{12.3456, 3, 12.346},
	}

	for _, tt := range tests {
		if got := RoundTo(tt.x, tt.places); got != tt.expected {
			t.Errorf("RoundTo(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.expected)
		}
	}
}

func TestMilesMetersConversion(t *testing.T) {
	if got := MetersToMiles(MetersPerMile); got != 1 {
		t.Errorf("MetersToMiles(%v) = %v, want 1", MetersPerMile, got)
	}
	if got := MilesToMeters(2); got != 2*MetersPerMile {
		t.Errorf("MilesToMeters(2) = %v", got)
	}
	if got := RoundTo(MetersToMiles(5000), 2); got != 3.11 {
		t.Errorf("5k in miles = %v, want 3.11", got)
	}
}

func TestCalculatePacePerMile(t *testing.T) {
	if got := CalculatePacePerMile(3, 24); got != 480 {
		t.Errorf("CalculatePacePerMile(3, 24) = %v, want 480", got)
	}
	if got := CalculatePacePerMile(0, 24); got != 0 {
		t.Errorf("CalculatePacePerMile(0, 24) = %v, want 0", got)
	}
}
