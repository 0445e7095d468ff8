package analysis

import "math"

const (
	MetersPerMile = 1609.34

	// CaloriesPerPoundMile is a flat linear approximation, not a physiological model
	CaloriesPerPoundMile = 0.75
)

// EstimateCalories approximates calories burned from body weight (lb)
// and distance (mi), rounded to two decimal places.
func EstimateCalories(weightPounds, distanceMiles float64) float64 {
	return RoundTo(weightPounds*distanceMiles*CaloriesPerPoundMile, 2)
}

// RoundTo rounds x to the given number of decimal places, halves away from zero.
// It works on the binary float64 value, not the decimal literal: 1.005 is stored
// just below 1.005, so RoundTo(1.005, 2) == 1. Results are reproducible bit for bit.
func RoundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// MetersToMiles converts meters to miles
func MetersToMiles(meters float64) float64 {
	return meters / MetersPerMile
}

// MilesToMeters converts miles to meters
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// CalculatePacePerMile returns pace in seconds per mile
func CalculatePacePerMile(distanceMiles, durationMinutes float64) float64 {
	if distanceMiles <= 0 {
		return 0
	}
	return durationMinutes * 60 / distanceMiles
}
