package utils

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// CalculateStats calculates the average and sample standard deviation
// of a slice of samples. Returns (average, standardDeviation), both
// rounded to 4 decimal places; the deviation is 0 for fewer than two
// samples.
func CalculateStats(data []float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0.0, 0.0
	}

	average := stat.Mean(data, nil)
	if n < 2 {
		return RoundFloat(average, 4), 0.0
	}

	stdDev := stat.StdDev(data, nil)
	return RoundFloat(average, 4), RoundFloat(stdDev, 4)
}
