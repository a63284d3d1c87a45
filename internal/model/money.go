package model

import "math"

// Amounts are stored as integer cents; JSON carries decimal numbers. Keeping
// arithmetic in cents avoids accumulating float error in summaries.

func CentsFromAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func AmountFromCents(cents int64) float64 {
	return float64(cents) / 100
}
