package util

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine of the angle between two vectors,
// in [-1, 1]. A zero vector yields 0 rather than an error.
func CosineSimilarity(a []float32, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("input vectors cannot be empty")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions do not match: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Round1 rounds a value to one decimal place. Scores, percentages and
// breakdown values are stored and reported at this precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp limits v to the inclusive range [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
