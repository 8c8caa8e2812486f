// Package analytics computes descriptive and PnL statistics over normalized
// trades. Every function here is pure.
package analytics

import (
	"math"
	"time"
)

// Round rounds n to the given number of decimals, ties away from zero.
func Round(n float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	r := math.Round(n*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// SafeNum returns the value behind v, or 0 when it is nil, NaN or infinite.
func SafeNum(v *float64) float64 {
	if v == nil || !isFinite(*v) {
		return 0
	}
	return *v
}

// SafeSum adds up the present, finite values.
func SafeSum(values []*float64) float64 {
	total := 0.0
	for _, v := range values {
		total += SafeNum(v)
	}
	return total
}

// Percentile interpolates linearly between closest ranks. sortedAsc must be
// sorted ascending and p is in [0,1]. ok is false for empty input.
func Percentile(sortedAsc []float64, p float64) (value float64, ok bool) {
	if len(sortedAsc) == 0 {
		return 0, false
	}
	i := float64(len(sortedAsc)-1) * p
	low := int(math.Floor(i))
	high := int(math.Ceil(i))
	if low == high {
		return sortedAsc[low], true
	}
	w := i - float64(low)
	return sortedAsc[low]*(1-w) + sortedAsc[high]*w, true
}

// MinutesBetween returns b-a in fractional minutes.
func MinutesBetween(a, b time.Time) float64 {
	return float64(b.Sub(a)) / float64(time.Minute)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 {
	return &v
}
