package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
		wantOK bool
	}{
		{"median of even count interpolates", []float64{10, 20, 30, 40}, 0.5, 25, true},
		{"p0 is the minimum", []float64{1, 2, 3}, 0, 1, true},
		{"p1 is the maximum", []float64{1, 2, 3}, 1, 3, true},
		{"exact rank", []float64{1, 2, 3}, 0.5, 2, true},
		{"p90 between ranks", []float64{1, 2, 3, 4, 5}, 0.9, 4.6, true},
		{"single element", []float64{7}, 0.9, 7, true},
		{"empty", nil, 0.9, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Percentile(tt.sorted, tt.p)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.35, Round(12.345678, 2))
	assert.Equal(t, 1.235, Round(1.23456, 3))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, -3.0, Round(-2.5, 0))
	// 1.005 is stored just below the tie
	assert.Equal(t, 1.0, Round(1.005, 2))

	z := Round(-0.001, 2)
	assert.Equal(t, 0.0, z)
	assert.False(t, math.Signbit(z), "negative zero leaked")
}

func TestSafeSum(t *testing.T) {
	nan, inf, negInf := math.NaN(), math.Inf(1), math.Inf(-1)
	values := []*float64{ptr(1.5), nil, &nan, &inf, &negInf, ptr(-0.5)}

	assert.Equal(t, 1.0, SafeSum(values))
	assert.Equal(t, 0.0, SafeSum(nil))
	assert.Equal(t, 0.0, SafeNum(nil))
	assert.Equal(t, 0.0, SafeNum(&nan))
	assert.Equal(t, 2.0, SafeNum(ptr(2)))
}

func TestMinutesBetween(t *testing.T) {
	a := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 90.0, MinutesBetween(a, a.Add(90*time.Minute)))
	assert.Equal(t, 0.5, MinutesBetween(a, a.Add(30*time.Second)))
	assert.Equal(t, -5.0, MinutesBetween(a, a.Add(-5*time.Minute)))
}
