package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"$1,234.50", 1234.5, true},
		{" -12.5 ", -12.5, true},
		{"15%", 15, true},
		{"1 000", 1000, true},
		{"", 0, false},
		{"  ", 0, false},
		{"$", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ToNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDate(t *testing.T) {
	want := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"rfc3339 utc", "2024-03-01T14:30:00Z"},
		{"rfc3339 offset", "2024-03-01T09:30:00-05:00"},
		{"space separated without zone", "2024-03-01 14:30:00"},
		{"us layout", "03/01/2024 14:30:00"},
		{"padded", "  2024-03-01T14:30:00Z "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToDate(tt.raw)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	for _, raw := range []string{"", "   ", "not-a-date"} {
		_, ok := ToDate(raw)
		assert.False(t, ok, raw)
	}
}

func TestToDateOrNil(t *testing.T) {
	assert.Nil(t, ToDateOrNil("garbage"))
	assert.NotNil(t, ToDateOrNil("2024-03-01"))
}
