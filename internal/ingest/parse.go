// Package ingest adapts raw tabular rows into domain trades. Parsing is total:
// a bad cell degrades to an absent value and, where it matters, a warning.
package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// ToNumber parses a numeric cell after stripping currency, percent, thousands
// separators and whitespace. ok is false for empty, unparseable or non-finite
// input.
func ToNumber(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || r == '%' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ToDate parses a timestamp cell in any common layout. Input without a zone
// is read as UTC.
func ToDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ToDateOrNil is ToDate for optional bounds.
func ToDateOrNil(raw string) *time.Time {
	t, ok := ToDate(raw)
	if !ok {
		return nil
	}
	return &t
}

func numberOrNil(raw string) *float64 {
	n, ok := ToNumber(raw)
	if !ok {
		return nil
	}
	return &n
}

func stringOrNil(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}
