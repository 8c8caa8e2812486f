package analytics

import (
	"sort"

	"github.com/vitos/trade_journal/internal/domain"
)

const symbolsSampleSize = 10

// ComputeDatasetInfoStats summarizes symbols, sides, totals and the
// distribution of closed-trade durations.
func ComputeDatasetInfoStats(trades []domain.Trade) domain.DatasetInfoStats {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)

	var sides domain.SideCounts
	var totalPnL, totalFees float64
	open := 0

	for _, t := range trades {
		if t.Symbol != "" {
			if _, ok := seen[t.Symbol]; !ok {
				seen[t.Symbol] = struct{}{}
				symbols = append(symbols, t.Symbol)
			}
		}

		switch t.Side {
		case domain.SideLong:
			sides.Long++
		case domain.SideShort:
			sides.Short++
		}

		totalPnL += SafeNum(t.PnL)
		totalFees += SafeNum(t.Fees)

		if t.IsOpen() {
			open++
		}
	}

	sample := symbols
	if len(sample) > symbolsSampleSize {
		sample = sample[:symbolsSampleSize]
	}

	return domain.DatasetInfoStats{
		SymbolsCount:  len(symbols),
		SymbolsSample: sample,
		SideCounts:    sides,
		Totals: domain.Totals{
			PnL:          Round(totalPnL, 2),
			Fees:         Round(totalFees, 2),
			NetAfterFees: Round(totalPnL-totalFees, 2),
			OpenTrades:   open,
		},
		DurationsMinutes: durationStats(durationsMinutes(trades)),
	}
}

// durationsMinutes collects exit-enter durations, sorted ascending. Negative
// and non-finite durations are dropped.
func durationsMinutes(trades []domain.Trade) []float64 {
	out := make([]float64, 0, len(trades))
	for _, t := range trades {
		if t.ExitedAt == nil {
			continue
		}
		m := MinutesBetween(t.EnteredAt, *t.ExitedAt)
		if isFinite(m) && m >= 0 {
			out = append(out, m)
		}
	}
	sort.Float64s(out)
	return out
}

func durationStats(sorted []float64) domain.DurationStats {
	stats := domain.DurationStats{Count: len(sorted)}
	if len(sorted) == 0 {
		return stats
	}

	sum := 0.0
	for _, d := range sorted {
		sum += d
	}
	stats.Avg = ptr(Round(sum/float64(len(sorted)), 2))

	if p, ok := Percentile(sorted, 0.5); ok {
		stats.P50 = ptr(Round(p, 2))
	}
	if p, ok := Percentile(sorted, 0.9); ok {
		stats.P90 = ptr(Round(p, 2))
	}
	stats.Max = ptr(Round(sorted[len(sorted)-1], 2))
	return stats
}
