package analytics

import (
	"time"

	"github.com/vitos/trade_journal/internal/domain"
)

// FilterByEnteredAt keeps trades whose entry time lies within [from, to].
// A nil bound is open.
func FilterByEnteredAt(trades []domain.Trade, from, to *time.Time) []domain.Trade {
	if from == nil && to == nil {
		return trades
	}
	out := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if from != nil && t.EnteredAt.Before(*from) {
			continue
		}
		if to != nil && t.EnteredAt.After(*to) {
			continue
		}
		out = append(out, t)
	}
	return out
}
