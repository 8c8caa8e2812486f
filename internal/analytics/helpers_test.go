package analytics

import (
	"time"

	"github.com/vitos/trade_journal/internal/domain"
)

var base = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

func trade(symbol string, pnl *float64) domain.Trade {
	return domain.Trade{Symbol: symbol, Side: domain.SideLong, EnteredAt: base, PnL: pnl}
}

func withFees(t domain.Trade, fees float64) domain.Trade {
	t.Fees = &fees
	return t
}

func closedAfter(t domain.Trade, d time.Duration) domain.Trade {
	exit := t.EnteredAt.Add(d)
	t.ExitedAt = &exit
	return t
}

func strPtr(s string) *string {
	return &s
}
