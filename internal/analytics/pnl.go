package analytics

import (
	"math"

	"github.com/vitos/trade_journal/internal/domain"
)

// ComputePnlStats aggregates win/loss counts and PnL figures. Missing or
// non-finite pnl and fee values count as 0.
func ComputePnlStats(trades []domain.Trade) domain.PnlStats {
	var (
		totalPnL, totalFees    float64
		grossProfit, grossLoss float64
		wins, losses, flat     int
	)

	for _, t := range trades {
		pnl := SafeNum(t.PnL)
		totalPnL += pnl
		totalFees += SafeNum(t.Fees)

		switch {
		case pnl > 0:
			wins++
			grossProfit += pnl
		case pnl < 0:
			losses++
			grossLoss += pnl
		default:
			flat++
		}
	}

	count := len(trades)

	var avgPnL, winRate, avgWin, avgLoss, expectancy float64
	if count > 0 {
		avgPnL = totalPnL / float64(count)
		winRate = float64(wins) / float64(count)
	}
	if wins > 0 {
		avgWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		avgLoss = math.Abs(grossLoss / float64(losses))
	}
	if count > 0 {
		expectancy = winRate*avgWin - (1-winRate)*avgLoss
	}

	// undefined without losses, whatever the gross profit
	var profitFactor *float64
	if lossAbs := math.Abs(grossLoss); lossAbs > 0 {
		profitFactor = ptr(Round(grossProfit/lossAbs, 3))
	}

	return domain.PnlStats{
		Count:     count,
		Wins:      wins,
		Losses:    losses,
		Breakeven: flat,

		PnL:          Round(totalPnL, 2),
		Fees:         Round(totalFees, 2),
		NetAfterFees: Round(totalPnL-totalFees, 2),
		AvgPnL:       Round(avgPnL, 2),

		WinRate:      Round(winRate*100, 2),
		AvgWin:       Round(avgWin, 2),
		AvgLoss:      Round(avgLoss, 2),
		Expectancy:   Round(expectancy, 2),
		ProfitFactor: profitFactor,
	}
}
