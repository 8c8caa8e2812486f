package domain

// PnlStats is recomputed on demand from a list of trades. Monetary fields are
// rounded to 2 decimals; ProfitFactor to 3 and nil when there is no loss.
type PnlStats struct {
	Count     int `json:"count"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Breakeven int `json:"breakeven"`

	PnL          float64 `json:"pnl"`
	Fees         float64 `json:"fees"`
	NetAfterFees float64 `json:"netAfterFees"`
	AvgPnL       float64 `json:"avgPnl"`

	WinRate      float64  `json:"winRate"` // percent
	AvgWin       float64  `json:"avgWin"`
	AvgLoss      float64  `json:"avgLoss"`
	Expectancy   float64  `json:"expectancy"`
	ProfitFactor *float64 `json:"profitFactor"`
}

// GroupStats is one ranked row of a breakdown.
type GroupStats struct {
	Key string `json:"key"`
	PnlStats
}

type SideCounts struct {
	Long  int `json:"LONG"`
	Short int `json:"SHORT"`
}

type Totals struct {
	PnL          float64 `json:"pnl"`
	Fees         float64 `json:"fees"`
	NetAfterFees float64 `json:"netAfterFees"`
	OpenTrades   int     `json:"openTrades"`
}

// DurationStats describes closed-trade durations in minutes. The float fields
// are nil when no trade has a usable duration.
type DurationStats struct {
	Count int      `json:"count"`
	Avg   *float64 `json:"avg"`
	P50   *float64 `json:"p50"`
	P90   *float64 `json:"p90"`
	Max   *float64 `json:"max"`
}

type DatasetInfoStats struct {
	SymbolsCount     int           `json:"symbolsCount"`
	SymbolsSample    []string      `json:"symbolsSample"`
	SideCounts       SideCounts    `json:"sideCounts"`
	Totals           Totals        `json:"totals"`
	DurationsMinutes DurationStats `json:"durationsMinutes"`
}
