package domain

import "time"

type Side string

const (
	SideLong  Side = "Long"
	SideShort Side = "Short"
)

// Trade is one normalized position record derived from one source row.
// Optional numeric fields are nil when the source cell was empty or unparseable.
type Trade struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Side   Side    `json:"side"`
	Qty    float64 `json:"qty"`

	EnteredAt time.Time  `json:"enteredAt"`
	ExitedAt  *time.Time `json:"exitedAt,omitempty"` // nil while the position is open

	EntryPrice *float64 `json:"entryPrice,omitempty"`
	ExitPrice  *float64 `json:"exitPrice,omitempty"`

	Fees *float64 `json:"fees,omitempty"`
	PnL  *float64 `json:"pnl,omitempty"`

	TradeDay      *string `json:"tradeDay,omitempty"`
	TradeDuration *string `json:"tradeDuration,omitempty"`

	Commissions *float64 `json:"commissions,omitempty"`
}

// IsOpen reports whether the trade has no exit timestamp.
func (t Trade) IsOpen() bool {
	return t.ExitedAt == nil
}

// Table is a parsed tabular source: header names in source order and one
// record per data row keyed by header name.
type Table struct {
	Columns []string
	Records []map[string]string
}

// DatasetContent is everything a load produces before the registry assigns
// identity to it.
type DatasetContent struct {
	Trades   []Trade
	Columns  []string
	Warnings []string
}

// Dataset is an immutable, id-addressed snapshot. Nothing mutates it after
// the registry returns it.
type Dataset struct {
	ID        string
	CreatedAt time.Time
	Trades    []Trade
	Columns   []string
	Warnings  []string
}
