package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
)

// Source column names.
const (
	ColID            = "Id"
	ColContractName  = "ContractName"
	ColEnteredAt     = "EnteredAt"
	ColExitedAt      = "ExitedAt"
	ColEntryPrice    = "EntryPrice"
	ColExitPrice     = "ExitPrice"
	ColFees          = "Fees"
	ColPnL           = "PnL"
	ColSize          = "Size"
	ColType          = "Type"
	ColTradeDay      = "TradeDay"
	ColTradeDuration = "TradeDuration"
	ColCommissions   = "Commissions"
)

// RequiredColumns are reported, not enforced, when absent from the header.
var RequiredColumns = []string{ColID, ColContractName, ColEnteredAt, ColEntryPrice, ColSize, ColType}

// Row is one raw record keyed by column name. Missing keys read as "".
type Row map[string]string

// MissingColumns returns the required names absent from columns, in the
// order of required.
func MissingColumns(columns, required []string) []string {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// RowToTrade builds a best-effort trade from row idx (0-based) and appends one
// warning per defect. It never fails.
func RowToTrade(row Row, idx int, warnings *[]string) domain.Trade {
	n := idx + 1
	warn := func(format string, args ...any) {
		*warnings = append(*warnings, fmt.Sprintf("Row %d: ", n)+fmt.Sprintf(format, args...))
	}

	enteredAt, ok := ToDate(row[ColEnteredAt])
	if !ok {
		warn("invalid EnteredAt \"%s\"", row[ColEnteredAt])
		enteredAt = time.Unix(0, 0).UTC()
	}

	var exitedAt *time.Time
	if raw := row[ColExitedAt]; raw != "" {
		if t, ok := ToDate(raw); ok {
			exitedAt = &t
		} else {
			warn("invalid ExitedAt \"%s\"", raw)
		}
	}

	qty, ok := ToNumber(row[ColSize])
	if !ok {
		warn("invalid Size \"%s\"", row[ColSize])
		qty = 0
	}

	symbol := strings.TrimSpace(row[ColContractName])
	if symbol == "" {
		warn("missing ContractName")
	}

	id := strings.TrimSpace(row[ColID])
	if id == "" {
		id = strconv.Itoa(n)
	}

	return domain.Trade{
		ID:     id,
		Symbol: symbol,
		Side:   normalizeSide(row[ColType]),
		Qty:    qty,

		EnteredAt: enteredAt,
		ExitedAt:  exitedAt,

		EntryPrice: numberOrNil(row[ColEntryPrice]),
		ExitPrice:  numberOrNil(row[ColExitPrice]),

		Fees: numberOrNil(row[ColFees]),
		PnL:  numberOrNil(row[ColPnL]),

		TradeDay:      stringOrNil(row[ColTradeDay]),
		TradeDuration: stringOrNil(row[ColTradeDuration]),

		Commissions: numberOrNil(row[ColCommissions]),
	}
}

// normalizeSide upper-cases the raw value and then compares it with the
// mixed-case labels, so no input can match and every trade reads as Long.
func normalizeSide(raw string) domain.Side {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch domain.Side(v) {
	case domain.SideLong:
		return domain.SideLong
	case domain.SideShort:
		return domain.SideShort
	}
	return domain.SideLong
}

// AdaptTable converts every record of table and returns the trades with the
// load warnings: missing required columns first, then row defects in order.
func AdaptTable(table *domain.Table) ([]domain.Trade, []string) {
	warnings := make([]string, 0)
	for _, col := range MissingColumns(table.Columns, RequiredColumns) {
		warnings = append(warnings, "Missing required column: "+col)
	}

	trades := make([]domain.Trade, 0, len(table.Records))
	for i, rec := range table.Records {
		trades = append(trades, RowToTrade(Row(rec), i, &warnings))
	}
	return trades, warnings
}
