package analytics

import (
	"fmt"
	"sort"

	"github.com/vitos/trade_journal/internal/domain"
)

type GroupKey string

const (
	GroupBySymbol   GroupKey = "symbol"
	GroupBySide     GroupKey = "side"
	GroupByTradeDay GroupKey = "tradeDay"
)

// UnknownGroup labels trades whose grouping field is empty.
const UnknownGroup = "UNKNOWN"

const (
	DefaultTopN = 15
	MaxTopN     = 50
)

// ParseGroupKey accepts exactly the three supported keys.
func ParseGroupKey(s string) (GroupKey, error) {
	switch k := GroupKey(s); k {
	case GroupBySymbol, GroupBySide, GroupByTradeDay:
		return k, nil
	}
	return "", fmt.Errorf("unsupported group key %q", s)
}

// KeyOf maps a trade to its group label.
func KeyOf(t domain.Trade, key GroupKey) string {
	var v string
	switch key {
	case GroupBySymbol:
		v = t.Symbol
	case GroupBySide:
		v = string(t.Side)
	case GroupByTradeDay:
		if t.TradeDay != nil {
			v = *t.TradeDay
		}
	}
	if v == "" {
		return UnknownGroup
	}
	return v
}

// Group is one partition of trades, in source order.
type Group struct {
	Key    string
	Trades []domain.Trade
}

// GroupTrades partitions trades by key. Groups appear in first-seen order.
func GroupTrades(trades []domain.Trade, key GroupKey) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, t := range trades {
		k := KeyOf(t, key)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Trades = append(groups[i].Trades, t)
	}
	return groups
}

// ClampTopN applies the default for unset (nil) limits and bounds the rest
// to [1, MaxTopN].
func ClampTopN(n *int) int {
	if n == nil {
		return DefaultTopN
	}
	switch {
	case *n < 1:
		return 1
	case *n > MaxTopN:
		return MaxTopN
	}
	return *n
}

// RankBreakdown computes stats per group, orders them by pnl desc, count desc,
// then key asc, and keeps the first limit rows. A negative limit keeps all.
func RankBreakdown(trades []domain.Trade, key GroupKey, limit int) []domain.GroupStats {
	groups := GroupTrades(trades, key)
	rows := make([]domain.GroupStats, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.GroupStats{Key: g.Key, PnlStats: ComputePnlStats(g.Trades)})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.PnL != b.PnL {
			return a.PnL > b.PnL
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Key < b.Key
	})

	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
