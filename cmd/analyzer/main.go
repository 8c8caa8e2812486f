package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_journal/internal/analytics"
	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/tabular"
	"github.com/vitos/trade_journal/internal/ingest"
)

func main() {
	groupBy := flag.String("group", "symbol", "group key: symbol, side or tradeDay")
	top := flag.Int("top", analytics.DefaultTopN, "number of groups to print")
	from := flag.String("from", "", "only trades entered at or after this time")
	to := flag.String("to", "", "only trades entered at or before this time")
	showWarnings := flag.Bool("warnings", false, "print load warnings")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: analyzer [flags] <trades.csv|trades.xlsx>\n")
		os.Exit(2)
	}

	key, err := analytics.ParseGroupKey(*groupBy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	path := flag.Arg(0)
	table, err := tabular.NewReader("", 0).ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading trades: %v\n", err)
		os.Exit(1)
	}

	trades, warnings := ingest.AdaptTable(table)
	trades = analytics.FilterByEnteredAt(trades, ingest.ToDateOrNil(*from), ingest.ToDateOrNil(*to))

	fmt.Printf("Analyzing file: %s (%d trades, %d warnings)\n", path, len(trades), len(warnings))
	if *showWarnings {
		for _, w := range warnings {
			fmt.Printf("  ! %s\n", w)
		}
	}

	info := analytics.ComputeDatasetInfoStats(trades)
	overall := analytics.ComputePnlStats(trades)

	fmt.Printf("\nSymbols: %d  Open: %d  Closed durations: %d", info.SymbolsCount, info.Totals.OpenTrades, info.DurationsMinutes.Count)
	if info.DurationsMinutes.P50 != nil {
		fmt.Printf(" (p50 %.2f min, p90 %.2f min)", *info.DurationsMinutes.P50, *info.DurationsMinutes.P90)
	}
	fmt.Println()

	fmt.Printf("\nOverall: pnl=%.2f fees=%.2f net=%.2f winRate=%.2f%% expectancy=%.2f profitFactor=%s\n",
		overall.PnL, overall.Fees, overall.NetAfterFees, overall.WinRate, overall.Expectancy, formatFactor(overall.ProfitFactor))

	rows := analytics.RankBreakdown(trades, key, analytics.ClampTopN(top))

	fmt.Printf("\nTop %s groups (total: %d):\n", key, len(analytics.GroupTrades(trades, key)))
	fmt.Printf("%-20s | %-6s | %-12s | %-8s | %-10s | %s\n", "Key", "Count", "PnL", "Win %", "Expectancy", "Profit Factor")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, r := range rows {
		printRow(r)
	}
}

func printRow(r domain.GroupStats) {
	fmt.Printf("%-20s | %-6d | %-12.2f | %-8.2f | %-10.2f | %s\n",
		r.Key, r.Count, r.PnL, r.WinRate, r.Expectancy, formatFactor(r.ProfitFactor))
}

func formatFactor(pf *float64) string {
	if pf == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *pf)
}
