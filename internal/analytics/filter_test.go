package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/trade_journal/internal/domain"
)

func TestFilterByEnteredAt(t *testing.T) {
	at := func(h int) domain.Trade {
		tr := trade("ES", nil)
		tr.EnteredAt = time.Date(2024, 3, 1, h, 0, 0, 0, time.UTC)
		return tr
	}
	trades := []domain.Trade{at(9), at(10), at(11), at(12)}
	from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to *time.Time
		want     int
	}{
		{"no bounds", nil, nil, 4},
		{"lower bound inclusive", &from, nil, 3},
		{"upper bound inclusive", nil, &to, 3},
		{"both bounds", &from, &to, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterByEnteredAt(trades, tt.from, tt.to), tt.want)
		})
	}
}
