package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitos/trade_journal/internal/analytics"
	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/metrics"
	"github.com/vitos/trade_journal/internal/ingest"
	"go.uber.org/zap"
)

// isoLayout is RFC 3339 in UTC with millisecond precision.
const isoLayout = "2006-01-02T15:04:05.000Z"

type LoadTradesInput struct {
	Path    string `json:"path,omitempty"`
	CSVText string `json:"csvText,omitempty"`
}

type LoadTradesResult struct {
	DatasetID string   `json:"datasetId"`
	RowCount  int      `json:"rowCount"`
	Columns   []string `json:"columns"`
	Warnings  []string `json:"warnings"`
}

type DatasetInfoInput struct {
	DatasetID string `json:"datasetId" validate:"required"`
}

type DatasetInfoResult struct {
	DatasetID string   `json:"datasetId"`
	CreatedAt string   `json:"createdAt"`
	RowCount  int      `json:"rowCount"`
	Columns   []string `json:"columns"`
	Warnings  []string `json:"warnings"`
	domain.DatasetInfoStats
}

type PnlSummaryInput struct {
	DatasetID string  `json:"datasetId" validate:"required"`
	From      *string `json:"from,omitempty"`
	To        *string `json:"to,omitempty"`
	GroupBy   *string `json:"groupBy,omitempty" validate:"omitnil,oneof=symbol side tradeDay"`
	TopN      *int    `json:"topN,omitempty" validate:"omitnil,min=1,max=50"`
}

// RangeFilter echoes the bounds that were actually applied.
type RangeFilter struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

type PnlSummaryResult struct {
	DatasetID string              `json:"datasetId"`
	Filter    RangeFilter         `json:"filter"`
	Overall   domain.PnlStats     `json:"overall"`
	Breakdown []domain.GroupStats `json:"breakdown"` // nil unless grouped
}

type ListDatasetsResult struct {
	DatasetIDs []string `json:"datasetIds"`
}

// JournalService implements the load, describe and summarize operations on
// top of an injected dataset registry.
type JournalService struct {
	repo    domain.DatasetRepository
	reader  domain.TableReader
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewJournalService(repo domain.DatasetRepository, reader domain.TableReader, m *metrics.Metrics, logger *zap.Logger) *JournalService {
	return &JournalService{
		repo:    repo,
		reader:  reader,
		metrics: m,
		logger:  logger,
	}
}

// LoadTrades parses the source, adapts every row and stores the result as a
// new dataset. Row defects become warnings; only an unreadable source fails.
func (s *JournalService) LoadTrades(ctx context.Context, in LoadTradesInput) (*LoadTradesResult, error) {
	if in.Path == "" && in.CSVText == "" {
		return nil, &domain.ValidationError{Message: `Provide either "path" or "csvText".`}
	}

	var (
		table *domain.Table
		err   error
	)
	if in.CSVText != "" {
		table, err = s.reader.ReadText(in.CSVText)
	} else {
		table, err = s.reader.ReadFile(in.Path)
	}
	if errors.Is(err, domain.ErrPathNotAllowed) {
		return nil, &domain.ValidationError{Field: "path", Message: "must stay inside the configured load directory"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	trades, warnings := ingest.AdaptTable(table)

	ds, err := s.repo.Create(ctx, domain.DatasetContent{
		Trades:   trades,
		Columns:  table.Columns,
		Warnings: warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	s.metrics.ObserveLoad(len(trades), len(warnings))
	s.logger.Info("Dataset loaded",
		zap.String("dataset_id", ds.ID),
		zap.Int("rows", len(ds.Trades)),
		zap.Int("warnings", len(ds.Warnings)),
	)

	return &LoadTradesResult{
		DatasetID: ds.ID,
		RowCount:  len(ds.Trades),
		Columns:   ds.Columns,
		Warnings:  ds.Warnings,
	}, nil
}

// DescribeDataset returns metadata and descriptive stats. An unknown id
// yields domain.ErrDatasetNotFound.
func (s *JournalService) DescribeDataset(ctx context.Context, in DatasetInfoInput) (*DatasetInfoResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ds, err := s.repo.Get(ctx, in.DatasetID)
	if err != nil {
		return nil, err
	}

	return &DatasetInfoResult{
		DatasetID:        ds.ID,
		CreatedAt:        formatISO(ds.CreatedAt),
		RowCount:         len(ds.Trades),
		Columns:          ds.Columns,
		Warnings:         ds.Warnings,
		DatasetInfoStats: analytics.ComputeDatasetInfoStats(ds.Trades),
	}, nil
}

// SummarizePnl filters by entry time, computes overall stats and, when a
// group key is given, a ranked breakdown. Unparseable bounds are ignored.
func (s *JournalService) SummarizePnl(ctx context.Context, in PnlSummaryInput) (*PnlSummaryResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ds, err := s.repo.Get(ctx, in.DatasetID)
	if err != nil {
		return nil, err
	}

	from := boundOrNil(in.From)
	to := boundOrNil(in.To)
	trades := analytics.FilterByEnteredAt(ds.Trades, from, to)

	result := &PnlSummaryResult{
		DatasetID: ds.ID,
		Filter:    RangeFilter{From: isoOrNil(from), To: isoOrNil(to)},
		Overall:   analytics.ComputePnlStats(trades),
	}

	if in.GroupBy != nil {
		key, err := analytics.ParseGroupKey(*in.GroupBy)
		if err != nil {
			return nil, &domain.ValidationError{Field: "groupBy", Message: err.Error()}
		}
		result.Breakdown = analytics.RankBreakdown(trades, key, analytics.ClampTopN(in.TopN))
	}

	s.logger.Debug("PnL summary computed",
		zap.String("dataset_id", ds.ID),
		zap.Int("trades", len(trades)),
		zap.Int("groups", len(result.Breakdown)),
	)
	return result, nil
}

// ListDatasets returns every stored dataset id in creation order.
func (s *JournalService) ListDatasets(ctx context.Context) (*ListDatasetsResult, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return &ListDatasetsResult{DatasetIDs: ids}, nil
}

func boundOrNil(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	return ingest.ToDateOrNil(*raw)
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func isoOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatISO(*t)
	return &s
}
