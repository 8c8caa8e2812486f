package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
)

// Tool is one callable operation with its advertised input schema.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	handler func(ctx context.Context, args json.RawMessage) (any, error)
}

const fileLoadsDisabled = "file loads are disabled on this transport, send csvText"

// textResult marks a handler result that is sent verbatim instead of as JSON.
type textResult string

func object(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func journalTools(svc *usecase.JournalService, fileLoads bool) []Tool {
	return []Tool{
		{
			Name:        "hello",
			Description: "Sanity check tool to confirm the MCP server is running.",
			InputSchema: object(map[string]any{
				"who": map[string]any{"type": "string", "default": "world"},
			}),
			handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Who *string `json:"who"`
				}
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				who := "world"
				if in.Who != nil {
					who = *in.Who
				}
				return textResult("hello, " + who), nil
			},
		},
		{
			Name:        "load_trades",
			Description: "Load trades from a CSV file path or raw CSV text, normalize them, and store them as an in-memory dataset.",
			InputSchema: object(map[string]any{
				"path":    map[string]any{"type": "string"},
				"csvText": map[string]any{"type": "string"},
			}),
			handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in usecase.LoadTradesInput
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				if !fileLoads && in.Path != "" && in.CSVText == "" {
					return nil, &domain.ValidationError{Field: "path", Message: fileLoadsDisabled}
				}
				return svc.LoadTrades(ctx, in)
			},
		},
		{
			Name:        "dataset_info",
			Description: "Return summary stats and metadata for a loaded datasetId.",
			InputSchema: object(map[string]any{
				"datasetId": map[string]any{"type": "string", "minLength": 1},
			}, "datasetId"),
			handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in usecase.DatasetInfoInput
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				res, err := svc.DescribeDataset(ctx, in)
				if errors.Is(err, domain.ErrDatasetNotFound) {
					return domain.NotFound(in.DatasetID), nil
				}
				return res, err
			},
		},
		{
			Name:        "pnl_summary",
			Description: "Compute PnL summary stats for a dataset. Optionally filter by date and group by symbol/side/tradeDay.",
			InputSchema: object(map[string]any{
				"datasetId": map[string]any{"type": "string", "minLength": 1},
				"from":      map[string]any{"type": "string"},
				"to":        map[string]any{"type": "string"},
				"groupBy":   map[string]any{"type": "string", "enum": []string{"symbol", "side", "tradeDay"}},
				"topN":      map[string]any{"type": "integer", "minimum": 1, "maximum": 50},
			}, "datasetId"),
			handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in usecase.PnlSummaryInput
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				res, err := svc.SummarizePnl(ctx, in)
				if errors.Is(err, domain.ErrDatasetNotFound) {
					return domain.NotFound(in.DatasetID), nil
				}
				return res, err
			},
		},
		{
			Name:        "list_datasets",
			Description: "List the ids of every dataset loaded in this process.",
			InputSchema: object(map[string]any{}),
			handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				return svc.ListDatasets(ctx)
			},
		},
	}
}

// decodeArgs unmarshals tool arguments. Shape errors become validation
// errors naming the offending field.
func decodeArgs(args json.RawMessage, dst any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	err := json.Unmarshal(args, dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.ValidationError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &domain.ValidationError{Message: "arguments must be a JSON object: " + err.Error()}
}
