package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/metrics"
	"github.com/vitos/trade_journal/internal/usecase"
	"go.uber.org/zap"
)

const (
	ServerName    = "trade-journal-mcp"
	ServerVersion = "0.1.0"

	defaultProtocolVersion = "2024-11-05"

	// csvText arrives inline, so a single message can be large.
	maxMessageBytes = 64 << 20
)

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

// Server dispatches JSON-RPC requests to the journal tools. Requests are
// handled one at a time, in arrival order.
type Server struct {
	tools     []Tool
	byName    map[string]Tool
	fileLoads bool
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// Option adjusts a Server at construction.
type Option func(*Server)

// WithoutFileLoads makes load_trades refuse "path" so callers can only send
// csvText. Used for network transports when no load directory is configured.
func WithoutFileLoads() Option {
	return func(s *Server) { s.fileLoads = false }
}

func NewServer(svc *usecase.JournalService, m *metrics.Metrics, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		byName:    make(map[string]Tool),
		fileLoads: true,
		metrics:   m,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tools = journalTools(svc, s.fileLoads)
	for _, t := range s.tools {
		s.byName[t.Name] = t
	}
	return s
}

// Serve reads newline-delimited requests from in and writes responses to out
// until in is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)
	w := bufio.NewWriter(out)

	s.logger.Info("Trade Journal MCP server started", zap.String("version", ServerVersion))

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.Handle(ctx, line)
		if resp == nil {
			continue
		}
		if _, err := w.Write(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush response: %w", err)
		}
	}
	return scanner.Err()
}

// Handle processes one encoded message and returns the encoded response, or
// nil for notifications.
func (s *Server) Handle(ctx context.Context, raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return s.encode(errorResponse(nil, CodeParseError, "Parse error: "+err.Error()))
	}
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return s.encode(errorResponse(req.ID, CodeInvalidRequest, "Invalid request"))
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if req.IsNotification() {
		return nil
	}
	if rpcErr != nil {
		return s.encode(errorResponse(req.ID, rpcErr.Code, rpcErr.Message))
	}
	return s.encode(resultResponse(req.ID, result))
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *RPCError) {
	switch req.Method {
	case "initialize":
		var p initializeParams
		_ = json.Unmarshal(req.Params, &p)
		version := p.ProtocolVersion
		if version == "" {
			version = defaultProtocolVersion
		}
		return map[string]any{
			"protocolVersion": version,
			"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
			"serverInfo":      map[string]any{"name": ServerName, "version": ServerVersion},
		}, nil
	case "notifications/initialized", "notifications/cancelled":
		return nil, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return map[string]any{"tools": s.tools}, nil
	case "tools/call":
		var p callToolParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "Invalid params: " + err.Error()}
		}
		tool, ok := s.byName[p.Name]
		if !ok {
			return nil, &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("Unknown tool: %s", p.Name)}
		}
		return s.callTool(ctx, tool, p.Arguments), nil
	}
	return nil, &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)}
}

// callTool runs the handler and renders its outcome as tool content. Unknown
// datasets come back as a normal result carrying the error object.
func (s *Server) callTool(ctx context.Context, tool Tool, args json.RawMessage) *CallToolResult {
	start := time.Now()
	result, err := tool.handler(ctx, args)

	outcome := metrics.OutcomeOK
	var out *CallToolResult

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		outcome = metrics.OutcomeInvalid
		out = errorResult("Invalid arguments: " + validationErr.Error())
	case err != nil:
		outcome = metrics.OutcomeError
		s.logger.Error("Tool failed", zap.String("tool", tool.Name), zap.Error(err))
		out = errorResult(err.Error())
	default:
		if _, ok := result.(domain.ErrorResponse); ok {
			outcome = metrics.OutcomeNotFound
		}
		out = s.render(tool.Name, result)
	}

	s.metrics.ObserveTool(tool.Name, outcome, time.Since(start))
	s.logger.Debug("Tool called",
		zap.String("tool", tool.Name),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (s *Server) render(name string, result any) *CallToolResult {
	if text, ok := result.(textResult); ok {
		return &CallToolResult{Content: []Content{{Type: "text", Text: string(text)}}}
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.logger.Error("Failed to encode tool result", zap.String("tool", name), zap.Error(err))
		return errorResult("failed to encode result: " + err.Error())
	}
	return &CallToolResult{Content: []Content{{Type: "text", Text: string(b)}}}
}

func errorResult(message string) *CallToolResult {
	return &CallToolResult{Content: []Content{{Type: "text", Text: message}}, IsError: true}
}

func (s *Server) encode(resp *Response) []byte {
	b, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
		b, _ = json.Marshal(errorResponse(resp.ID, CodeInternalError, "Internal error"))
	}
	return b
}
