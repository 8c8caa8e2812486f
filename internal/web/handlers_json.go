package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/metrics"
	"github.com/vitos/trade_journal/internal/usecase"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 20

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ids, err := s.service.ListDatasets(r.Context())
	if err != nil {
		s.writeServiceError(w, "status", "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"datasets": len(ids.DatasetIDs),
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ListDatasets(r.Context())
	if err != nil {
		s.writeServiceError(w, "list_datasets", "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleLoadTrades accepts either a JSON body {path, csvText} or a raw CSV
// body (Content-Type text/csv).
func (s *Server) handleLoadTrades(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, domain.CodeValidation, "failed to read request body")
		return
	}

	var in usecase.LoadTradesInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		in.CSVText = string(body)
	} else if err := json.Unmarshal(body, &in); err != nil {
		s.metrics.ObserveTool("load_trades", metrics.OutcomeInvalid, time.Since(start))
		s.writeError(w, http.StatusBadRequest, domain.CodeValidation, "request body must be a JSON object: "+err.Error())
		return
	}

	if !s.fileLoads && in.Path != "" && in.CSVText == "" {
		s.metrics.ObserveTool("load_trades", metrics.OutcomeInvalid, time.Since(start))
		s.writeError(w, http.StatusBadRequest, domain.CodeValidation, "path: file loads are disabled, set load.base_dir or send csvText")
		return
	}

	res, err := s.service.LoadTrades(r.Context(), in)
	if err != nil {
		s.metrics.ObserveTool("load_trades", outcomeOf(err), time.Since(start))
		s.writeServiceError(w, "load_trades", "", err)
		return
	}
	s.metrics.ObserveTool("load_trades", metrics.OutcomeOK, time.Since(start))
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDatasetInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.PathValue("id")

	res, err := s.service.DescribeDataset(r.Context(), usecase.DatasetInfoInput{DatasetID: id})
	s.metrics.ObserveTool("dataset_info", outcomeOf(err), time.Since(start))
	if err != nil {
		s.writeServiceError(w, "dataset_info", id, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePnlSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.PathValue("id")
	q := r.URL.Query()

	in := usecase.PnlSummaryInput{DatasetID: id}
	if q.Has("from") {
		v := q.Get("from")
		in.From = &v
	}
	if q.Has("to") {
		v := q.Get("to")
		in.To = &v
	}
	if q.Has("groupBy") {
		v := q.Get("groupBy")
		in.GroupBy = &v
	}
	if q.Has("topN") {
		n, err := strconv.Atoi(q.Get("topN"))
		if err != nil {
			s.metrics.ObserveTool("pnl_summary", metrics.OutcomeInvalid, time.Since(start))
			s.writeError(w, http.StatusBadRequest, domain.CodeValidation, "topN: must be an integer")
			return
		}
		in.TopN = &n
	}

	res, err := s.service.SummarizePnl(r.Context(), in)
	s.metrics.ObserveTool("pnl_summary", outcomeOf(err), time.Since(start))
	if err != nil {
		s.writeServiceError(w, "pnl_summary", id, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func outcomeOf(err error) string {
	var validationErr *domain.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrDatasetNotFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &validationErr):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

func (s *Server) writeServiceError(w http.ResponseWriter, op, datasetID string, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound):
		s.writeJSON(w, http.StatusNotFound, domain.NotFound(datasetID))
	case errors.As(err, &validationErr):
		s.writeError(w, http.StatusBadRequest, domain.CodeValidation, validationErr.Error())
	default:
		s.logger.Error("Request failed", zap.String("op", op), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, domain.CodeInternal, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, domain.ErrorResponse{Error: domain.ErrorDetail{Code: code, Message: message}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
