package domain

import (
	"errors"
	"fmt"
)

const (
	CodeDatasetNotFound = "DATASET_NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInternal        = "INTERNAL"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrPathNotAllowed  = errors.New("path not allowed")
)

// ValidationError rejects a request before any processing happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrorDetail is the structured error value returned to callers.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NotFound builds the error value reported for an unknown dataset id.
func NotFound(datasetID string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{
		Code:    CodeDatasetNotFound,
		Message: fmt.Sprintf("No dataset found for datasetId=%q. Run load_trades first.", datasetID),
	}}
}
