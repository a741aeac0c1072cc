// Package errors provides standardized error handling for the lending-ops
// service, including the mapping from internal codes to HTTP responses.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeInvalidLoanType  ErrorCode = "INVALID_LOAN_TYPE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	ErrCodeCatalogFetchFailed       ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeSearchQueryFailed  ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchUnavailable  ErrorCode = "SEARCH_UNAVAILABLE"
	ErrCodeAIRankingFailed    ErrorCode = "AI_RANKING_FAILED"
	ErrCodeAIRankingTimeout   ErrorCode = "AI_RANKING_TIMEOUT"
	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps an error code to the status the API surface returns.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidationFailed, ErrCodeInvalidLoanType, ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeCatalogFetchFailed, ErrCodeSearchUnavailable:
		return http.StatusBadGateway
	case ErrCodeAIRankingTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// Error Constructors
// ==========================

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable not-found error.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLoanTypeError creates a non-retryable loan type error.
func NewInvalidLoanTypeError(loanType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLoanType,
		Message:   "Unknown loan type",
		Details:   fmt.Sprintf("loanType: %s", loanType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchError creates a retryable catalog fetch error. This is the
// one hard failure of the matching flow and it belongs to the caller of the
// engine, never the engine itself.
func NewCatalogFetchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Failed to fetch lender catalog",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryError creates a retryable database error.
func NewQueryError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIRankingError creates an AI ranking failure. Callers are expected to
// degrade to the deterministic order rather than surface this to users.
func NewAIRankingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIRankingFailed,
		Message:   "LLM lender ranking failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationError creates a retryable notification error.
func NewNotificationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Failed to send notification",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures any error is a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
