package dto

import "net/http"

// Error codes surfaced by the API. Domain error codes pass through
// unchanged so clients can react to the business rule that fired.
const (
	ErrCodeInternal   = "INTERNAL"
	ErrCodeBadRequest = "BAD_REQUEST"

	ErrCodeValidation          = "VALIDATION"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeConcurrency         = "CONCURRENCY_CONFLICT"
	ErrCodeOptimisticLock      = "OPTIMISTIC_LOCK_ERROR"
	ErrCodeAlreadyPaid         = "ALREADY_PAID"
	ErrCodeAlreadyReconciled   = "ALREADY_RECONCILED"
	ErrCodeShareOverflow       = "SHARE_OVERFLOW"
	ErrCodeInsufficientCapital = "INSUFFICIENT_CAPITAL"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// State conflicts: the request was valid but the resource moved on.
	ErrCodeInvalidState:      http.StatusConflict,
	ErrCodeConcurrency:       http.StatusConflict,
	ErrCodeOptimisticLock:    http.StatusConflict,
	ErrCodeAlreadyPaid:       http.StatusConflict,
	ErrCodeAlreadyReconciled: http.StatusConflict,

	// Business rule rejections on otherwise well-formed requests.
	ErrCodeShareOverflow:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientCapital: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for codes the map does not know
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
