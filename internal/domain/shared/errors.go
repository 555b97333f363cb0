package shared

// DomainError represents a business-rule violation. These errors are local,
// synchronous and non-retriable; they are surfaced to the caller verbatim.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrAlreadyPaid         = NewDomainError("ALREADY_PAID", "Payment has already been recorded")
	ErrAlreadyReconciled   = NewDomainError("ALREADY_RECONCILED", "Ledger entry is already reconciled")
	ErrInsufficientCapital = NewDomainError("INSUFFICIENT_CAPITAL", "Insufficient capital balance")
	ErrShareOverflow       = NewDomainError("SHARE_OVERFLOW", "Partner share percentages would exceed 100%")
)
