// Package errors provides custom error types for the Centavo API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Card errors.
var (
	ErrCardNotFound   = &AppError{Code: "CARD_NOT_FOUND", Message: "Card not found", StatusCode: http.StatusNotFound}
	ErrCardRequired   = &AppError{Code: "CARD_REQUIRED", Message: "A card is required for credit transactions", StatusCode: http.StatusBadRequest}
	ErrInvalidCardDay = &AppError{Code: "INVALID_CARD_DAY", Message: "Closing and due days must be between 1 and 31", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound  = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrNonPositiveAmount    = &AppError{Code: "NON_POSITIVE_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrTransactionPaid      = &AppError{Code: "TRANSACTION_PAID", Message: "A paid transaction cannot be moved to another invoice", StatusCode: http.StatusConflict}
	ErrTransactionImmutable = &AppError{Code: "TRANSACTION_IMMUTABLE", Message: "Transaction is paid or belongs to a closed invoice", StatusCode: http.StatusConflict}
)

// Recurring template errors.
var (
	ErrTemplateNotFound    = &AppError{Code: "TEMPLATE_NOT_FOUND", Message: "Recurring template not found", StatusCode: http.StatusNotFound}
	ErrDuplicateOccurrence = &AppError{Code: "DUPLICATE_OCCURRENCE", Message: "An occurrence already exists for this month", StatusCode: http.StatusConflict}
)

// Invoice errors.
var (
	ErrInvoiceNotFound      = &AppError{Code: "INVOICE_NOT_FOUND", Message: "Invoice not found", StatusCode: http.StatusNotFound}
	ErrInvoiceAlreadyPaid   = &AppError{Code: "INVOICE_ALREADY_PAID", Message: "Invoice is already paid", StatusCode: http.StatusConflict}
	ErrOutsideInvoiceWindow = &AppError{Code: "OUTSIDE_INVOICE_WINDOW", Message: "Transaction date falls outside the invoice billing window", StatusCode: http.StatusConflict}
)

// Settlement errors.
var (
	ErrSplitNotFound    = &AppError{Code: "SPLIT_NOT_FOUND", Message: "Split not found", StatusCode: http.StatusNotFound}
	ErrSplitSumMismatch = &AppError{Code: "SPLIT_SUM_MISMATCH", Message: "Split shares must sum to the transaction amount", StatusCode: http.StatusBadRequest}
	ErrBalanceNotFound  = &AppError{Code: "BALANCE_NOT_FOUND", Message: "Balance not found", StatusCode: http.StatusNotFound}
)
