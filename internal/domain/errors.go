package domain

import "errors"

// Domain errors
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternalError          = errors.New("internal error")
	ErrAccountNotFound        = errors.New("account not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrPlannedPaymentNotFound = errors.New("planned payment not found")
	ErrExchangeRateNotFound   = errors.New("exchange rate not found")
	ErrDuplicateOccurrence    = errors.New("occurrence already materialized")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
)
