/*
errors.go - Centralized error types for the finance engine

PURPOSE:
  All error categories in one place for consistency and discoverability.
  Engine and store packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - Rejected before any store access
  2. Not-found errors  - A referenced record does not exist
  3. Store errors      - Database-level failures, opaque, not retried
  4. Lookup errors     - External price-source failures, per-symbol,
                         non-fatal to batch operations

USAGE:
  Callers branch on category, not on individual sentinels:

    if finance.IsNotFound(err) {
        // 404
    }

SEE ALSO:
  - store/sqlite: Wraps store failures
  - invest/refresh.go: Wraps price lookup failures per symbol
  - api/handlers.go: Maps categories to HTTP status codes
*/
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrMissingID is returned when an update or delete carries no
	// record identifier. Rejected before any store access.
	ErrMissingID = errors.New("record id is required")

	// ErrNotFound is the root of all missing-record failures.
	ErrNotFound = errors.New("record not found")

	ErrAccountNotFound    = errors.New("account not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvestmentNotFound = errors.New("investment not found")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrQuotationNotFound  = errors.New("quotation not found")

	// ErrStore is returned for database I/O or constraint failures.
	ErrStore = errors.New("store operation failed")

	// ErrPriceLookup is returned when the external price source fails
	// for one symbol. Never fatal to a refresh sweep.
	ErrPriceLookup = errors.New("price lookup failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError reports an invalid input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// PriceLookupError reports a failed lookup for one symbol.
type PriceLookupError struct {
	Symbol string
	Kind   InvestmentType
	Cause  error
}

func (e *PriceLookupError) Error() string {
	return fmt.Sprintf("price lookup failed for %s (%s): %v", e.Symbol, e.Kind, e.Cause)
}

func (e *PriceLookupError) Unwrap() error { return ErrPriceLookup }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true for client-input failures.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrMissingID)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrInvestmentNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrQuotationNotFound)
}
