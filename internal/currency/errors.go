package currency

import (
	"errors"
	"fmt"
)

// Error kinds, matchable with errors.Is
var (
	ErrInvalidCurrency         = errors.New("invalid currency")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrSameCurrency            = errors.New("same source and target currency")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrRateFetchFailed         = errors.New("rate fetch failed")
	ErrRateNotFound            = errors.New("rate not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrDuplicateTransaction    = errors.New("duplicate transaction")
	ErrStorageFailure          = errors.New("storage failure")
	ErrMissingSearchCriteria   = errors.New("missing search criteria")
	ErrUnsupportedBaseCurrency = errors.New("unsupported base currency")
	ErrInvalidFileFormat       = errors.New("invalid file format")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
)

// Machine readable error codes returned to API clients
const (
	CodeCSVFormat             = "CSV_FORMAT_ERROR"
	CodeExcelFormat           = "EXCEL_FORMAT_ERROR"
	CodeExternalAPIFailure    = "EXTERNAL_API_FAILURE"
	CodeTransactionNotFound   = "TRANSACTION_NOT_FOUND"
	CodeRateNotFound          = "RATE_NOT_FOUND"
	CodeInvalidCurrency       = "INVALID_CURRENCY"
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodeSameCurrency          = "SAME_CURRENCY"
	CodeInvalidArgument       = "INVALID_ARGUMENT"
	CodeMissingSearchCriteria = "MISSING_SEARCH_CRITERIA"
	CodeUnsupportedFileType   = "UNSUPPORTED_FILE_TYPE"
	CodeStorageFailure        = "STORAGE_FAILURE"
	CodeDuplicateTransaction  = "DUPLICATE_TRANSACTION"
)

// RateFetchError is returned when no provider produced a rate and no cached value was available
type RateFetchError struct {
	Source CurrencyCode
	Target CurrencyCode
	Err    error
}

func (e *RateFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch exchange rate for %s to %s: %v", e.Source, e.Target, e.Err)
	}
	return fmt.Sprintf("failed to fetch exchange rate for %s to %s", e.Source, e.Target)
}

// Message is the client facing text. Provider causes stay in Err.
func (e *RateFetchError) Message() string {
	return fmt.Sprintf("Failed to fetch exchange rate for %s to %s", e.Source, e.Target)
}

// Is matches ErrRateFetchFailed
func (e *RateFetchError) Is(target error) bool {
	return target == ErrRateFetchFailed
}

// Unwrap returns the last provider error
func (e *RateFetchError) Unwrap() error {
	return e.Err
}

// kindError pairs a user facing message with an error kind
type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, message: fmt.Sprintf(format, args...)}
}

func invalidCurrencyError(field, value string) error {
	return newKindError(ErrInvalidCurrency, "Invalid %s: %s", field, value)
}
