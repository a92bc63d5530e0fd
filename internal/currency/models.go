package currency

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyCode is a supported ISO-style currency code
type CurrencyCode string

// Supported currency codes
const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	TRY CurrencyCode = "TRY"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	AUD CurrencyCode = "AUD"
	CAD CurrencyCode = "CAD"
	CHF CurrencyCode = "CHF"
	CNH CurrencyCode = "CNH"
	HKD CurrencyCode = "HKD"
	NZD CurrencyCode = "NZD"
)

var supportedCurrencies = []CurrencyCode{USD, EUR, TRY, GBP, JPY, AUD, CAD, CHF, CNH, HKD, NZD}

var currencyDescriptions = map[CurrencyCode]string{
	USD: "United States Dollar",
	EUR: "Euro",
	TRY: "Turkish Lira",
	GBP: "British Pound",
	JPY: "Japanese Yen",
	AUD: "Australian Dollar",
	CAD: "Canadian Dollar",
	CHF: "Swiss Franc",
	CNH: "Chinese Yuan (Offshore)",
	HKD: "Hong Kong Dollar",
	NZD: "New Zealand Dollar",
}

// ParseCurrencyCode normalizes s and checks it against the supported set
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	code := normalizeCode(s)
	if !code.IsValid() {
		return "", invalidCurrencyError("currency", s)
	}
	return code, nil
}

// SupportedCurrencies returns the supported codes in declaration order
func SupportedCurrencies() []CurrencyCode {
	out := make([]CurrencyCode, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// IsValid reports whether c is a supported code
func (c CurrencyCode) IsValid() bool {
	_, ok := currencyDescriptions[c]
	return ok
}

// Description returns the human readable currency name
func (c CurrencyCode) Description() string {
	return currencyDescriptions[c]
}

// String implements fmt.Stringer
func (c CurrencyCode) String() string {
	return string(c)
}

// UnmarshalText normalizes case and whitespace; membership is checked by the validators
func (c *CurrencyCode) UnmarshalText(text []byte) error {
	*c = normalizeCode(string(text))
	return nil
}

func normalizeCode(s string) CurrencyCode {
	return CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
}

// RateKey builds the cache and provider lookup key for a currency pair
func RateKey(source, target CurrencyCode) string {
	return string(source) + string(target)
}

// ConversionRequest is a single amount to convert
type ConversionRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	SourceCurrency CurrencyCode    `json:"sourceCurrency"`
	TargetCurrency CurrencyCode    `json:"targetCurrency"`
}

// ConversionRecord is a persisted conversion transaction
type ConversionRecord struct {
	TransactionID   string          `json:"transactionId" db:"transaction_id"`
	SourceCurrency  CurrencyCode    `json:"sourceCurrency" db:"source_currency"`
	TargetCurrency  CurrencyCode    `json:"targetCurrency" db:"target_currency"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount" db:"converted_amount"`
	TransactionDate time.Time       `json:"transactionDate" db:"transaction_date"`
}

// ConversionResponse is the result of one successful conversion
type ConversionResponse struct {
	TransactionID   string          `json:"transactionId"`
	SourceCurrency  CurrencyCode    `json:"sourceCurrency"`
	TargetCurrency  CurrencyCode    `json:"targetCurrency"`
	SourceAmount    decimal.Decimal `json:"sourceAmount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
}

// ExchangeRateResponse is the API response for a rate lookup
type ExchangeRateResponse struct {
	SourceCurrency CurrencyCode `json:"sourceCurrency"`
	TargetCurrency CurrencyCode `json:"targetCurrency"`
	Rate           float64      `json:"rate"`
}

// CurrencyResponse describes one supported currency
type CurrencyResponse struct {
	Code        CurrencyCode `json:"code"`
	Description string       `json:"description"`
}

// HistoryItem is the public view of a stored transaction
type HistoryItem struct {
	TransactionID   string          `json:"transactionId"`
	SourceCurrency  string          `json:"sourceCurrency"`
	TargetCurrency  string          `json:"targetCurrency"`
	SourceAmount    decimal.Decimal `json:"sourceAmount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	TransactionDate time.Time       `json:"transactionDate"`
}

// HistoryFilter selects stored transactions; empty fields are ignored
type HistoryFilter struct {
	TransactionID string
	Date          *time.Time
}

// DayRange returns the half-open UTC interval [date 00:00, date+1 00:00)
func (f HistoryFilter) DayRange() (time.Time, time.Time) {
	d := f.Date.UTC()
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// HistoryPage is one page of history results
type HistoryPage struct {
	Items  []HistoryItem
	Total  int64
	Limit  int
	Offset int
}

func toConversionResponse(r *ConversionRecord) *ConversionResponse {
	return &ConversionResponse{
		TransactionID:   r.TransactionID,
		SourceCurrency:  r.SourceCurrency,
		TargetCurrency:  r.TargetCurrency,
		SourceAmount:    r.Amount,
		ConvertedAmount: r.ConvertedAmount,
	}
}

func toHistoryItem(r *ConversionRecord) HistoryItem {
	return HistoryItem{
		TransactionID:   r.TransactionID,
		SourceCurrency:  string(r.SourceCurrency),
		TargetCurrency:  string(r.TargetCurrency),
		SourceAmount:    r.Amount,
		ConvertedAmount: r.ConvertedAmount,
		TransactionDate: r.TransactionDate,
	}
}
