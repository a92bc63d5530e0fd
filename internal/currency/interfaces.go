package currency

import (
	"context"
	"io"
	"time"

	"github.com/richxcame/currency-exchange/pkg/pagination"
)

// RateCache stores rates by RateKey. Implementations fail soft: lookups
// report a miss on storage errors and writes are best-effort.
type RateCache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, rate float64, ttl time.Duration)
	Exists(ctx context.Context, key string) bool
}

// RateProvider fetches a live rate from one external source
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, source, target CurrencyCode, key string) (float64, error)
}

// RateFetcher resolves a rate from live sources, e.g. an ordered provider chain
type RateFetcher interface {
	FetchRate(ctx context.Context, source, target CurrencyCode, key string) (float64, error)
}

// TransactionStore persists conversion records
type TransactionStore interface {
	Save(ctx context.Context, record *ConversionRecord) error
	ExistsByID(ctx context.Context, transactionID string) (bool, error)
	FindFiltered(ctx context.Context, filter HistoryFilter, page pagination.Params) ([]*ConversionRecord, int64, error)
}

// RequestParser turns an uploaded batch file into conversion requests
type RequestParser interface {
	Parse(filename string, r io.Reader) ([]ConversionRequest, error)
}

// ServiceInterface is the API surface consumed by the HTTP handler
type ServiceInterface interface {
	GetExchangeRate(ctx context.Context, source, target string) (*ExchangeRateResponse, error)
	Convert(ctx context.Context, req *ConversionRequest, rows []ConversionRequest) ([]*ConversionResponse, error)
	GetHistory(ctx context.Context, transactionID string, date *time.Time, page pagination.Params) (*HistoryPage, error)
}
