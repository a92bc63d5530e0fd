package currency

import (
	"context"
	"io"
	"time"

	"github.com/richxcame/currency-exchange/pkg/pagination"
	"github.com/stretchr/testify/mock"
)

// MockRateCache is an in-package mock for RateCache
type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) Get(ctx context.Context, key string) (float64, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(float64), args.Bool(1)
}

func (m *MockRateCache) Set(ctx context.Context, key string, rate float64, ttl time.Duration) {
	m.Called(ctx, key, rate, ttl)
}

func (m *MockRateCache) Exists(ctx context.Context, key string) bool {
	args := m.Called(ctx, key)
	return args.Bool(0)
}

// MockRateFetcher is an in-package mock for RateFetcher
type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) FetchRate(ctx context.Context, source, target CurrencyCode, key string) (float64, error) {
	args := m.Called(ctx, source, target, key)
	return args.Get(0).(float64), args.Error(1)
}

// MockStore is an in-package mock for TransactionStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, record *ConversionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStore) ExistsByID(ctx context.Context, transactionID string) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) FindFiltered(ctx context.Context, filter HistoryFilter, page pagination.Params) ([]*ConversionRecord, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ConversionRecord), args.Get(1).(int64), args.Error(2)
}

// MockPublisher is an in-package mock for eventbus.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// MockService is an in-package mock for ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) GetExchangeRate(ctx context.Context, source, target string) (*ExchangeRateResponse, error) {
	args := m.Called(ctx, source, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExchangeRateResponse), args.Error(1)
}

func (m *MockService) Convert(ctx context.Context, req *ConversionRequest, rows []ConversionRequest) ([]*ConversionResponse, error) {
	args := m.Called(ctx, req, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ConversionResponse), args.Error(1)
}

func (m *MockService) GetHistory(ctx context.Context, transactionID string, date *time.Time, page pagination.Params) (*HistoryPage, error) {
	args := m.Called(ctx, transactionID, date, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HistoryPage), args.Error(1)
}

// MockParser is an in-package mock for RequestParser
type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(filename string, r io.Reader) ([]ConversionRequest, error) {
	args := m.Called(filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ConversionRequest), args.Error(1)
}
