package currency

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRateResolver_DefaultTTL(t *testing.T) {
	r := NewRateResolver(new(MockRateCache), new(MockRateFetcher), 0)
	assert.Equal(t, DefaultRateTTL, r.TTL())

	r = NewRateResolver(new(MockRateCache), new(MockRateFetcher), 5*time.Minute)
	assert.Equal(t, 5*time.Minute, r.TTL())
}

func TestRateResolver_Resolve_CacheHit(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRateCache)
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, DefaultRateTTL)

	cache.On("Exists", mock.Anything, "USDEUR").Return(true)
	cache.On("Get", mock.Anything, "USDEUR").Return(0.92, true)

	rate, err := resolver.Resolve(ctx, USD, EUR)

	require.NoError(t, err)
	assert.Equal(t, 0.92, rate)
	fetcher.AssertNotCalled(t, "FetchRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestRateResolver_Resolve_MissFetchesAndStores(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRateCache)
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, 30*time.Minute)

	cache.On("Exists", mock.Anything, "EURTRY").Return(false)
	fetcher.On("FetchRate", mock.Anything, EUR, TRY, "EURTRY").Return(35.1, nil).Once()
	cache.On("Set", mock.Anything, "EURTRY", 35.1, 30*time.Minute).Return().Once()

	rate, err := resolver.Resolve(ctx, EUR, TRY)

	require.NoError(t, err)
	assert.Equal(t, 35.1, rate)
	cache.AssertExpectations(t)
	fetcher.AssertExpectations(t)
}

// memoryRateCache keeps entries until their TTL passes on the injected clock
type memoryRateCache struct {
	mu      sync.Mutex
	now     time.Time
	rates   map[string]float64
	expires map[string]time.Time
}

func newMemoryRateCache(now time.Time) *memoryRateCache {
	return &memoryRateCache{now: now, rates: map[string]float64{}, expires: map[string]time.Time{}}
}

func (c *memoryRateCache) Get(_ context.Context, key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.now.Before(c.expires[key]) {
		return 0, false
	}
	rate, ok := c.rates[key]
	return rate, ok
}

func (c *memoryRateCache) Set(_ context.Context, key string, rate float64, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[key] = rate
	c.expires[key] = c.now.Add(ttl)
}

func (c *memoryRateCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.Get(ctx, key)
	return ok
}

func (c *memoryRateCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateResolver_Resolve_SecondCallWithinTTLUsesCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryRateCache(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, 30*time.Minute)

	fetcher.On("FetchRate", mock.Anything, GBP, USD, "GBPUSD").Return(1.27, nil).Once()

	first, err := resolver.Resolve(ctx, GBP, USD)
	require.NoError(t, err)

	cache.advance(29 * time.Minute)
	second, err := resolver.Resolve(ctx, GBP, USD)
	require.NoError(t, err)

	assert.Equal(t, 1.27, first)
	assert.Equal(t, first, second)
	fetcher.AssertNumberOfCalls(t, "FetchRate", 1)
}

func TestRateResolver_Resolve_RefetchesAfterTTL(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryRateCache(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, 30*time.Minute)

	fetcher.On("FetchRate", mock.Anything, GBP, USD, "GBPUSD").Return(1.27, nil).Once()
	fetcher.On("FetchRate", mock.Anything, GBP, USD, "GBPUSD").Return(1.31, nil).Once()

	_, err := resolver.Resolve(ctx, GBP, USD)
	require.NoError(t, err)

	cache.advance(31 * time.Minute)
	rate, err := resolver.Resolve(ctx, GBP, USD)

	require.NoError(t, err)
	assert.Equal(t, 1.31, rate)
	fetcher.AssertNumberOfCalls(t, "FetchRate", 2)
}

func TestRateResolver_Resolve_EntryExpiredBetweenCalls(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRateCache)
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, DefaultRateTTL)

	cache.On("Exists", mock.Anything, "USDEUR").Return(true)
	cache.On("Get", mock.Anything, "USDEUR").Return(0.0, false).Once()
	fetcher.On("FetchRate", mock.Anything, USD, EUR, "USDEUR").Return(0.93, nil).Once()
	cache.On("Set", mock.Anything, "USDEUR", 0.93, DefaultRateTTL).Return()

	rate, err := resolver.Resolve(ctx, USD, EUR)

	require.NoError(t, err)
	assert.Equal(t, 0.93, rate)
	fetcher.AssertExpectations(t)
}

func TestRateResolver_Resolve_StaleFallback(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRateCache)
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, DefaultRateTTL)

	cache.On("Exists", mock.Anything, "USDEUR").Return(false)
	fetcher.On("FetchRate", mock.Anything, USD, EUR, "USDEUR").
		Return(0.0, &RateFetchError{Source: USD, Target: EUR, Err: errors.New("all down")})
	cache.On("Get", mock.Anything, "USDEUR").Return(0.9, true)

	rate, err := resolver.Resolve(ctx, USD, EUR)

	require.NoError(t, err)
	assert.Equal(t, 0.9, rate)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateResolver_Resolve_FailsWithoutCache(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRateCache)
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, DefaultRateTTL)

	cause := errors.New("provider timeout")
	cache.On("Exists", mock.Anything, "GBPJPY").Return(false)
	fetcher.On("FetchRate", mock.Anything, GBP, JPY, "GBPJPY").Return(0.0, cause)
	cache.On("Get", mock.Anything, "GBPJPY").Return(0.0, false)

	_, err := resolver.Resolve(ctx, GBP, JPY)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateFetchFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "GBP")
	assert.Contains(t, err.Error(), "JPY")

	var fetchErr *RateFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, GBP, fetchErr.Source)
	assert.Equal(t, JPY, fetchErr.Target)
}

func TestRateResolver_Resolve_KeepsFetcherError(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRateCache)
	fetcher := new(MockRateFetcher)
	resolver := NewRateResolver(cache, fetcher, DefaultRateTTL)

	original := &RateFetchError{Source: USD, Target: CHF, Err: errors.New("fixer: unsupported base")}
	cache.On("Exists", mock.Anything, "USDCHF").Return(false)
	fetcher.On("FetchRate", mock.Anything, USD, CHF, "USDCHF").Return(0.0, original)
	cache.On("Get", mock.Anything, "USDCHF").Return(0.0, false)

	_, err := resolver.Resolve(ctx, USD, CHF)

	assert.Same(t, original, err)
}

func TestRateResolver_Resolve_RejectsUnusableRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
	}{
		{name: "zero", rate: 0},
		{name: "negative", rate: -1.2},
		{name: "NaN", rate: math.NaN()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			cache := new(MockRateCache)
			fetcher := new(MockRateFetcher)
			resolver := NewRateResolver(cache, fetcher, DefaultRateTTL)

			cache.On("Exists", mock.Anything, "USDEUR").Return(false)
			fetcher.On("FetchRate", mock.Anything, USD, EUR, "USDEUR").Return(tc.rate, nil)
			cache.On("Get", mock.Anything, "USDEUR").Return(0.0, false)

			_, err := resolver.Resolve(ctx, USD, EUR)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRateFetchFailed))
			assert.True(t, errors.Is(err, ErrRateNotFound))
			cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
