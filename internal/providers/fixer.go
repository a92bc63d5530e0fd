package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/richxcame/currency-exchange/internal/currency"
)

// FixerName identifies the Fixer provider in logs and metrics
const FixerName = "fixer"

type fixerResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Error   *apiError          `json:"error,omitempty"`
}

// FixerProvider reads rates from the Fixer API. The plan it targets only
// quotes against EUR, so any other source currency is rejected up front.
type FixerProvider struct {
	client    JSONGetter
	accessKey string
}

// NewFixerProvider creates a Fixer provider
func NewFixerProvider(client JSONGetter, accessKey string) *FixerProvider {
	return &FixerProvider{client: client, accessKey: accessKey}
}

// Name implements currency.RateProvider
func (p *FixerProvider) Name() string {
	return FixerName
}

// FetchRate implements currency.RateProvider
func (p *FixerProvider) FetchRate(ctx context.Context, source, target currency.CurrencyCode, key string) (float64, error) {
	if source != currency.EUR {
		return 0, fmt.Errorf("fixer: %w: %s", currency.ErrUnsupportedBaseCurrency, source)
	}

	params := url.Values{}
	params.Set("access_key", p.accessKey)
	params.Set("symbols", target.String())
	params.Set("format", "1")

	var resp fixerResponse
	if err := p.client.GetJSON(ctx, queryPath(params), nil, &resp); err != nil {
		return 0, fmt.Errorf("fixer: %w", err)
	}

	if !resp.Success {
		return 0, fmt.Errorf("fixer: request unsuccessful: %s", resp.Error)
	}

	rate, ok := resp.Rates[target.String()]
	if !ok {
		return 0, fmt.Errorf("fixer: %w: %s", currency.ErrRateNotFound, key)
	}

	return rate, nil
}
