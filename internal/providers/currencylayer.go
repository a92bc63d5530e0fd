package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/richxcame/currency-exchange/internal/currency"
)

// CurrencyLayerName identifies the CurrencyLayer provider in logs and metrics
const CurrencyLayerName = "currencylayer"

type currencyLayerResponse struct {
	Success bool               `json:"success"`
	Source  string             `json:"source"`
	Quotes  map[string]float64 `json:"quotes"`
	Error   *apiError          `json:"error,omitempty"`
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

func (e *apiError) String() string {
	if e == nil {
		return "unknown error"
	}
	if e.Info != "" {
		return fmt.Sprintf("%d %s", e.Code, e.Info)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Type)
}

// CurrencyLayerProvider reads live quotes from the CurrencyLayer API.
// Quotes are keyed by the concatenated pair, e.g. USDEUR.
type CurrencyLayerProvider struct {
	client    JSONGetter
	accessKey string
}

// NewCurrencyLayerProvider creates a CurrencyLayer provider
func NewCurrencyLayerProvider(client JSONGetter, accessKey string) *CurrencyLayerProvider {
	return &CurrencyLayerProvider{client: client, accessKey: accessKey}
}

// Name implements currency.RateProvider
func (p *CurrencyLayerProvider) Name() string {
	return CurrencyLayerName
}

// FetchRate implements currency.RateProvider
func (p *CurrencyLayerProvider) FetchRate(ctx context.Context, source, target currency.CurrencyCode, key string) (float64, error) {
	params := url.Values{}
	params.Set("access_key", p.accessKey)
	params.Set("currencies", target.String())
	params.Set("source", source.String())
	params.Set("format", "1")

	var resp currencyLayerResponse
	if err := p.client.GetJSON(ctx, queryPath(params), nil, &resp); err != nil {
		return 0, fmt.Errorf("currencylayer: %w", err)
	}

	if !resp.Success {
		return 0, fmt.Errorf("currencylayer: request unsuccessful: %s", resp.Error)
	}

	rate, ok := resp.Quotes[key]
	if !ok {
		return 0, fmt.Errorf("currencylayer: %w: %s", currency.ErrRateNotFound, key)
	}

	return rate, nil
}
