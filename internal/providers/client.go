package providers

import (
	"context"
	"net/url"
	"time"

	"github.com/richxcame/currency-exchange/pkg/httpclient"
	"github.com/richxcame/currency-exchange/pkg/resilience"
)

// NewHTTPClient builds the JSON client a provider uses, retrying transient
// failures up to attempts times in total.
func NewHTTPClient(baseURL string, timeout time.Duration, attempts int) *httpclient.Client {
	client := httpclient.NewClient(baseURL, timeout)
	if attempts <= 1 {
		return client
	}

	// Rate lookups sit on the request path, so waits are kept short
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = attempts
	retry.InitialBackoff = 200 * time.Millisecond
	retry.MaxBackoff = 2 * time.Second

	return client.Apply(httpclient.WithRetry(retry))
}

// JSONGetter is the subset of httpclient.Client used by providers
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, headers map[string]string, out interface{}) error
}

func queryPath(params url.Values) string {
	return "?" + params.Encode()
}
