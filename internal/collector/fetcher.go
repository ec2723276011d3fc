package collector

import (
	"context"
	"errors"
	"net/url"
	"time"

	"StockArchive/internal/model"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned by providers that report an unknown symbol.
var ErrNotFound = errors.New("symbol not found")

// Fetcher defines the interface for fetching full daily price history.
// An empty frame with a nil error means the provider has no data for the symbol.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string) (*model.Frame, error)
	Name() string
}

// newClient builds a resty client with an optional proxy. Retries stay at the
// library default of zero.
func newClient(baseURL, proxyURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err == nil {
			client.SetProxy(proxyURL)
		}
	}
	return client
}
