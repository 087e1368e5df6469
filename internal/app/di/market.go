// Package di provides dependency injection factories for creating application components.
package di

import (
	"stock_pipeline/internal/feature/bars/adapters/alphavantage"
	infrahttp "stock_pipeline/internal/platform/http"
)

// NewMarket creates a fully configured Alpha Vantage client with HTTP client.
// The returned error is a configuration error (e.g. missing API key) and is
// reported before any network activity happens.
func NewMarket() (*alphavantage.Client, error) {
	cfg := alphavantage.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return alphavantage.NewClient(cfg, httpClient), nil
}
