// Package alphavantage provides a client for the Alpha Vantage stock market API.
package alphavantage

import (
	"errors"
	"os"
	"time"
)

// DefaultBaseURL is the production Alpha Vantage endpoint.
const DefaultBaseURL = "https://www.alphavantage.co"

// Config holds configuration for the Alpha Vantage API client.
type Config struct {
	APIKey  string        // API key for authentication
	BaseURL string        // Base URL for the API
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Alpha Vantage configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("ALPHA_VANTAGE_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("ALPHA_VANTAGE_API_KEY"),
		BaseURL: base,
		Timeout: 30 * time.Second,
	}
}

// Validate reports a configuration error before any network activity happens.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("alphavantage: API key is empty")
	}
	if c.BaseURL == "" {
		return errors.New("alphavantage: base URL is empty")
	}
	return nil
}
