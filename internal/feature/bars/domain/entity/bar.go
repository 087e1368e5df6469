// Package entity defines the domain models for the bars feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits kept for price fields.
// Prices are rounded once at the normalization boundary so that repeated
// upserts of the same source value stay idempotent.
const PriceScale = 4

// Bar represents one OHLCV (Open, High, Low, Close, Volume) observation
// for a stock symbol at a specific timestamp.
type Bar struct {
	Symbol    string          // Stock ticker symbol (e.g., "IBM", "AAPL")
	Timestamp time.Time       // Observation time, stored in UTC
	Open      decimal.Decimal // Opening price
	High      decimal.Decimal // Highest price during the interval
	Low       decimal.Decimal // Lowest price during the interval
	Close     decimal.Decimal // Closing price
	Volume    int64           // Trading volume
}
