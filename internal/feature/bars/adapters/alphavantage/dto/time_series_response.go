// Package dto defines data transfer objects for the Alpha Vantage API responses.
package dto

import (
	"encoding/json"
	"strings"
)

// TimeSeriesRow is one timestamped OHLCV entry as the provider sends it.
// All values arrive as strings.
type TimeSeriesRow struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// TimeSeriesResponse represents the JSON response from the Alpha Vantage
// TIME_SERIES_INTRADAY endpoint. The provider distinguishes data, rate-limit
// notices and errors only by which top-level key is present, and names the
// series key after the interval (e.g. "Time Series (5min)"), so decoding is
// done by hand from the raw key set.
type TimeSeriesResponse struct {
	MetaData     map[string]string
	ErrorMessage string
	Note         string
	Information  string
	Series       map[string]TimeSeriesRow
}

// seriesKeyPrefix is shared by every time-series payload key regardless of interval.
const seriesKeyPrefix = "Time Series"

// UnmarshalJSON implements json.Unmarshaler.
func (r *TimeSeriesResponse) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	for k, v := range raw {
		var err error
		switch {
		case k == "Meta Data":
			err = json.Unmarshal(v, &r.MetaData)
		case k == "Error Message":
			err = json.Unmarshal(v, &r.ErrorMessage)
		case k == "Note":
			err = json.Unmarshal(v, &r.Note)
		case k == "Information":
			err = json.Unmarshal(v, &r.Information)
		case strings.HasPrefix(k, seriesKeyPrefix):
			err = json.Unmarshal(v, &r.Series)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Interval returns the interval reported in the response metadata,
// or fallback when the metadata is absent.
func (r *TimeSeriesResponse) Interval(fallback string) string {
	if iv, ok := r.MetaData["4. Interval"]; ok && iv != "" {
		return iv
	}
	return fallback
}
