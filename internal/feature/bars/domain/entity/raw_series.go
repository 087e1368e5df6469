package entity

// RawBar holds the unparsed OHLCV fields of a single provider row.
// All fields are kept as strings exactly as the provider sent them;
// the normalizer decides which rows are usable.
type RawBar struct {
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// RawSeries is the provider-native payload of one successful fetch:
// rows keyed by the provider's timestamp string. An empty Rows map is a
// valid payload (e.g., market closed, no data in the requested window).
type RawSeries struct {
	Interval string
	Rows     map[string]RawBar
}
