// Package domain defines domain-level errors for the bars feature.
package domain

import "errors"

// Error taxonomy for the ingestion pipeline. The provider client and the
// persistence layer classify failures once with these sentinels; upper layers
// only inspect them with errors.Is and decide whether to retry or abandon.
var (
	// ErrNetwork indicates a transport-level failure: connection error,
	// request timeout, or a non-2xx HTTP response.
	ErrNetwork = errors.New("network error")

	// ErrRateLimited indicates the provider signaled its request-rate ceiling
	// inside an otherwise well-formed response. Retryable with backoff at the
	// batch level.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrInvalidSymbol indicates the provider rejected the request, typically
	// because the symbol is unknown. Not retryable.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrMalformedResponse indicates the response body could not be decoded
	// as structured data. Not retryable for that fetch attempt.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrConnectionFailure indicates a transient database failure that
	// persisted through the bounded reconnect retries.
	ErrConnectionFailure = errors.New("database connection failure")

	// ErrConstraintViolation indicates an integrity error unrelated to the
	// expected upsert conflict (e.g., precision overflow). Not retryable.
	ErrConstraintViolation = errors.New("constraint violation")
)
