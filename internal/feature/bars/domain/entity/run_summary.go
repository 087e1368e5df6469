package entity

import "time"

// SymbolStatus is the final state of one symbol's pipeline pass.
type SymbolStatus string

const (
	// StatusDone means the symbol's bars were fetched, normalized and persisted.
	StatusDone SymbolStatus = "done"
	// StatusFailed means the symbol was abandoned after a non-recoverable
	// error or exhausted retries.
	StatusFailed SymbolStatus = "failed"
)

// SymbolResult records the outcome for a single symbol within a batch run.
type SymbolResult struct {
	Symbol      string
	Status      SymbolStatus
	RowsWritten int64 // Bars committed by the upsert (0 when failed)
	SkippedRows int   // Malformed rows dropped by the normalizer
	Err         error // Cause of failure, nil when Status is StatusDone
}

// RunSummary aggregates the outcome of one batch execution. It holds exactly
// one SymbolResult per requested symbol, in request order.
type RunSummary struct {
	Interval  string
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []SymbolResult
}

// Succeeded returns the number of symbols that finished as StatusDone.
func (s *RunSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusDone {
			n++
		}
	}
	return n
}

// Failed returns the number of symbols that finished as StatusFailed.
func (s *RunSummary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// TotalRows returns the total number of bars written across all symbols.
func (s *RunSummary) TotalRows() int64 {
	var n int64
	for _, r := range s.Results {
		n += r.RowsWritten
	}
	return n
}
