package model

import "time"

// Status is the outcome of processing one symbol.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusEmpty     Status = "EMPTY"
	StatusFailed    Status = "FAILED"
)

// SymbolResult is the typed outcome for a single watchlist entry.
type SymbolResult struct {
	Symbol string
	Status Status
	Rows   int    // rows written, zero unless succeeded
	Path   string // output file, empty unless succeeded
	Err    error  // set when Status is StatusFailed
}

// RunReport collects the per-symbol outcomes of one pipeline run.
type RunReport struct {
	ID         string
	Provider   string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SymbolResult
}

// Succeeded returns the symbols that were written, in watchlist order.
func (r *RunReport) Succeeded() []string {
	out := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Status == StatusSucceeded {
			out = append(out, res.Symbol)
		}
	}
	return out
}

// Count returns the number of results with the given status.
func (r *RunReport) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Symbols returns the symbols with the given status, in watchlist order.
func (r *RunReport) Symbols(s Status) []string {
	var out []string
	for _, res := range r.Results {
		if res.Status == s {
			out = append(out, res.Symbol)
		}
	}
	return out
}

// RunMetadata is the run-level summary written next to the per-symbol files.
type RunMetadata struct {
	LastUpdated string   `json:"last_updated"`
	Stocks      []string `json:"stocks"`
}
