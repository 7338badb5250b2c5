package recorder

import "time"

// FetchEvent describes the outcome of one per-ticker fetch. A non-empty
// Error (or zero Rows without an error) marks the ticker as dropped from the
// request's table.
type FetchEvent struct {
	RequestID string
	Ticker    string
	Interval  string
	Rows      int
	Error     string
	Duration  time.Duration
}

// Recorder persists fetch diagnostics for later inspection. It never stores
// pipeline tables, only per-ticker fetch outcomes.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	Close() error
}
