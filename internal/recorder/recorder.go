package recorder

import "time"

// FetchEvent is one scrape attempt during a refresh run.
type FetchEvent struct {
	ProductID string
	Retailer  string
	URL       string
	Price     float64
	Currency  string
	Outcome   string // "OK", "NETWORK", "STATUS", "PARSE"
	Detail    string
}

// RunSummary is the outcome of one whole refresh run.
type RunSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Products  int
	Fetched   int
	Failed    int
}

// Recorder persists refresh telemetry for later analysis. The JSON
// history document stays the only price store; this is audit data about
// the runs themselves.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecordRun(sum *RunSummary) error
	Close() error
}
