package scraper

import "fmt"

// NetworkError reports a connection-level failure: refused connection,
// DNS failure, or timeout.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// ParseError reports that an expected content pattern was absent from the
// fetched page: a layout change, an out-of-stock page, or a block page.
type ParseError struct {
	URL     string
	Missing string // which field could not be extracted
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no reliable %s found on %s", e.Missing, e.URL)
}
