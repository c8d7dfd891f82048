package fetcher

import "context"

// Fetcher is the core interface that all date-scoped record fetchers implement.
// A fetcher retrieves the records an API holds for a single calendar day.
type Fetcher interface {
	// Fetch retrieves the records for date (formatted YYYY-MM-DD).
	// Errors should be *FetchError so callers can tell why a date was skipped.
	Fetch(ctx context.Context, date string) ([]Record, error)

	// Key returns a hierarchical identifier for this fetcher, used in logs.
	// Format: fetcher:{source}:{endpoint}:{filter}
	// Example:
	//   - fetcher:analytics:countPerHour:11
	Key() string
}
