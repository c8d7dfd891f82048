package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/miqueiast/vendas-amazon/internal/fetcher"
)

const (
	// CountPerHourPath is the endpoint returning hourly event counts
	CountPerHourPath = "/api/v2/countPerHour"

	// DefaultEventType is the event filter the backfill has always used
	DefaultEventType = 11
)

// Options configures a CountFetcher.
type Options struct {
	BaseURL     string
	Credentials Credentials
	EventType   int
	Timeout     time.Duration
}

// CountFetcher fetches hourly event counts, one calendar day per request.
type CountFetcher struct {
	eventType int
	client    *resty.Client
}

// NewCountFetcher creates a new countPerHour fetcher.
// The authorization token is computed once here and reused for every request.
func NewCountFetcher(opts Options) (*CountFetcher, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("analytics base URL is required")
	}
	if err := opts.Credentials.Validate(); err != nil {
		return nil, err
	}

	eventType := opts.EventType
	if eventType == 0 {
		eventType = DefaultEventType
	}

	client := fetcher.NewHTTPClient(fetcher.ClientOptions{
		BaseURL:       opts.BaseURL,
		Authorization: opts.Credentials.Header(),
		Timeout:       opts.Timeout,
	})

	return &CountFetcher{
		eventType: eventType,
		client:    client,
	}, nil
}

// Fetch retrieves the hourly counts for a single date.
// Every failure is returned as a *fetcher.FetchError.
func (f *CountFetcher) Fetch(ctx context.Context, date string) ([]fetcher.Record, error) {
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"dateBegin": date,
			"dateEnd":   date,
			"eventType": strconv.Itoa(f.eventType),
		}).
		Get(CountPerHourPath)

	if err != nil {
		return nil, fetcher.ClassifyTransportError(err)
	}

	slog.Debug("countPerHour response",
		"date", date,
		"status_code", resp.StatusCode(),
		"elapsed", time.Since(start))

	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	records, err := fetcher.ParseRecords(resp.Bytes())
	if err != nil {
		return nil, fetcher.NewMalformedError(fmt.Sprintf("unexpected response for %s", date), err)
	}

	if len(records) > 0 {
		slog.Debug("countPerHour records",
			"date", date,
			"records", len(records),
			"first", records[0])
	}

	return records, nil
}

// Key returns the log key for this fetcher
func (f *CountFetcher) Key() string {
	return fmt.Sprintf("fetcher:analytics:countPerHour:%d", f.eventType)
}
