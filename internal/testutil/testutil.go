package testutil

import (
	"context"
	"sync"

	"github.com/miqueiast/vendas-amazon/internal/fetcher"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, date string) ([]fetcher.Record, error)
	KeyFunc   func() string

	mu    sync.Mutex
	dates []string
}

// Fetch implements the Fetcher interface and records the requested date
func (m *MockFetcher) Fetch(ctx context.Context, date string) ([]fetcher.Record, error) {
	m.mu.Lock()
	m.dates = append(m.dates, date)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, date)
	}
	return nil, nil
}

// Key implements the Fetcher interface
func (m *MockFetcher) Key() string {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return "mock:key"
}

// Dates returns the dates requested so far, in call order
func (m *MockFetcher) Dates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dates...)
}

// NewMockFetcher creates a mock fetcher answering from fixed per-date responses.
// Dates missing from both maps return no records.
func NewMockFetcher(records map[string][]fetcher.Record, errs map[string]error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, date string) ([]fetcher.Record, error) {
			if err, ok := errs[date]; ok {
				return nil, err
			}
			return records[date], nil
		},
	}
}

// HourlyRecords builds n records for date shaped like countPerHour rows.
func HourlyRecords(date string, n int) []fetcher.Record {
	out := make([]fetcher.Record, n)
	for i := range out {
		out[i] = fetcher.NewRecord("date", date, "hour", i, "count", (i+1)*10)
	}
	return out
}
