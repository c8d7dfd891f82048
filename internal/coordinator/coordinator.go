package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/iter"

	"github.com/miqueiast/vendas-amazon/internal/fetcher"
	"github.com/miqueiast/vendas-amazon/internal/ratelimit"
)

// Coordinator runs one fetcher over a list of dates and collects a result per date.
type Coordinator struct {
	fetcher     fetcher.Fetcher
	concurrency int
	limiter     *ratelimit.Limiter
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConcurrency caps the number of requests in flight. Values below 2 keep
// the default sequential mode.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		c.concurrency = n
	}
}

// WithLimiter paces requests through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Coordinator) {
		c.limiter = l
	}
}

// New creates a new Coordinator for the given fetcher
func New(f fetcher.Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     f,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run fetches every date and returns one result per date, in the order of dates.
// A failing date never stops the others; its error is kept in the result.
// Once ctx is done the remaining dates are reported as canceled.
func (c *Coordinator) Run(ctx context.Context, dates []string) ([]fetcher.Result, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}

	if !c.limiter.Unlimited() && len(dates) > 0 {
		slog.Info("pacing requests",
			"fetcher", c.fetcher.Key(),
			"dates", len(dates),
			"concurrency", c.concurrency)
	}

	if c.concurrency <= 1 {
		results := make([]fetcher.Result, 0, len(dates))
		for _, date := range dates {
			results = append(results, c.fetchOne(ctx, date))
		}
		return results, nil
	}

	// Mapper writes each result at its input index, so order does not depend
	// on completion time.
	mapper := iter.Mapper[string, fetcher.Result]{MaxGoroutines: c.concurrency}
	return mapper.Map(dates, func(date *string) fetcher.Result {
		return c.fetchOne(ctx, *date)
	}), nil
}

func (c *Coordinator) fetchOne(ctx context.Context, date string) fetcher.Result {
	if err := ctx.Err(); err != nil {
		return fetcher.Result{Date: date, Err: fetcher.NewCanceledError(err)}
	}
	if !c.limiter.Unlimited() {
		if err := c.limiter.Wait(ctx); err != nil {
			return fetcher.Result{Date: date, Err: fetcher.NewCanceledError(err)}
		}
	}

	records, err := c.fetcher.Fetch(ctx, date)
	if err != nil {
		err = fetcher.ClassifyTransportError(err)
		level := slog.LevelWarn
		if fetcher.TypeOf(err) == fetcher.ErrorTypeNoData {
			level = slog.LevelInfo
		}
		slog.Log(ctx, level, "date skipped",
			"fetcher", c.fetcher.Key(),
			"date", date,
			"reason", fetcher.TypeOf(err),
			"error", err.Error())
		return fetcher.Result{Date: date, Err: err}
	}

	slog.Debug("date fetched",
		"fetcher", c.fetcher.Key(),
		"date", date,
		"records", len(records))

	return fetcher.Result{Date: date, Records: records}
}
