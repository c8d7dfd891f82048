// Package pipeline runs one backfill: it computes the missing days, fetches
// them, accumulates the rows and writes the output file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/miqueiast/vendas-amazon/internal/coordinator"
	"github.com/miqueiast/vendas-amazon/internal/daterange"
	"github.com/miqueiast/vendas-amazon/internal/knowndates"
	"github.com/miqueiast/vendas-amazon/internal/sink"
	"github.com/miqueiast/vendas-amazon/internal/table"
)

// Options wires the stages of a run.
type Options struct {
	// Start is the first day of the range. Its location defines the calendar.
	Start time.Time

	// Now returns the current instant; time.Now when nil.
	Now func() time.Time

	// Known lists the days already stored downstream. Nil means none.
	Known knowndates.Source

	Coordinator *coordinator.Coordinator
	Destination sink.Destination
}

// Skip is a gap date that contributed no rows.
type Skip struct {
	Date   string
	Reason string
	Err    error
}

// Report summarizes a run.
type Report struct {
	RunID string

	// First and Last bound the computed range; both are empty when the range is.
	First string
	Last  string

	InRange   int
	Known     int
	Attempted int
	Fetched   int
	Skipped   []Skip

	Rows   int
	Output sink.Outcome

	StartedAt time.Time
	Duration  time.Duration
}

// Run executes the backfill once. Per-date failures end up in Report.Skipped;
// only known-dates and output failures are returned as errors.
func Run(ctx context.Context, opts Options) (report Report, err error) {
	report = Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	if opts.Coordinator == nil {
		return report, errors.New("pipeline: no coordinator configured")
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	loc := opts.Start.Location()

	full := daterange.ComputeRange(opts.Start, now().In(loc))
	report.InRange = len(full)
	if len(full) > 0 {
		report.First, report.Last = full[0], full[len(full)-1]
	}

	known := daterange.NewSet()
	if opts.Known != nil {
		set, err := opts.Known.Load(ctx)
		if err != nil {
			return report, err
		}
		known = set
	}

	gaps := daterange.FindGaps(full, known)
	report.Known = len(full) - len(gaps)
	report.Attempted = len(gaps)

	slog.Info("backfill range computed",
		slog.String("run_id", report.RunID),
		slog.String("first", report.First),
		slog.String("last", report.Last),
		slog.Int("in_range", report.InRange),
		slog.Int("known", report.Known),
		slog.Int("gaps", len(gaps)))

	results, err := opts.Coordinator.Run(ctx, gaps)
	if err != nil {
		return report, fmt.Errorf("fetching gap dates: %w", err)
	}

	for _, r := range results {
		if r.OK() {
			report.Fetched++
			continue
		}
		report.Skipped = append(report.Skipped, Skip{Date: r.Date, Reason: r.SkipReason(), Err: r.Err})
	}

	t := table.Accumulate(results)
	report.Rows = t.Len()

	report.Output, err = sink.Write(t, opts.Destination)
	return report, err
}
