package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/miqueiast/vendas-amazon/internal/fetcher"
)

const rule = "================================================"

// Interrupted reports whether the run context ended before every gap date
// was fetched. The output then holds only the dates fetched so far.
func (r Report) Interrupted() bool {
	for _, s := range r.Skipped {
		if s.Reason == string(fetcher.ErrorTypeCanceled) {
			return true
		}
	}
	return false
}

// Print writes a human-readable summary of r to w.
func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	if r.InRange == 0 {
		fmt.Fprintln(w, "Range:     empty (start date is not before today)")
	} else {
		fmt.Fprintf(w, "Range:     %s .. %s (%d days)\n", r.First, r.Last, r.InRange)
	}
	fmt.Fprintf(w, "Known:     %d\n", r.Known)
	fmt.Fprintf(w, "Attempted: %d\n", r.Attempted)
	fmt.Fprintf(w, "Fetched:   %d\n", r.Fetched)
	fmt.Fprintf(w, "Skipped:   %d\n", len(r.Skipped))
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "  %s  %s\n", s.Date, s.Reason)
	}
	fmt.Fprintln(w, rule)
	if r.Output.Written {
		fmt.Fprintf(w, "Wrote %d rows x %d columns to %s (%s)\n",
			r.Output.Rows, r.Output.Columns, r.Output.Path, r.Output.Format)
	} else {
		reason := r.Output.Reason
		if reason == "" {
			reason = "not written"
		}
		fmt.Fprintf(w, "No output: %s\n", reason)
	}
	if r.Interrupted() {
		fmt.Fprintln(w, "Interrupted: canceled dates stay gaps for the next run")
	}
	fmt.Fprintf(w, "Took %s\n", r.Duration.Round(time.Millisecond))
}

// LogValue renders the report as a single structured log group.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.String("first", r.First),
		slog.String("last", r.Last),
		slog.Int("in_range", r.InRange),
		slog.Int("known", r.Known),
		slog.Int("attempted", r.Attempted),
		slog.Int("fetched", r.Fetched),
		slog.Int("skipped", len(r.Skipped)),
		slog.Int("rows", r.Rows),
		slog.Bool("written", r.Output.Written),
		slog.Bool("interrupted", r.Interrupted()),
		slog.String("output", r.Output.Path),
		slog.Duration("duration", r.Duration),
	)
}
