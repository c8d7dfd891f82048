package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/pflag"

	"github.com/miqueiast/vendas-amazon/internal/analytics"
	"github.com/miqueiast/vendas-amazon/internal/config"
	"github.com/miqueiast/vendas-amazon/internal/coordinator"
	"github.com/miqueiast/vendas-amazon/internal/logging"
	"github.com/miqueiast/vendas-amazon/internal/pipeline"
	"github.com/miqueiast/vendas-amazon/internal/ratelimit"
	"github.com/miqueiast/vendas-amazon/internal/sink"
)

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one backfill and returns the process exit code: 0 when every
// gap date was attempted, 1 on configuration, known-dates or output failures.
// A run interrupted by a signal or RUN_TIMEOUT still writes the rows fetched so
// far, then returns 1; the dates it did not reach remain gaps for the next run.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", "error", err)
		return 1
	}
	start, err := cfg.Start(loc)
	if err != nil {
		logger.Error("invalid start date", "error", err)
		return 1
	}

	format, err := sink.ParseFormat(cfg.OutputFormat, cfg.OutputPath)
	if err != nil {
		logger.Error("invalid output format", "error", err)
		return 1
	}

	counts, err := analytics.NewCountFetcher(analytics.Options{
		BaseURL: cfg.BaseURL,
		Credentials: analytics.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		EventType: cfg.EventType,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		return 1
	}

	coord := coordinator.New(counts,
		coordinator.WithConcurrency(cfg.Concurrency),
		coordinator.WithLimiter(ratelimit.New(cfg.RequestsPerSecond, 1)),
	)

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	fmt.Fprintln(stdout, "Backfilling countPerHour...")
	report, err := pipeline.Run(ctx, pipeline.Options{
		Start:       start,
		Known:       cfg.KnownDatesSource(),
		Coordinator: coord,
		Destination: sink.Destination{Path: cfg.OutputPath, Format: format},
	})
	if err != nil {
		logger.Error("backfill failed", "run", report, "error", err)
		return 1
	}

	report.Print(stdout)
	if report.Interrupted() {
		logger.Warn("backfill interrupted, output is partial", "run", report)
		return 1
	}
	logger.Info("backfill finished", "run", report)
	return 0
}
