// Package knowndates loads the days a downstream store already holds, so the
// backfill only requests the missing ones.
package knowndates

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/miqueiast/vendas-amazon/internal/daterange"
)

// Source yields a set of known days.
type Source interface {
	Load(ctx context.Context) (daterange.Set, error)
	Name() string
}

// Static is a fixed list of days, e.g. from configuration.
type Static []string

// Load implements Source
func (s Static) Load(_ context.Context) (daterange.Set, error) {
	return normalizeAll(s, s.Name()), nil
}

// Name implements Source
func (s Static) Name() string { return "static" }

// Multi is the union of several sources. A failing source fails the whole load.
type Multi []Source

// Load implements Source
func (m Multi) Load(ctx context.Context) (daterange.Set, error) {
	known := daterange.NewSet()
	for _, src := range m {
		set, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading known dates from %s: %w", src.Name(), err)
		}
		slog.Debug("loaded known dates", "source", src.Name(), "count", len(set))
		known = known.Union(set)
	}
	return known, nil
}

// Name implements Source
func (m Multi) Name() string { return "multi" }

// normalizeAll converts raw values to days, logging and dropping the ones that
// are not dates.
func normalizeAll(values []string, source string) daterange.Set {
	set := daterange.NewSet()
	for _, v := range values {
		d, ok := daterange.Normalize(v)
		if !ok {
			slog.Warn("ignoring known date that is not a date", "source", source, "value", v)
			continue
		}
		set[d] = struct{}{}
	}
	return set
}
