package knowndates

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/miqueiast/vendas-amazon/internal/daterange"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// DefaultQuery selects the days already loaded into the downstream table.
const DefaultQuery = "SELECT DISTINCT data FROM api_count_per_hour"

// SQLite reads known days from the first column of a query against a SQLite
// database.
type SQLite struct {
	Path  string
	Query string
}

// Load implements Source
func (s SQLite) Load(ctx context.Context) (daterange.Set, error) {
	// sql.Open would create a missing database file.
	if _, err := os.Stat(s.Path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := s.Query
	if query == "" {
		query = DefaultQuery
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying known dates: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning known date: %w", err)
		}
		switch x := v.(type) {
		case nil:
			continue
		case time.Time:
			values = append(values, x.Format(daterange.Layout))
		case []byte:
			values = append(values, string(x))
		default:
			values = append(values, fmt.Sprint(x))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return normalizeAll(values, s.Name()), nil
}

// Name implements Source
func (s SQLite) Name() string { return "sqlite:" + s.Path }
