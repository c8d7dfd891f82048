package daterange

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s, time.UTC)
	require.NoError(t, err)
	return d
}

func TestComputeRange(t *testing.T) {
	now := time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)

	got := ComputeRange(day(t, "2025-02-01"), now)

	assert.Equal(t, Range{"2025-02-01", "2025-02-02", "2025-02-03", "2025-02-04"}, got)
}

func TestComputeRange_StartAfterYesterdayIsEmpty(t *testing.T) {
	now := time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start string
	}{
		{"start is today", "2025-02-05"},
		{"start in future", "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRange(day(t, tt.start), now)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestComputeRange_StartIsYesterday(t *testing.T) {
	now := time.Date(2025, 2, 5, 0, 0, 1, 0, time.UTC)

	assert.Equal(t, Range{"2025-02-04"}, ComputeRange(day(t, "2025-02-04"), now))
}

func TestComputeRange_CrossesMonthAndYear(t *testing.T) {
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)

	got := ComputeRange(day(t, "2024-12-30"), now)

	assert.Equal(t, Range{"2024-12-30", "2024-12-31", "2025-01-01"}, got)
}

func TestComputeRange_UsesCalendarOfNow(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:00 UTC on the 5th is still the 4th in São Paulo.
	instant := time.Date(2025, 2, 5, 1, 0, 0, 0, time.UTC)

	utc := ComputeRange(day(t, "2025-02-01"), instant)
	local := ComputeRange(day(t, "2025-02-01"), instant.In(saoPaulo))

	assert.Equal(t, "2025-02-04", utc[len(utc)-1])
	assert.Equal(t, "2025-02-03", local[len(local)-1])
	assert.Equal(t, "2025-02-01", local[0])
}

func TestComputeRange_AcrossDSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start, err := ParseDay("2025-03-08", ny)
	require.NoError(t, err)
	now := time.Date(2025, 3, 11, 12, 0, 0, 0, ny)

	assert.Equal(t, Range{"2025-03-08", "2025-03-09", "2025-03-10"}, ComputeRange(start, now))
}

func TestFindGaps(t *testing.T) {
	full := Range{"2025-02-01", "2025-02-02", "2025-02-03", "2025-02-04", "2025-02-05"}
	known := NewSet("2025-02-02", "2025-02-04", "2024-12-31")

	got := FindGaps(full, known)

	assert.Equal(t, Range{"2025-02-01", "2025-02-03", "2025-02-05"}, got)
}

func TestFindGaps_Properties(t *testing.T) {
	full := ComputeRange(
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	)
	knownSets := []Set{
		NewSet(),
		NewSet("2025-02-01"),
		NewSet("2025-02-10", "2025-02-11", "2025-03-14", "2030-01-01"),
		NewSet(full...),
	}

	for _, known := range knownSets {
		gaps := FindGaps(full, known)

		// Subsequence of full, order preserved, nothing known.
		i := 0
		for _, g := range gaps {
			assert.False(t, known.Has(g), "gap %s is known", g)
			for i < len(full) && full[i] != g {
				i++
			}
			require.Less(t, i, len(full), "gap %s not found in order", g)
			i++
		}
		assert.Len(t, gaps, len(full)-countIn(full, known))

		// Merging the gaps into known leaves nothing to fetch.
		merged := known.Union(NewSet(gaps...))
		assert.Empty(t, FindGaps(full, merged))
	}
}

func TestFindGaps_EmptyInputs(t *testing.T) {
	assert.Empty(t, FindGaps(Range{}, NewSet("2025-02-01")))
	assert.Equal(t, Range{"2025-02-01"}, FindGaps(Range{"2025-02-01"}, nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2025-02-01", "2025-02-01", true},
		{" 2025-02-01 ", "2025-02-01", true},
		{"2025-02-01 00:00:00", "2025-02-01", true},
		{"2025-02-01T23:30:00Z", "2025-02-01", true},
		{"2025-02-01T23:30:00-03:00", "2025-02-01", true},
		{"2025/02/01", "2025-02-01", true},
		{"01/02/2025", "", false},
		{"", "", false},
		{"yesterday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func countIn(full Range, known Set) int {
	n := 0
	for _, d := range full {
		if known.Has(d) {
			n++
		}
	}
	return n
}
