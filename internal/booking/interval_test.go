package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustInterval(t *testing.T, start, end time.Time) Interval {
	iv, err := NewInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestNewInterval_EndBeforeStart(t *testing.T) {
	_, err := NewInterval(date(2025, 2, 1), date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewInterval_NormalizesTimeOfDay(t *testing.T) {
	iv, err := NewInterval(
		time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 10), iv.Start)
	assert.Equal(t, date(2025, 1, 10), iv.End)
	assert.Equal(t, 1, iv.Days())
}

func TestInterval_Overlaps(t *testing.T) {
	base := mustInterval(t, date(2025, 1, 10), date(2025, 2, 9))

	cases := []struct {
		name     string
		other    Interval
		overlaps bool
	}{
		{"disjoint before", mustInterval(t, date(2025, 1, 1), date(2025, 1, 9)), false},
		{"disjoint after", mustInterval(t, date(2025, 2, 10), date(2025, 2, 28)), false},
		{"partial left", mustInterval(t, date(2025, 1, 1), date(2025, 1, 10)), true},
		{"partial right", mustInterval(t, date(2025, 2, 9), date(2025, 2, 28)), true},
		{"contained within", mustInterval(t, date(2025, 1, 15), date(2025, 1, 20)), true},
		{"contains", mustInterval(t, date(2025, 1, 1), date(2025, 3, 1)), true},
		{"identical", base, true},
		{"single shared day", mustInterval(t, date(2025, 2, 9), date(2025, 2, 9)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlaps, base.Overlaps(tc.other))
			// the predicate is symmetric
			assert.Equal(t, tc.overlaps, tc.other.Overlaps(base))
		})
	}
}

func TestInterval_Days(t *testing.T) {
	assert.Equal(t, 31, mustInterval(t, date(2025, 1, 10), date(2025, 2, 9)).Days())
	assert.Equal(t, 1, mustInterval(t, date(2025, 1, 10), date(2025, 1, 10)).Days())
	assert.Equal(t, 30, mustInterval(t, date(2025, 1, 1), date(2025, 1, 30)).Days())
}

func TestInterval_Months(t *testing.T) {
	// 31 days round up to two 30-day months
	assert.Equal(t, int64(2), mustInterval(t, date(2025, 1, 10), date(2025, 2, 9)).Months())
	assert.Equal(t, int64(1), mustInterval(t, date(2025, 1, 1), date(2025, 1, 30)).Months())
	assert.Equal(t, int64(1), mustInterval(t, date(2025, 1, 1), date(2025, 1, 1)).Months())
	assert.Equal(t, int64(2), mustInterval(t, date(2025, 1, 1), date(2025, 1, 31)).Months())
}
