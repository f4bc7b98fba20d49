package contract

import (
	"testing"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 30, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	t.Run("empty is unbounded", func(t *testing.T) {
		got, err := ParseDate("  ")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("calendar date", func(t *testing.T) {
		got, err := ParseDate("2024-02-29")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.Local), *got)
	})

	t.Run("relative date", func(t *testing.T) {
		got, err := ParseDate("3 days ago")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, StartOfDay(time.Now().AddDate(0, 0, -3)), *got)
	})

	for _, bad := range []string{"2024/01/01", "01-02-2024", "2023-02-30", "yesterday"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			got, err := ParseDate(bad)
			assert.Nil(t, got)
			require.ErrorIs(t, err, schema.ErrInvalidDate)
			assert.Contains(t, err.Error(), "Please use YYYY-MM-DD")
		})
	}
}

func TestParseRelativeDate(t *testing.T) {
	midnight := StartOfDay(fixedNow)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"1 day ago", midnight.AddDate(0, 0, -1)},
		{"2 Weeks Ago", midnight.AddDate(0, 0, -14)},
		{"3 MONTHS AGO", midnight.AddDate(0, -3, 0)},
		{"1 year ago", midnight.AddDate(-1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRelativeDate(tt.input, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"2 years", "4 decades ago", "one day ago", ""} {
		_, err := ParseRelativeDate(bad, fixedNow)
		assert.Error(t, err, bad)
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	tm := time.Date(2024, time.December, 31, 23, 59, 59, 0, loc)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, loc), StartOfDay(tm))
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, loc), StartOfNextDay(tm))
}

func FuzzParseDate(f *testing.F) {
	for _, seed := range []string{"2024-01-01", "10 days ago", "", "not a date", "9999-99-99"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseDate(s)
		if err != nil {
			assert.Nil(t, got)
			assert.ErrorIs(t, err, schema.ErrInvalidDate)
		}
	})
}
