package dateutil

import (
	"testing"
	"time"

	"retail-backoffice/internal/apperr"

	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	t.Run("bare days", func(t *testing.T) {
		start, end, err := ParseRange("2025-03-01", "2025-03-02")
		require.NoError(t, err)
		require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *start)
		// The end bound covers the whole day.
		require.True(t, end.After(time.Date(2025, 3, 2, 23, 59, 59, 0, time.UTC)))
		require.True(t, end.Before(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("rfc3339 kept as given", func(t *testing.T) {
		start, end, err := ParseRange("2025-03-01T08:30:00Z", "2025-03-01T17:00:00+02:00")
		require.NoError(t, err)
		require.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), *start)
		require.Equal(t, time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC), *end)
	})

	t.Run("empty bounds are unbounded", func(t *testing.T) {
		start, end, err := ParseRange("", "")
		require.NoError(t, err)
		require.Nil(t, start)
		require.Nil(t, end)

		start, end, err = ParseRange("2025-03-01", "")
		require.NoError(t, err)
		require.NotNil(t, start)
		require.Nil(t, end)
	})

	t.Run("malformed input", func(t *testing.T) {
		for _, bad := range []string{"03/01/2025", "yesterday", "2025-13-01", "2025-02-30", "20250301"} {
			_, _, err := ParseRange(bad, "")
			require.Error(t, err, "input %q", bad)
			require.Equal(t, apperr.KindInvalidDate, apperr.KindOf(err))

			_, _, err = ParseRange("", bad)
			require.Error(t, err, "input %q", bad)
			require.Equal(t, apperr.KindInvalidDate, apperr.KindOf(err))
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		_, _, err := ParseRange("2025-03-02", "2025-03-01")
		require.Equal(t, apperr.KindInvalidDate, apperr.KindOf(err))
	})

	t.Run("same day is a valid range", func(t *testing.T) {
		start, end, err := ParseRange("2025-03-01", "2025-03-01")
		require.NoError(t, err)
		require.True(t, start.Before(*end))
	})
}

func TestDayKey(t *testing.T) {
	require.Equal(t, "2025-03-01", DayKey(time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)))
	// A local time east of UTC can fall on the previous UTC day.
	loc := time.FixedZone("UTC+5", 5*3600)
	require.Equal(t, "2025-02-28", DayKey(time.Date(2025, 3, 1, 2, 0, 0, 0, loc)))
}
