package timefmt_test

import (
	"testing"
	"time"

	"go-hris-leave/internal/shared/timefmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedFormatter(t *testing.T, now time.Time) *timefmt.Formatter {
	t.Helper()
	f := timefmt.New(now.Location())
	f.Now = func() time.Time { return now }
	return f
}

func TestFormatter_Format(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	now := time.Date(2025, 9, 16, 9, 30, 0, 0, loc)
	f := fixedFormatter(t, now)

	t.Run("same day has no leading zero", func(t *testing.T) {
		ts := now.Add(-10 * time.Minute)

		got := f.Format(&ts)

		require.NotNil(t, got)
		assert.Equal(t, "9:20 AM", got.Display)
		assert.Empty(t, got.Date)
		assert.Empty(t, got.Time)
	})

	t.Run("afternoon", func(t *testing.T) {
		later := time.Date(2025, 9, 16, 23, 5, 0, 0, loc)
		f := fixedFormatter(t, later)
		ts := time.Date(2025, 9, 16, 13, 7, 0, 0, loc)

		assert.Equal(t, "1:07 PM", f.Format(&ts).Display)
	})

	t.Run("previous calendar day is yesterday even under 24h", func(t *testing.T) {
		ts := time.Date(2025, 9, 15, 23, 50, 0, 0, loc)

		got := f.Format(&ts)

		assert.Equal(t, &timefmt.Relative{Date: "Yesterday", Time: "11:50 PM"}, got)
	})

	t.Run("older dates", func(t *testing.T) {
		ts := time.Date(2025, 9, 1, 8, 0, 0, 0, loc)

		got := f.Format(&ts)

		assert.Equal(t, &timefmt.Relative{Date: "01 September, 2025", Time: "8:00 AM"}, got)
	})

	t.Run("utc input is converted before comparing days", func(t *testing.T) {
		// 2025-09-15 20:00 UTC is 2025-09-16 01:30 in Kolkata.
		ts := time.Date(2025, 9, 15, 20, 0, 0, 0, time.UTC)

		assert.Equal(t, "1:30 AM", f.Format(&ts).Display)
	})

	t.Run("nil is nil", func(t *testing.T) {
		assert.Nil(t, f.Format(nil))
	})
}
