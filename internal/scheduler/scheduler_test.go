package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"15:45", 15, 45, true},
		{"00:00", 0, 0, true},
		{"23:59", 23, 59, true},
		{"7:30", 0, 0, false},
		{"24:00", 0, 0, false},
		{"15:60", 0, 0, false},
		{"lunch", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tc := range cases {
		hour, minute, err := ParseClock(tc.in)
		if !tc.ok {
			require.Error(t, err, "input=%q", tc.in)
			continue
		}
		require.NoError(t, err, "input=%q", tc.in)
		require.Equal(t, tc.hour, hour, "input=%q", tc.in)
		require.Equal(t, tc.minute, minute, "input=%q", tc.in)
	}
}

func TestWeekdaySpec(t *testing.T) {
	require.Equal(t, "45 15 * * 1-5", weekdaySpec(15, 45))
	require.Equal(t, "0 20 * * 1-5", weekdaySpec(20, 0))
}

func TestSetStanddownTime_RequiresScheduledJob(t *testing.T) {
	s := New(time.UTC, zap.NewNop())

	_, err := s.SetStanddownTime(10, 0)
	require.Error(t, err)
}

func TestSetStanddownTime_ReplacesEntry(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	require.NoError(t, s.ScheduleStanddown(15, 45, func() {}))

	next, err := s.SetStanddownTime(9, 30)
	require.NoError(t, err)
	require.False(t, next.IsZero())
	require.Equal(t, 30, next.Minute())
	require.Equal(t, 9, next.Hour())
	// Run only on weekdays.
	require.NotEqual(t, time.Saturday, next.Weekday())
	require.NotEqual(t, time.Sunday, next.Weekday())
}

func TestScheduleWeekday_RejectsBadSpec(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	require.Error(t, s.Schedule("not a cron spec", func() {}))
	require.NoError(t, s.ScheduleWeekday(20, 0, func() {}))
}
