package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalendar(t *testing.T) {
	// 2026 年 6 月 1 号是周一
	cal, err := NewCalendar(2026, 6, []int32{19})
	require.NoError(t, err)

	assert.Equal(t, int32(30), cal.NumDays)
	assert.Equal(t, []int32{6, 7, 13, 14, 20, 21, 27, 28}, cal.WeekendDays)
	assert.Equal(t, []int32{19}, cal.HolidayDays)

	assert.True(t, cal.IsDoublePointDay(6))
	assert.True(t, cal.IsDoublePointDay(19))
	assert.False(t, cal.IsDoublePointDay(1))

	assert.Equal(t, int32(2), cal.PointsOfDay(7))
	assert.Equal(t, int32(2), cal.PointsOfDay(19))
	assert.Equal(t, int32(1), cal.PointsOfDay(2))

	assert.Equal(t, "2026-06", cal.MonthKey())
}

func TestNewCalendarLeapFebruary(t *testing.T) {
	cal, err := NewCalendar(2024, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(29), cal.NumDays)
}

func TestNewCalendarRejectsBadInput(t *testing.T) {
	_, err := NewCalendar(2026, 13, nil)
	assert.Error(t, err)

	_, err = NewCalendar(2026, 6, []int32{31})
	assert.Error(t, err)
}

func TestParseMonthKey(t *testing.T) {
	year, month, err := ParseMonthKey("2026-06")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 6, month)

	for _, bad := range []string{"", "2026-13", "2026-6", "2026/06", "abcd-ef", "2026-06-01"} {
		_, _, err := ParseMonthKey(bad)
		assert.Error(t, err, "月份键 %q 应被拒绝", bad)
	}
}

func TestParseArea(t *testing.T) {
	for _, s := range []string{"A", "B", "C", "I"} {
		area, err := ParseArea(s)
		require.NoError(t, err)
		assert.Equal(t, Area(s), area)
	}

	_, err := ParseArea("D")
	assert.Error(t, err)

	assert.True(t, AreaI.IsElite())
	assert.False(t, AreaA.IsElite())
}
