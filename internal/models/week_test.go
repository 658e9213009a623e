package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekStart(t *testing.T) {
	start, err := ParseWeekStart("2026-01-04")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, start.Weekday())

	_, err = ParseWeekStart("2026-01-05")
	assert.Error(t, err, "a Monday is not a week anchor")

	_, err = ParseWeekStart("04/01/2026")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("  Wednesday ")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, day)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestDateForDay(t *testing.T) {
	start, err := ParseWeekStart("2026-01-04")
	require.NoError(t, err)

	assert.Equal(t, "2026-01-04", DateForDay(start, Sunday).Format(WeekStartLayout))
	assert.Equal(t, "2026-01-07", DateForDay(start, Wednesday).Format(WeekStartLayout))
	assert.Equal(t, "2026-01-10", DateForDay(start, Saturday).Format(WeekStartLayout))
}

func TestWeekdayIndexOrder(t *testing.T) {
	for i, day := range WeekDays {
		assert.Equal(t, i, day.Index())
	}
	assert.Equal(t, -1, Weekday("noday").Index())
}
