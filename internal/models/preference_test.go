package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDays(t *testing.T) {
	days := NormalizeDays(map[string][]string{
		"Monday":  {"b-slot", "a-slot", "b-slot", ""},
		"someday": {"x-slot"},
	})

	// every weekday is present even when absent from the input
	require.Len(t, days, len(WeekDays))
	assert.Equal(t, []string{"a-slot", "b-slot"}, days[Monday])
	assert.Empty(t, days[Tuesday])
}

func TestDecodeDaysTolerantOfEmptyPayload(t *testing.T) {
	sub := &PreferenceSubmission{}
	days, err := sub.DecodeDays()
	require.NoError(t, err)
	assert.Len(t, days, len(WeekDays))

	sub.Days = []byte(`{"friday":["front-morning"]}`)
	days, err = sub.DecodeDays()
	require.NoError(t, err)
	assert.Equal(t, []string{"front-morning"}, days[Friday])

	sub.Days = []byte(`not json`)
	_, err = sub.DecodeDays()
	assert.Error(t, err)
}

func TestDecodeLongShiftDaysDefaultsFalse(t *testing.T) {
	sub := &PreferenceSubmission{LongShiftDays: []byte(`{"monday":true,"someday":true}`)}
	optIns, err := sub.DecodeLongShiftDays()
	require.NoError(t, err)
	assert.True(t, optIns[Monday])
	assert.False(t, optIns[Tuesday])
	require.Len(t, optIns, len(WeekDays))
}

func TestEncodeDaysRoundTrip(t *testing.T) {
	days := NormalizeDays(map[string][]string{"monday": {"front-morning"}})
	encoded, err := EncodeDays(days)
	require.NoError(t, err)

	sub := &PreferenceSubmission{Days: encoded}
	decoded, err := sub.DecodeDays()
	require.NoError(t, err)
	assert.Equal(t, days, decoded)
}
