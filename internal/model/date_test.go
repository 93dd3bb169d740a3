package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate_RejectsOutOfCalendar(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
		ok    bool
	}{
		{1990, time.January, 1, true},
		{2024, time.February, 29, true},
		{2023, time.February, 29, false},
		{1990, time.February, 30, false},
		{1990, time.April, 31, false},
		{1990, time.Month(13), 1, false},
		{1990, time.January, 0, false},
	}
	for _, tt := range tests {
		_, err := NewDate(tt.year, tt.month, tt.day)
		if tt.ok {
			assert.NoError(t, err, "%d-%d-%d", tt.year, tt.month, tt.day)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidDate, "%d-%d-%d", tt.year, tt.month, tt.day)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1957-04-11")
	require.NoError(t, err)
	assert.Equal(t, "1957-04-11", d.String())

	for _, in := range []string{"", "1957-4-11", "11/04/1957", "1990-02-30", "garbage"} {
		_, err := ParseDate(in)
		var dateErr *InvalidDateError
		if assert.True(t, errors.As(err, &dateErr), "input %q", in) {
			assert.Equal(t, in, dateErr.Input)
		}
	}
}

func TestDateOf_DropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	d := DateOf(time.Date(2025, time.March, 9, 23, 59, 0, 0, loc))
	assert.Equal(t, "2025-03-09", d.String())
	assert.True(t, d.Equal(MustDate(2025, time.March, 9)))
}

func TestDaysSince(t *testing.T) {
	a := MustDate(1990, time.January, 1)
	b := MustDate(1991, time.January, 1)
	assert.Equal(t, 365, b.DaysSince(a))
	assert.Equal(t, -365, a.DaysSince(b))
	assert.Equal(t, 0, a.DaysSince(a))
	assert.Equal(t, 366, MustDate(2025, time.January, 1).DaysSince(MustDate(2024, time.January, 1)))
}

func TestDaysSince_Centuries(t *testing.T) {
	birth := MustDate(1700, time.January, 1)
	end := MustDate(2026, time.January, 1)
	assert.Equal(t, 119069, end.DaysSince(birth))
	assert.Equal(t, -119069, birth.DaysSince(end))
	assert.Equal(t, 3652058, MustDate(9999, time.December, 31).DaysSince(MustDate(1, time.January, 1)))

	r := DateRange{Start: birth, End: end}
	assert.Equal(t, 119070, r.Days())
}

func TestDate_Validate(t *testing.T) {
	assert.ErrorIs(t, Date{}.Validate(), ErrInvalidDate)
	assert.NoError(t, MustDate(2000, time.January, 1).Validate())
}

func TestDate_FirstCalendarDay(t *testing.T) {
	d, err := ParseDate("0001-01-01")
	require.NoError(t, err)
	assert.False(t, d.IsZero())
	assert.NoError(t, d.Validate())
	assert.Equal(t, "0001-01-01", d.String())
	assert.Equal(t, "0001-01-02", d.AddDays(1).String())

	assert.True(t, Date{}.IsZero())
	assert.True(t, Date{}.AddDays(3).IsZero())
}

func TestDate_JSON(t *testing.T) {
	r := DailyReading{Date: MustDate(1990, time.January, 2), Physical: 0.5}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"date":"1990-01-02"`)

	var back DailyReading
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Date.Equal(r.Date))

	err = json.Unmarshal([]byte(`{"date":"1990-13-01"}`), &back)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: MustDate(2024, time.February, 28), End: MustDate(2024, time.March, 1)}
	assert.Equal(t, 3, r.Days())
	assert.True(t, r.Contains(MustDate(2024, time.February, 29)))
	assert.False(t, r.Contains(MustDate(2024, time.March, 2)))
}

func TestSeries_Find(t *testing.T) {
	start := MustDate(2024, time.January, 1)
	s := Series{{Date: start}, {Date: start.AddDays(1), Average: 0.5}}
	r, ok := s.Find(start.AddDays(1))
	assert.True(t, ok)
	assert.Equal(t, 0.5, r.Average)
	_, ok = s.Find(start.AddDays(2))
	assert.False(t, ok)
	_, ok = Series(nil).Find(start)
	assert.False(t, ok)
}
