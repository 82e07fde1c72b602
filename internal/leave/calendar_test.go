package leave

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar_BusinessDays(t *testing.T) {
	t.Parallel()

	cal := NewCalendar(DefaultWeekend, []Holiday{
		{Date: MustParseDate("2026-03-04"), Name: "Founders Day"},
	}, nil)

	// Mon 2 .. Mon 9 March 2026, minus the weekend and the Wednesday holiday.
	days := cal.BusinessDays(MustParseDate("2026-03-02"), MustParseDate("2026-03-09"))

	var got []string
	for _, d := range days {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"2026-03-02", "2026-03-03", "2026-03-05", "2026-03-06", "2026-03-09"}, got)

	name, ok := cal.Holiday(MustParseDate("2026-03-04"))
	assert.True(t, ok)
	assert.Equal(t, "Founders Day", name)
	assert.False(t, cal.IsBusinessDay(MustParseDate("2026-03-07")))
}

func TestCalendar_CustomWeekend(t *testing.T) {
	t.Parallel()

	cal := NewCalendar([]time.Weekday{time.Friday, time.Saturday}, nil, nil)

	assert.False(t, cal.IsBusinessDay(MustParseDate("2026-03-06")))
	assert.True(t, cal.IsBusinessDay(MustParseDate("2026-03-08")))
}

func TestCalendar_CheckBlackout(t *testing.T) {
	t.Parallel()

	cal := NewCalendar(DefaultWeekend, nil, []Blackout{
		{ID: "b1", Start: MustParseDate("2026-12-20"), End: MustParseDate("2026-12-31"), Reason: "year-end close"},
		{ID: "b2", LeaveTypeID: "vac", Start: MustParseDate("2026-07-01"), End: MustParseDate("2026-07-03"), Reason: "audit"},
	})

	tests := []struct {
		name    string
		typeID  string
		start   string
		end     string
		blocked bool
	}{
		{name: "before global blackout", typeID: "vac", start: "2026-12-14", end: "2026-12-19"},
		{name: "straddles global start", typeID: "sick", start: "2026-12-18", end: "2026-12-21", blocked: true},
		{name: "inside global", typeID: "vac", start: "2026-12-24", end: "2026-12-24", blocked: true},
		{name: "typed blackout hits its type", typeID: "vac", start: "2026-07-03", end: "2026-07-06", blocked: true},
		{name: "typed blackout skips other type", typeID: "sick", start: "2026-07-01", end: "2026-07-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := cal.CheckBlackout(tt.typeID, MustParseDate(tt.start), MustParseDate(tt.end))
			if tt.blocked {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrBlackout))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	wd, err := ParseWeekday("Sat")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, wd)

	wd, err = ParseWeekday("friday")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, wd)

	_, err = ParseWeekday("someday")
	require.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	d := MustParseDate("2026-02-28")
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-02-28"`, string(data))

	var back Date
	require.NoError(t, back.UnmarshalJSON(data))
	assert.True(t, back.Equal(d))

	require.NoError(t, back.UnmarshalJSON([]byte("null")))
	assert.True(t, back.IsZero())

	assert.ErrorIs(t, back.UnmarshalJSON([]byte(`"28/02/2026"`)), ErrInvalidDate)
	assert.Equal(t, 3, MustParseDate("2026-02-27").DaysUntil(MustParseDate("2026-03-01")))
}
