package leave

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newType(unit Unit, mutate ...func(*LeaveType)) LeaveType {
	lt := LeaveType{ID: "lt-" + string(unit), Code: "annual", Name: "Annual", Unit: unit, Active: true}
	for _, m := range mutate {
		m(&lt)
	}
	lt.ApplyDefaults()
	return lt
}

func TestRoundToStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    string
		step string
		mode RoundingMode
		want string
		err  error
	}{
		{name: "exact multiple passes any mode", q: "1.5", step: "0.5", mode: RoundNone, want: "1.5"},
		{name: "none rejects", q: "1.3", step: "0.5", mode: RoundNone, err: ErrRounding},
		{name: "up", q: "1.3", step: "0.5", mode: RoundUp, want: "1.5"},
		{name: "down", q: "1.3", step: "0.5", mode: RoundDown, want: "1"},
		{name: "nearest below half", q: "1.2", step: "0.5", mode: RoundNearest, want: "1"},
		{name: "nearest half away from zero", q: "1.25", step: "0.5", mode: RoundNearest, want: "1.5"},
		{name: "quarter hours", q: "2.1", step: "0.25", mode: RoundUp, want: "2.25"},
		{name: "zero step", q: "1", step: "0", mode: RoundUp, err: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RoundToStep(dec(tt.q), dec(tt.step), tt.mode)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestLeaveType_Validate(t *testing.T) {
	t.Parallel()

	valid := newType(UnitDay)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*LeaveType)
		err    error
	}{
		{name: "bad code", mutate: func(lt *LeaveType) { lt.Code = "Annual Leave" }, err: ErrInvalidLeaveType},
		{name: "missing name", mutate: func(lt *LeaveType) { lt.Name = " " }, err: ErrInvalidLeaveType},
		{name: "unknown unit", mutate: func(lt *LeaveType) { lt.Unit = "WEEK" }, err: ErrInvalidUnit},
		{name: "unknown rounding", mutate: func(lt *LeaveType) { lt.RoundingMode = "BANKERS" }, err: ErrInvalidRoundingMode},
		{name: "unknown timing", mutate: func(lt *LeaveType) { lt.Timing = "LATER" }, err: ErrInvalidTiming},
		{name: "fractional day step", mutate: func(lt *LeaveType) { lt.RoundingStep = dec("0.5") }, err: ErrInvalidLeaveType},
		{name: "half day step not multiple of half", mutate: func(lt *LeaveType) {
			lt.Unit = UnitHalfDay
			lt.RoundingStep = dec("0.25")
		}, err: ErrInvalidLeaveType},
		{name: "hours per day over 24", mutate: func(lt *LeaveType) { lt.HoursPerDay = dec("25") }, err: ErrInvalidLeaveType},
		{name: "negative max", mutate: func(lt *LeaveType) { lt.MaxPerRequest = dec("-1") }, err: ErrInvalidLeaveType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lt := newType(UnitDay)
			tt.mutate(&lt)
			assert.ErrorIs(t, lt.Validate(), tt.err)
		})
	}
}

func TestLeaveType_Quantify(t *testing.T) {
	t.Parallel()

	cal := NewCalendar(DefaultWeekend, []Holiday{
		{Date: MustParseDate("2026-03-04"), Name: "Founders Day"},
	}, []Blackout{
		{Start: MustParseDate("2026-03-30"), End: MustParseDate("2026-03-31"), Reason: "quarter close"},
	})

	businessDays := func(lt *LeaveType) { lt.BusinessDaysOnly = true }

	tests := []struct {
		name      string
		lt        LeaveType
		start     string
		end       string
		requested string
		want      string
		days      int
		err       error
	}{
		{
			name: "full business week minus holiday", lt: newType(UnitDay, businessDays),
			start: "2026-03-02", end: "2026-03-06", want: "4", days: 4,
		},
		{
			name: "calendar days include weekend", lt: newType(UnitDay),
			start: "2026-03-06", end: "2026-03-09", want: "4", days: 4,
		},
		{
			name: "weekend only", lt: newType(UnitDay, businessDays),
			start: "2026-03-07", end: "2026-03-08", err: ErrNoBusinessDays,
		},
		{
			name: "reversed range", lt: newType(UnitDay),
			start: "2026-03-09", end: "2026-03-02", err: ErrInvalidRange,
		},
		{
			name: "blackout", lt: newType(UnitDay),
			start: "2026-03-27", end: "2026-03-30", err: ErrBlackout,
		},
		{
			name: "half day", lt: newType(UnitHalfDay, businessDays),
			start: "2026-03-02", end: "2026-03-02", requested: "0.5", want: "0.5", days: 1,
		},
		{
			name: "half day not on step", lt: newType(UnitHalfDay, businessDays),
			start: "2026-03-02", end: "2026-03-02", requested: "0.3", err: ErrRounding,
		},
		{
			name: "half day rounded up", lt: newType(UnitHalfDay, businessDays, func(lt *LeaveType) { lt.RoundingMode = RoundUp }),
			start: "2026-03-02", end: "2026-03-03", requested: "1.2", want: "1.5", days: 2,
		},
		{
			name: "partial day for day unit", lt: newType(UnitDay),
			start: "2026-03-02", end: "2026-03-03", requested: "1.5", err: ErrRounding,
		},
		{
			name: "more than range", lt: newType(UnitHalfDay),
			start: "2026-03-02", end: "2026-03-02", requested: "1.5", err: ErrExceedsRange,
		},
		{
			name: "hours default to full days", lt: newType(UnitHour, businessDays),
			start: "2026-03-02", end: "2026-03-03", want: "16", days: 2,
		},
		{
			name: "hours with custom day length", lt: newType(UnitHour, func(lt *LeaveType) { lt.HoursPerDay = dec("7.5") }),
			start: "2026-03-02", end: "2026-03-02", requested: "3.25", want: "3.25", days: 1,
		},
		{
			name: "hours rounded down to zero", lt: newType(UnitHour, func(lt *LeaveType) { lt.RoundingMode = RoundDown }),
			start: "2026-03-02", end: "2026-03-02", requested: "0.1", err: ErrInvalidQuantity,
		},
		{
			name: "max per request", lt: newType(UnitDay, func(lt *LeaveType) { lt.MaxPerRequest = dec("3") }),
			start: "2026-03-02", end: "2026-03-06", err: ErrExceedsMaxPerRequest,
		},
		{
			name: "negative request", lt: newType(UnitDay),
			start: "2026-03-02", end: "2026-03-02", requested: "-1", err: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			requested := decimal.Zero
			if tt.requested != "" {
				requested = dec(tt.requested)
			}
			lt := tt.lt
			require.NoError(t, lt.Validate())

			q, err := lt.Quantify(cal, MustParseDate(tt.start), MustParseDate(tt.end), requested)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Quantity.String())
			assert.Equal(t, tt.days, q.ChargeableDays)
		})
	}
}
