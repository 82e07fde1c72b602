package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundToStep snaps q to a multiple of step according to mode. RoundNone
// rejects quantities that are not already a multiple.
func RoundToStep(q, step decimal.Decimal, mode RoundingMode) (decimal.Decimal, error) {
	if !step.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: rounding step must be positive", ErrInvalidQuantity)
	}
	multiples := q.Div(step)
	if multiples.IsInteger() {
		return q, nil
	}
	switch mode {
	case RoundUp:
		return multiples.Ceil().Mul(step), nil
	case RoundDown:
		return multiples.Floor().Mul(step), nil
	case RoundNearest:
		return multiples.Round(0).Mul(step), nil
	case RoundNone:
		return decimal.Zero, fmt.Errorf("%w: %s is not a multiple of %s", ErrRounding, q, step)
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidRoundingMode, mode)
	}
}

// Quote is the resolved charge for a date range.
type Quote struct {
	Start          Date            `json:"start"`
	End            Date            `json:"end"`
	ChargeableDays int             `json:"chargeable_days"`
	Capacity       decimal.Decimal `json:"capacity"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           Unit            `json:"unit"`
}

// Quantify validates a requested range and quantity against the leave type's
// unit, rounding and calendar rules. A zero requested quantity charges the whole
// range.
func (lt *LeaveType) Quantify(cal *Calendar, start, end Date, requested decimal.Decimal) (Quote, error) {
	q := Quote{Start: start, End: end, Unit: lt.Unit}

	if start.IsZero() || end.IsZero() {
		return q, fmt.Errorf("%w: start and end are required", ErrInvalidDate)
	}
	if end.Before(start) {
		return q, ErrInvalidRange
	}
	if requested.IsNegative() {
		return q, fmt.Errorf("%w: %s", ErrInvalidQuantity, requested)
	}
	if err := cal.CheckBlackout(lt.ID, start, end); err != nil {
		return q, err
	}

	if lt.BusinessDaysOnly {
		q.ChargeableDays = len(cal.BusinessDays(start, end))
	} else {
		q.ChargeableDays = start.DaysUntil(end)
	}
	if q.ChargeableDays == 0 {
		return q, fmt.Errorf("%w: %s to %s", ErrNoBusinessDays, start, end)
	}

	q.Capacity = decimal.NewFromInt(int64(q.ChargeableDays))
	if lt.Unit == UnitHour {
		q.Capacity = q.Capacity.Mul(lt.HoursPerDay)
	}

	qty := requested
	if qty.IsZero() {
		qty = q.Capacity
	}

	qty, err := RoundToStep(qty, lt.RoundingStep, lt.RoundingMode)
	if err != nil {
		return q, err
	}
	if lt.Unit == UnitDay && !qty.IsInteger() {
		return q, fmt.Errorf("%w: DAY leave must be whole days, got %s", ErrRounding, qty)
	}
	if !qty.IsPositive() {
		return q, fmt.Errorf("%w: rounds to %s", ErrInvalidQuantity, qty)
	}
	if qty.GreaterThan(q.Capacity) {
		return q, fmt.Errorf("%w: %s > %s %s", ErrExceedsRange, qty, q.Capacity, UnitLabel(lt.Unit))
	}
	if lt.MaxPerRequest.IsPositive() && qty.GreaterThan(lt.MaxPerRequest) {
		return q, fmt.Errorf("%w: %s > %s", ErrExceedsMaxPerRequest, qty, lt.MaxPerRequest)
	}

	q.Quantity = qty
	return q, nil
}
