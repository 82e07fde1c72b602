package leave

import "errors"

var (
	ErrInvalidTenant        = errors.New("invalid tenant")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrInvalidUser          = errors.New("invalid user")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidLeaveType     = errors.New("invalid leave type")
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeInactive    = errors.New("leave type is inactive")
	ErrInvalidUnit          = errors.New("invalid unit")
	ErrInvalidRoundingMode  = errors.New("invalid rounding mode")
	ErrInvalidTiming        = errors.New("invalid deduction timing")
	ErrInvalidGrant         = errors.New("invalid grant")
	ErrGrantNotFound        = errors.New("grant not found")
	ErrGrantInUse           = errors.New("grant has ledger entries")
	ErrGrantOverConsumed    = errors.New("grant would be over-consumed")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidRange         = errors.New("end date is before start date")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrRounding             = errors.New("quantity is not a multiple of the rounding step")
	ErrNoBusinessDays       = errors.New("range contains no chargeable days")
	ErrExceedsRange         = errors.New("quantity exceeds the chargeable days in range")
	ErrExceedsMaxPerRequest = errors.New("quantity exceeds the per-request maximum")
	ErrBlackout             = errors.New("range overlaps a blackout period")
	ErrInvalidBlackout      = errors.New("invalid blackout")
	ErrBlackoutNotFound     = errors.New("blackout not found")
	ErrInvalidHoliday       = errors.New("invalid holiday")
	ErrHolidayNotFound      = errors.New("holiday not found")
	ErrInsufficientBalance  = errors.New("insufficient leave balance")
	ErrRequestNotFound      = errors.New("request not found")
	ErrInvalidTransition    = errors.New("invalid request status transition")
	ErrOverlappingRequest   = errors.New("request overlaps an existing request")
	ErrAlreadyAllocated     = errors.New("request is already allocated")
	ErrDuplicate            = errors.New("already exists")
)
