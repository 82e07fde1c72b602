package leave

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitDay     Unit = "DAY"
	UnitHalfDay Unit = "HALF_DAY"
	UnitHour    Unit = "HOUR"
)

var AllUnits = []Unit{UnitDay, UnitHalfDay, UnitHour}

// DefaultStep returns the rounding granularity used when a leave type does not
// configure one.
func DefaultStep(u Unit) decimal.Decimal {
	switch u {
	case UnitHalfDay:
		return decimal.RequireFromString("0.5")
	case UnitHour:
		return decimal.RequireFromString("0.25")
	default:
		return decimal.NewFromInt(1)
	}
}

// UnitLabel returns the plural noun quantities of u are counted in.
func UnitLabel(u Unit) string {
	if u == UnitHour {
		return "hours"
	}
	return "days"
}

type RoundingMode string

const (
	RoundNone    RoundingMode = "NONE"
	RoundUp      RoundingMode = "UP"
	RoundDown    RoundingMode = "DOWN"
	RoundNearest RoundingMode = "NEAREST"
)

// DeductionTiming controls when a request draws on the balance.
type DeductionTiming string

const (
	// TimingOnApply holds the quantity when the request is submitted and
	// finalizes the same allocation on approval.
	TimingOnApply DeductionTiming = "ON_APPLY"
	// TimingOnApprove allocates only when the request is approved.
	TimingOnApprove DeductionTiming = "ON_APPROVE"
	// TimingNone is an untracked leave type: requests never touch the ledger.
	TimingNone DeductionTiming = "NONE"
)

type GrantSource string

const (
	SourceAccrual    GrantSource = "ACCRUAL"
	SourceManual     GrantSource = "MANUAL"
	SourceCarryover  GrantSource = "CARRYOVER"
	SourceAdjustment GrantSource = "ADJUSTMENT"
)

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

func (t *Tenant) Validate() error {
	if !slugPattern.MatchString(t.ID) {
		return fmt.Errorf("%w: id %q must be a lowercase slug", ErrInvalidTenant, t.ID)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTenant)
	}
	return nil
}

type User struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	HiredOn   Date      `json:"hired_on"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidUser)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	}
	return nil
}

type LeaveType struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Unit             Unit            `json:"unit"`
	RoundingStep     decimal.Decimal `json:"rounding_step"`
	RoundingMode     RoundingMode    `json:"rounding_mode"`
	HoursPerDay      decimal.Decimal `json:"hours_per_day"`
	Timing           DeductionTiming `json:"timing"`
	BusinessDaysOnly bool            `json:"business_days_only"`
	AllowNegative    bool            `json:"allow_negative"`
	MaxPerRequest    decimal.Decimal `json:"max_per_request"` // zero means no limit
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ApplyDefaults fills unset policy fields.
func (lt *LeaveType) ApplyDefaults() {
	if lt.Unit == "" {
		lt.Unit = UnitDay
	}
	if lt.RoundingStep.IsZero() {
		lt.RoundingStep = DefaultStep(lt.Unit)
	}
	if lt.RoundingMode == "" {
		lt.RoundingMode = RoundNone
	}
	if lt.HoursPerDay.IsZero() {
		lt.HoursPerDay = decimal.NewFromInt(8)
	}
	if lt.Timing == "" {
		lt.Timing = TimingOnApply
	}
}

// Validate checks all leave type invariants. Call ApplyDefaults first.
func (lt *LeaveType) Validate() error {
	if !slugPattern.MatchString(lt.Code) {
		return fmt.Errorf("%w: code %q must be a lowercase slug", ErrInvalidLeaveType, lt.Code)
	}
	if strings.TrimSpace(lt.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLeaveType)
	}
	switch lt.Unit {
	case UnitDay, UnitHalfDay, UnitHour:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidUnit, lt.Unit)
	}
	switch lt.RoundingMode {
	case RoundNone, RoundUp, RoundDown, RoundNearest:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRoundingMode, lt.RoundingMode)
	}
	switch lt.Timing {
	case TimingOnApply, TimingOnApprove, TimingNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTiming, lt.Timing)
	}
	if !lt.RoundingStep.IsPositive() {
		return fmt.Errorf("%w: rounding step must be positive", ErrInvalidLeaveType)
	}
	// A day-based type cannot be split finer than its unit allows.
	switch lt.Unit {
	case UnitDay:
		if !lt.RoundingStep.IsInteger() {
			return fmt.Errorf("%w: DAY rounding step must be a whole number", ErrInvalidLeaveType)
		}
	case UnitHalfDay:
		if !lt.RoundingStep.Div(DefaultStep(UnitHalfDay)).IsInteger() {
			return fmt.Errorf("%w: HALF_DAY rounding step must be a multiple of 0.5", ErrInvalidLeaveType)
		}
	}
	if !lt.HoursPerDay.IsPositive() || lt.HoursPerDay.GreaterThan(decimal.NewFromInt(24)) {
		return fmt.Errorf("%w: hours per day must be in (0, 24]", ErrInvalidLeaveType)
	}
	if lt.MaxPerRequest.IsNegative() {
		return fmt.Errorf("%w: max per request cannot be negative", ErrInvalidLeaveType)
	}
	return nil
}

// Tracked reports whether requests of this type write ledger entries.
func (lt *LeaveType) Tracked() bool {
	return lt.Timing != TimingNone
}

type Grant struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	UserID      string          `json:"user_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	IssuedOn    Date            `json:"issued_on"`
	ExpiresOn   *Date           `json:"expires_on,omitempty"`
	Source      GrantSource     `json:"source"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (g *Grant) Validate() error {
	if g.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidGrant)
	}
	if g.LeaveTypeID == "" {
		return fmt.Errorf("%w: leave type is required", ErrInvalidGrant)
	}
	if !g.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidGrant)
	}
	if g.IssuedOn.IsZero() {
		return fmt.Errorf("%w: issued_on is required", ErrInvalidGrant)
	}
	if g.ExpiresOn != nil && g.ExpiresOn.Before(g.IssuedOn) {
		return fmt.Errorf("%w: expires_on is before issued_on", ErrInvalidGrant)
	}
	switch g.Source {
	case SourceAccrual, SourceManual, SourceCarryover, SourceAdjustment:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidGrant, g.Source)
	}
	return nil
}

// ActiveAt reports whether the grant can be drawn on at asOf.
func (g *Grant) ActiveAt(asOf Date) bool {
	return !g.IssuedOn.After(asOf) && !g.ExpiredAt(asOf)
}

// ExpiredAt reports whether the grant lapsed before asOf.
func (g *Grant) ExpiredAt(asOf Date) bool {
	return g.ExpiresOn != nil && g.ExpiresOn.Before(asOf)
}

type Holiday struct {
	TenantID string `json:"tenant_id"`
	Date     Date   `json:"date"`
	Name     string `json:"name"`
}

func (h *Holiday) Validate() error {
	if h.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidHoliday)
	}
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidHoliday)
	}
	return nil
}

// Blackout blocks leave in [Start, End]. An empty LeaveTypeID applies to all types.
type Blackout struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	LeaveTypeID string `json:"leave_type_id,omitempty"`
	Start       Date   `json:"start"`
	End         Date   `json:"end"`
	Reason      string `json:"reason"`
}

func (b *Blackout) Validate() error {
	if b.Start.IsZero() || b.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidBlackout)
	}
	if b.End.Before(b.Start) {
		return fmt.Errorf("%w: %w", ErrInvalidBlackout, ErrInvalidRange)
	}
	if strings.TrimSpace(b.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidBlackout)
	}
	return nil
}

func (b *Blackout) Applies(leaveTypeID string) bool {
	return b.LeaveTypeID == "" || b.LeaveTypeID == leaveTypeID
}
