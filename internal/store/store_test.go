package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "leave.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) leave.Date {
	return leave.MustParseDate(s)
}

// seed creates tenant "acme", user "alice" and an "annual" leave type with
// the given timing, returning the leave type.
func seed(t *testing.T, s *Store, timing leave.DeductionTiming) *leave.LeaveType {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.CreateTenant(ctx, &leave.Tenant{ID: "acme", Name: "Acme"}))
	require.NoError(t, s.CreateUser(ctx, &leave.User{TenantID: "acme", ID: "alice", Name: "Alice"}))

	lt := &leave.LeaveType{
		TenantID:         "acme",
		Code:             "annual",
		Name:             "Annual leave",
		Unit:             leave.UnitDay,
		Timing:           timing,
		BusinessDaysOnly: true,
		Active:           true,
	}
	require.NoError(t, s.CreateLeaveType(ctx, lt))
	return lt
}

func addGrant(t *testing.T, s *Store, lt *leave.LeaveType, qty, issued string) *leave.Grant {
	t.Helper()
	g := &leave.Grant{
		TenantID:    "acme",
		UserID:      "alice",
		LeaveTypeID: lt.ID,
		Quantity:    dec(qty),
		IssuedOn:    day(issued),
	}
	require.NoError(t, s.CreateGrant(context.Background(), g))
	return g
}

func submit(t *testing.T, s *Store, start, end string) *leave.Request {
	t.Helper()
	req := &leave.Request{TenantID: "acme", UserID: "alice", LeaveTypeID: "annual", Start: day(start), End: day(end)}
	require.NoError(t, s.SubmitRequest(context.Background(), req))
	return req
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leave.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateTenant(context.Background(), &leave.Tenant{ID: "acme", Name: "Acme"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	tenants, err := s.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "Acme", tenants[0].Name)
}

func TestStore_Directory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)

	err := s.CreateTenant(ctx, &leave.Tenant{ID: "acme", Name: "Again"})
	assert.ErrorIs(t, err, leave.ErrDuplicate)

	err = s.CreateUser(ctx, &leave.User{TenantID: "nope", ID: "bob", Name: "Bob"})
	assert.ErrorIs(t, err, leave.ErrTenantNotFound)

	_, err = s.GetUser(ctx, "acme", "bob")
	assert.ErrorIs(t, err, leave.ErrUserNotFound)

	byCode, err := s.GetLeaveType(ctx, "acme", "annual")
	require.NoError(t, err)
	assert.Equal(t, lt.ID, byCode.ID)
	assert.Equal(t, "1", byCode.RoundingStep.String())
	assert.Equal(t, leave.RoundNone, byCode.RoundingMode)
	assert.True(t, byCode.BusinessDaysOnly)

	dup := &leave.LeaveType{TenantID: "acme", Code: "annual", Name: "Other", Active: true}
	assert.ErrorIs(t, s.CreateLeaveType(ctx, dup), leave.ErrDuplicate)

	byCode.Name = "Annual"
	byCode.MaxPerRequest = dec("10")
	require.NoError(t, s.UpdateLeaveType(ctx, byCode))
	got, err := s.GetLeaveType(ctx, "acme", lt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annual", got.Name)
	assert.Equal(t, "10", got.MaxPerRequest.String())

	got.Unit = leave.UnitHour
	assert.ErrorIs(t, s.UpdateLeaveType(ctx, got), leave.ErrInvalidLeaveType)

	_, err = s.GetLeaveType(ctx, "other-tenant", lt.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestStore_HoldOnApplyLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	g1 := addGrant(t, s, lt, "2", "2026-01-01")
	g2 := addGrant(t, s, lt, "10", "2026-02-01")

	req := submit(t, s, "2026-03-02", "2026-03-04")
	assert.Equal(t, leave.StatusPending, req.Status)
	assert.Equal(t, "3", req.Quantity.String())
	require.Len(t, req.Entries, 2)
	assert.Equal(t, g1.ID, req.Entries[0].GrantID)
	assert.Equal(t, g2.ID, req.Entries[1].GrantID)
	assert.NotEmpty(t, req.Entries[0].ID)

	b, err := s.Balance(ctx, "acme", "alice", "annual", day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "12", b.Granted.String())
	assert.Equal(t, "3", b.Held.String())
	assert.Equal(t, "9", b.Available.String())

	approved, err := s.ApproveRequest(ctx, "acme", req.ID, "manager", "enjoy")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, "manager", approved.DecidedBy)
	assert.Len(t, approved.Entries, 6)

	b, err = s.Balance(ctx, "acme", "alice", lt.ID, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "0", b.Held.String())
	assert.Equal(t, "3", b.Consumed.String())
	assert.Equal(t, "9", b.Available.String())

	_, err = s.ApproveRequest(ctx, "acme", req.ID, "manager", "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	cancelled, err := s.CancelRequest(ctx, "acme", req.ID, "alice", "plans changed")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)
	assert.Len(t, cancelled.Entries, 8)

	b, err = s.Balance(ctx, "acme", "alice", lt.ID, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "12", b.Available.String())

	fetched, err := s.GetRequest(ctx, "acme", req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, fetched.Status)
	assert.Equal(t, "plans changed", fetched.DecisionNote)
	assert.Len(t, fetched.Entries, 8)
}

func TestStore_FinalizeOnApprove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApprove)
	addGrant(t, s, lt, "5", "2026-01-01")

	req := submit(t, s, "2026-03-02", "2026-03-03")
	assert.Empty(t, req.Entries)

	approved, err := s.ApproveRequest(ctx, "acme", req.ID, "manager", "")
	require.NoError(t, err)
	require.Len(t, approved.Entries, 1)
	assert.Equal(t, leave.KindConsume, approved.Entries[0].Kind)

	b, err := s.Balance(ctx, "acme", "alice", lt.ID, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "3", b.Available.String())
}

func TestStore_RejectReleases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "5", "2026-01-01")

	req := submit(t, s, "2026-03-02", "2026-03-03")
	rejected, err := s.RejectRequest(ctx, "acme", req.ID, "manager", "busy week")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)

	b, err := s.Balance(ctx, "acme", "alice", lt.ID, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "5", b.Available.String())

	_, err = s.CancelRequest(ctx, "acme", req.ID, "alice", "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestStore_SubmitRejections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "3", "2026-01-01")

	require.NoError(t, s.AddBlackout(ctx, &leave.Blackout{
		TenantID: "acme", Start: day("2026-03-30"), End: day("2026-03-31"), Reason: "quarter close",
	}))

	tests := []struct {
		name       string
		start, end string
		err        error
	}{
		{name: "more than available", start: "2026-03-09", end: "2026-03-12", err: leave.ErrInsufficientBalance},
		{name: "weekend only", start: "2026-03-07", end: "2026-03-08", err: leave.ErrNoBusinessDays},
		{name: "blackout", start: "2026-03-27", end: "2026-03-30", err: leave.ErrBlackout},
		{name: "reversed", start: "2026-03-10", end: "2026-03-09", err: leave.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &leave.Request{TenantID: "acme", UserID: "alice", LeaveTypeID: lt.ID, Start: day(tt.start), End: day(tt.end)}
			assert.ErrorIs(t, s.SubmitRequest(ctx, req), tt.err)
		})
	}

	reqs, err := s.ListRequests(ctx, RequestFilter{TenantID: "acme"})
	require.NoError(t, err)
	assert.Empty(t, reqs)
	entries, err := s.ListEntries(ctx, EntryFilter{TenantID: "acme"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_OverlappingRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "10", "2026-01-01")

	first := submit(t, s, "2026-03-02", "2026-03-04")

	req := &leave.Request{TenantID: "acme", UserID: "alice", LeaveTypeID: lt.ID, Start: day("2026-03-04"), End: day("2026-03-05")}
	assert.ErrorIs(t, s.SubmitRequest(ctx, req), leave.ErrOverlappingRequest)

	_, err := s.CancelRequest(ctx, "acme", first.ID, "alice", "")
	require.NoError(t, err)
	require.NoError(t, s.SubmitRequest(ctx, req))
}

func TestStore_HolidaysShortenRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "10", "2026-01-01")

	require.NoError(t, s.AddHoliday(ctx, &leave.Holiday{TenantID: "acme", Date: day("2026-03-04"), Name: "Founders Day"}))
	assert.ErrorIs(t, s.AddHoliday(ctx, &leave.Holiday{TenantID: "acme", Date: day("2026-03-04"), Name: "Again"}), leave.ErrDuplicate)

	q, allocs, err := s.QuoteRequest(ctx, "acme", "alice", "annual", day("2026-03-02"), day("2026-03-06"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "4", q.Quantity.String())
	require.Len(t, allocs, 1)

	require.NoError(t, s.DeleteHoliday(ctx, "acme", day("2026-03-04")))
	assert.ErrorIs(t, s.DeleteHoliday(ctx, "acme", day("2026-03-04")), leave.ErrHolidayNotFound)

	q, _, err = s.QuoteRequest(ctx, "acme", "alice", "annual", day("2026-03-02"), day("2026-03-06"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "5", q.Quantity.String())
}

func TestStore_CustomWeekend(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "leave.db"), WithWeekend([]time.Weekday{time.Friday, time.Saturday}))
	require.NoError(t, err)
	defer s.Close()

	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "10", "2026-01-01")

	// Fri 6 .. Sun 8 March: only Sunday is a working day.
	q, _, err := s.QuoteRequest(context.Background(), "acme", "alice", lt.ID, day("2026-03-06"), day("2026-03-08"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 1, q.ChargeableDays)
}

func TestStore_DeleteGrant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	used := addGrant(t, s, lt, "5", "2026-01-01")
	spare := addGrant(t, s, lt, "5", "2026-02-01")

	submit(t, s, "2026-03-02", "2026-03-02")

	assert.ErrorIs(t, s.DeleteGrant(ctx, "acme", used.ID), leave.ErrGrantInUse)
	require.NoError(t, s.DeleteGrant(ctx, "acme", spare.ID))
	assert.ErrorIs(t, s.DeleteGrant(ctx, "acme", spare.ID), leave.ErrGrantNotFound)

	grants, err := s.ListGrants(ctx, GrantFilter{TenantID: "acme", UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, used.ID, grants[0].ID)
}

func TestStore_EntriesAreAppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "5", "2026-01-01")
	req := submit(t, s, "2026-03-02", "2026-03-02")

	_, err := s.writer.ExecContext(ctx, `UPDATE entries SET quantity = '0.5' WHERE id = ?`, req.Entries[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	_, err = s.writer.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, req.Entries[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")
}

func TestStore_EntryGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	g := addGrant(t, s, lt, "2", "2026-01-01")
	require.NoError(t, s.CreateUser(ctx, &leave.User{TenantID: "acme", ID: "bob", Name: "Bob"}))
	req := submit(t, s, "2026-03-02", "2026-03-02")

	tx, err := s.writer.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	// The request already holds one unit on the grant.
	again := []leave.Entry{{
		TenantID: "acme", UserID: "alice", LeaveTypeID: lt.ID, RequestID: req.ID,
		GrantID: g.ID, Kind: leave.KindHold, Quantity: dec("1"),
	}}
	assert.ErrorIs(t, appendEntries(ctx, tx, again, time.Now()), leave.ErrAlreadyAllocated)

	over := []leave.Entry{{
		TenantID: "acme", UserID: "alice", LeaveTypeID: lt.ID, RequestID: req.ID,
		GrantID: g.ID, Kind: leave.KindConsume, Quantity: dec("1.5"),
	}}
	require.NoError(t, appendEntries(ctx, tx, over, time.Now()))
	assert.ErrorIs(t, guardGrants(ctx, tx, []leave.Grant{*g}, over), leave.ErrGrantOverConsumed)

	foreign := []leave.Entry{{
		TenantID: "acme", UserID: "bob", LeaveTypeID: lt.ID, RequestID: req.ID,
		GrantID: g.ID, Kind: leave.KindRelease, Quantity: dec("-1"),
	}}
	require.Error(t, appendEntries(ctx, tx, foreign, time.Now()))

	negative := []leave.Entry{{
		TenantID: "acme", UserID: "alice", LeaveTypeID: lt.ID, RequestID: req.ID,
		GrantID: g.ID, Kind: leave.KindReverse, Quantity: dec("2"),
	}}
	require.Error(t, appendEntries(ctx, tx, negative, time.Now()))
}

func TestStore_AllowNegativeOverdraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	lt.AllowNegative = true
	require.NoError(t, s.UpdateLeaveType(ctx, lt))
	addGrant(t, s, lt, "1", "2026-01-01")

	req := submit(t, s, "2026-03-02", "2026-03-04")
	require.Len(t, req.Entries, 2)
	assert.Empty(t, req.Entries[1].GrantID)

	_, err := s.ApproveRequest(ctx, "acme", req.ID, "manager", "")
	require.NoError(t, err)

	b, err := s.Balance(ctx, "acme", "alice", lt.ID, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "-2", b.Available.String())
	assert.Equal(t, "2", b.Overdraft.String())
}

func TestStore_ListBalances(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	annual := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, annual, "10", "2026-01-01")

	require.NoError(t, s.CreateLeaveType(ctx, &leave.LeaveType{
		TenantID: "acme", Code: "sick", Name: "Sick", Unit: leave.UnitHour, Active: true,
	}))
	require.NoError(t, s.CreateLeaveType(ctx, &leave.LeaveType{
		TenantID: "acme", Code: "unpaid", Name: "Unpaid", Timing: leave.TimingNone, Active: true,
	}))

	submit(t, s, "2026-03-02", "2026-03-03")

	balances, err := s.ListBalances(ctx, "acme", "alice", day("2026-03-01"))
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byType := map[string]leave.Balance{}
	for _, b := range balances {
		byType[b.LeaveTypeID] = b
	}
	assert.Equal(t, "8", byType[annual.ID].Available.String())
	assert.Equal(t, "alice", byType[annual.ID].UserID)
}

func TestStore_ListRequestsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	lt := seed(t, s, leave.TimingOnApply)
	addGrant(t, s, lt, "10", "2026-01-01")

	first := submit(t, s, "2026-03-02", "2026-03-02")
	submit(t, s, "2026-03-09", "2026-03-09")
	_, err := s.ApproveRequest(ctx, "acme", first.ID, "manager", "")
	require.NoError(t, err)

	all, err := s.ListRequests(ctx, RequestFilter{TenantID: "acme", UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := s.ListRequests(ctx, RequestFilter{TenantID: "acme", Status: leave.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "2026-03-09", pending[0].Start.String())

	page, err := s.ListRequests(ctx, RequestFilter{TenantID: "acme", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
