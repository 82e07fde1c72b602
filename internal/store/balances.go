package store

import (
	"context"

	"github.com/simonvc/leaveledger/internal/leave"
)

// Balance recomputes one user's balance for one leave type as of a date.
func (s *Store) Balance(ctx context.Context, tenantID, userID, leaveTypeID string, asOf leave.Date) (*leave.Balance, error) {
	if _, err := s.GetUser(ctx, tenantID, userID); err != nil {
		return nil, err
	}
	lt, err := s.GetLeaveType(ctx, tenantID, leaveTypeID)
	if err != nil {
		return nil, err
	}
	l, err := s.loadLedger(ctx, s.reader, tenantID, userID, lt)
	if err != nil {
		return nil, err
	}
	b := l.Balance(asOf)
	b.UserID = userID
	return &b, nil
}

// ListBalances returns a balance for every tracked leave type of the tenant,
// including types the user holds no grants for.
func (s *Store) ListBalances(ctx context.Context, tenantID, userID string, asOf leave.Date) ([]leave.Balance, error) {
	if _, err := s.GetUser(ctx, tenantID, userID); err != nil {
		return nil, err
	}
	types, err := s.ListLeaveTypes(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	grants, err := s.ListGrants(ctx, GrantFilter{TenantID: tenantID, UserID: userID})
	if err != nil {
		return nil, err
	}
	entries, err := s.ListEntries(ctx, EntryFilter{TenantID: tenantID, UserID: userID})
	if err != nil {
		return nil, err
	}

	grantsByType := make(map[string][]leave.Grant)
	for _, g := range grants {
		grantsByType[g.LeaveTypeID] = append(grantsByType[g.LeaveTypeID], g)
	}
	entriesByType := make(map[string][]leave.Entry)
	for _, e := range entries {
		entriesByType[e.LeaveTypeID] = append(entriesByType[e.LeaveTypeID], e)
	}

	balances := make([]leave.Balance, 0, len(types))
	for _, lt := range types {
		if !lt.Tracked() {
			continue
		}
		l := leave.Ledger{Type: lt, Grants: grantsByType[lt.ID], Entries: entriesByType[lt.ID]}
		b := l.Balance(asOf)
		b.UserID = userID
		balances = append(balances, b)
	}
	return balances, nil
}
