package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"go.uber.org/zap"
)

const requestColumns = `id, tenant_id, user_id, leave_type_id, start_date, end_date, quantity, reason,
	status, decided_by, decision_note, created_at, updated_at`

const entryColumns = `id, tenant_id, user_id, leave_type_id, request_id, COALESCE(grant_id, ''), kind, quantity, created_at`

// SubmitRequest resolves the request quantity against the tenant calendar and
// the leave type policy, records it as PENDING and, for ON_APPLY types, holds
// the FIFO allocation. It all happens in one writer transaction.
func (s *Store) SubmitRequest(ctx context.Context, req *leave.Request) error {
	if req.ID == "" {
		req.ID = uuid.Must(uuid.NewV7()).String()
	}
	if req.UserID == "" {
		return fmt.Errorf("%w: user is required", leave.ErrInvalidUser)
	}
	if req.LeaveTypeID == "" {
		return fmt.Errorf("%w: leave type is required", leave.ErrInvalidLeaveType)
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", leave.ErrInvalidDate)
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := getUser(ctx, tx, req.TenantID, req.UserID); err != nil {
		return err
	}
	lt, err := getLeaveType(ctx, tx, req.TenantID, req.LeaveTypeID)
	if err != nil {
		return err
	}
	req.LeaveTypeID = lt.ID

	if err := checkOverlap(ctx, tx, req); err != nil {
		return err
	}

	l, err := s.loadLedger(ctx, tx, req.TenantID, req.UserID, lt)
	if err != nil {
		return err
	}
	planned, err := l.Submit(req)
	if err != nil {
		return err
	}

	ts := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = ts, ts
	_, err = tx.ExecContext(ctx,
		`INSERT INTO requests (id, tenant_id, user_id, leave_type_id, start_date, end_date, quantity, reason,
			status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.TenantID, req.UserID, req.LeaveTypeID, req.Start.String(), req.End.String(),
		req.Quantity.String(), req.Reason, string(req.Status),
		ts.Format(time.RFC3339Nano), ts.Format(time.RFC3339Nano),
	)
	if err != nil {
		return constraintErr("insert request", err)
	}

	if err := appendEntries(ctx, tx, planned, ts); err != nil {
		return err
	}
	if err := guardGrants(ctx, tx, l.Grants, planned); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	req.Entries = planned
	s.logTransition(req, lt, leave.ActionSubmit, planned)
	return nil
}

func (s *Store) ApproveRequest(ctx context.Context, tenantID, id, actor, note string) (*leave.Request, error) {
	return s.transition(ctx, tenantID, id, leave.ActionApprove, actor, note)
}

func (s *Store) RejectRequest(ctx context.Context, tenantID, id, actor, note string) (*leave.Request, error) {
	return s.transition(ctx, tenantID, id, leave.ActionReject, actor, note)
}

func (s *Store) CancelRequest(ctx context.Context, tenantID, id, actor, note string) (*leave.Request, error) {
	return s.transition(ctx, tenantID, id, leave.ActionCancel, actor, note)
}

func (s *Store) transition(ctx context.Context, tenantID, id string, action leave.Action, actor, note string) (*leave.Request, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	req, err := getRequest(ctx, tx, tenantID, id)
	if err != nil {
		return nil, err
	}
	lt, err := getLeaveType(ctx, tx, tenantID, req.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	l, err := s.loadLedger(ctx, tx, tenantID, req.UserID, lt)
	if err != nil {
		return nil, err
	}

	from := req.Status
	var planned []leave.Entry
	switch action {
	case leave.ActionApprove:
		planned, err = l.Approve(req)
	case leave.ActionReject:
		planned, err = l.Reject(req)
	case leave.ActionCancel:
		planned, err = l.Cancel(req)
	default:
		err = fmt.Errorf("%w: unknown action %q", leave.ErrInvalidTransition, action)
	}
	if err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	req.DecidedBy = actor
	req.DecisionNote = note
	req.UpdatedAt = ts
	res, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = ?, decided_by = ?, decision_note = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(req.Status), actor, note, ts.Format(time.RFC3339Nano), req.ID, string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return nil, fmt.Errorf("%w: request %s changed concurrently", leave.ErrInvalidTransition, req.ID)
	}

	if err := appendEntries(ctx, tx, planned, ts); err != nil {
		return nil, err
	}
	if err := guardGrants(ctx, tx, l.Grants, planned); err != nil {
		return nil, err
	}
	if req.Entries, err = listEntries(ctx, tx, EntryFilter{TenantID: tenantID, RequestID: req.ID}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logTransition(req, lt, action, planned)
	return req, nil
}

// QuoteRequest previews the charge and FIFO allocation for a prospective
// request without writing anything.
func (s *Store) QuoteRequest(ctx context.Context, tenantID, userID, leaveTypeID string, start, end leave.Date, requested decimal.Decimal) (leave.Quote, []leave.Allocation, error) {
	if _, err := getUser(ctx, s.reader, tenantID, userID); err != nil {
		return leave.Quote{}, nil, err
	}
	lt, err := getLeaveType(ctx, s.reader, tenantID, leaveTypeID)
	if err != nil {
		return leave.Quote{}, nil, err
	}
	l, err := s.loadLedger(ctx, s.reader, tenantID, userID, lt)
	if err != nil {
		return leave.Quote{}, nil, err
	}
	return l.Quote(start, end, requested)
}

func (s *Store) GetRequest(ctx context.Context, tenantID, id string) (*leave.Request, error) {
	req, err := getRequest(ctx, s.reader, tenantID, id)
	if err != nil {
		return nil, err
	}
	req.Entries, err = listEntries(ctx, s.reader, EntryFilter{TenantID: tenantID, RequestID: id})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func getRequest(ctx context.Context, q queryer, tenantID, id string) (*leave.Request, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE tenant_id = ? AND id = ?`, tenantID, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", leave.ErrRequestNotFound, id)
	}
	return req, err
}

func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) ([]leave.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE tenant_id = ?`
	args := []any{filter.TenantID}

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.LeaveTypeID != "" {
		query += ` AND leave_type_id = ?`
		args = append(args, filter.LeaveTypeID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query = paginate(query+` ORDER BY start_date DESC, id DESC`, filter.Limit, filter.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var reqs []leave.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func (s *Store) ListEntries(ctx context.Context, filter EntryFilter) ([]leave.Entry, error) {
	return listEntries(ctx, s.reader, filter)
}

func listEntries(ctx context.Context, q queryer, filter EntryFilter) ([]leave.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE tenant_id = ?`
	args := []any{filter.TenantID}

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.RequestID != "" {
		query += ` AND request_id = ?`
		args = append(args, filter.RequestID)
	}
	query = paginate(query+` ORDER BY rowid`, filter.Limit, filter.Offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// loadLedger reads everything the planner needs for one (user, leave type)
// pair. Inside a writer transaction the snapshot cannot go stale before the
// planned entries are appended.
func (s *Store) loadLedger(ctx context.Context, q queryer, tenantID, userID string, lt *leave.LeaveType) (*leave.Ledger, error) {
	cal, err := s.calendar(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	grants, err := listGrants(ctx, q, GrantFilter{TenantID: tenantID, UserID: userID, LeaveTypeID: lt.ID})
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries
		WHERE tenant_id = ? AND user_id = ? AND leave_type_id = ? ORDER BY rowid`,
		tenantID, userID, lt.ID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	return &leave.Ledger{Type: *lt, Calendar: cal, Grants: grants, Entries: entries}, nil
}

func checkOverlap(ctx context.Context, q queryer, req *leave.Request) error {
	var other string
	err := q.QueryRowContext(ctx,
		`SELECT id FROM requests
		WHERE tenant_id = ? AND user_id = ? AND status IN ('PENDING','APPROVED')
			AND start_date <= ? AND end_date >= ?
		LIMIT 1`,
		req.TenantID, req.UserID, req.End.String(), req.Start.String(),
	).Scan(&other)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	return fmt.Errorf("%w: %s", leave.ErrOverlappingRequest, other)
}

func appendEntries(ctx context.Context, tx *sql.Tx, entries []leave.Entry, ts time.Time) error {
	for i := range entries {
		e := &entries[i]
		e.ID = uuid.Must(uuid.NewV7()).String()
		e.CreatedAt = ts
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entries (id, tenant_id, user_id, leave_type_id, request_id, grant_id, kind, quantity, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.TenantID, e.UserID, e.LeaveTypeID, e.RequestID, nullString(e.GrantID),
			string(e.Kind), e.Quantity.String(), ts.Format(time.RFC3339Nano),
		)
		if err != nil {
			if isUnique(err) {
				return fmt.Errorf("insert entry %d: %w", i, leave.ErrAlreadyAllocated)
			}
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	return nil
}

// guardGrants re-reads every grant the new entries touch and refuses the
// transaction if its net held plus consumed quantity leaves [0, quantity].
func guardGrants(ctx context.Context, tx *sql.Tx, grants []leave.Grant, entries []leave.Entry) error {
	byID := make(map[string]leave.Grant, len(grants))
	for _, g := range grants {
		byID[g.ID] = g
	}
	checked := make(map[string]bool)
	for _, e := range entries {
		if e.GrantID == "" || checked[e.GrantID] {
			continue
		}
		checked[e.GrantID] = true

		rows, err := tx.QueryContext(ctx, `SELECT quantity FROM entries WHERE grant_id = ?`, e.GrantID)
		if err != nil {
			return fmt.Errorf("guard grant: %w", err)
		}
		used := decimal.Zero
		for rows.Next() {
			var q string
			if err := rows.Scan(&q); err != nil {
				rows.Close()
				return fmt.Errorf("guard grant: %w", err)
			}
			d, err := parseDecimal(q)
			if err != nil {
				rows.Close()
				return err
			}
			used = used.Add(d)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("guard grant: %w", err)
		}

		g := byID[e.GrantID]
		if used.IsNegative() || used.GreaterThan(g.Quantity) {
			return fmt.Errorf("%w: grant %s would carry %s of %s", leave.ErrGrantOverConsumed, g.ID, used, g.Quantity)
		}
	}
	return nil
}

func (s *Store) logTransition(req *leave.Request, lt *leave.LeaveType, action leave.Action, entries []leave.Entry) {
	s.log.Info("leave request "+string(action),
		zap.String("tenant", req.TenantID),
		zap.String("request", req.ID),
		zap.String("user", req.UserID),
		zap.String("leave_type", lt.Code),
		zap.String("status", string(req.Status)),
		zap.Stringer("quantity", req.Quantity),
		zap.String("timing", string(lt.Timing)),
		zap.Int("entries", len(entries)),
	)
}

func scanRequest(row scanner) (*leave.Request, error) {
	var req leave.Request
	var start, end, qty, createdAt, updatedAt string
	err := row.Scan(&req.ID, &req.TenantID, &req.UserID, &req.LeaveTypeID, &start, &end, &qty, &req.Reason,
		&req.Status, &req.DecidedBy, &req.DecisionNote, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	if req.Start, err = parseDate(start); err != nil {
		return nil, err
	}
	if req.End, err = parseDate(end); err != nil {
		return nil, err
	}
	if req.Quantity, err = parseDecimal(qty); err != nil {
		return nil, err
	}
	req.CreatedAt = parseTime(createdAt)
	req.UpdatedAt = parseTime(updatedAt)
	return &req, nil
}

func scanEntries(rows *sql.Rows) ([]leave.Entry, error) {
	var entries []leave.Entry
	for rows.Next() {
		var e leave.Entry
		var qty, createdAt string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.LeaveTypeID, &e.RequestID, &e.GrantID,
			&e.Kind, &qty, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var err error
		if e.Quantity, err = parseDecimal(qty); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
