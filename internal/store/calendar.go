package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/leaveledger/internal/leave"
)

func (s *Store) AddHoliday(ctx context.Context, h *leave.Holiday) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if _, err := s.GetTenant(ctx, h.TenantID); err != nil {
		return err
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO holidays (tenant_id, date, name) VALUES (?, ?, ?)`,
		h.TenantID, h.Date.String(), h.Name,
	)
	if err != nil {
		return constraintErr("insert holiday", err)
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, tenantID string) ([]leave.Holiday, error) {
	return listHolidays(ctx, s.reader, tenantID)
}

func listHolidays(ctx context.Context, q queryer, tenantID string) ([]leave.Holiday, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT tenant_id, date, name FROM holidays WHERE tenant_id = ? ORDER BY date`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []leave.Holiday
	for rows.Next() {
		var h leave.Holiday
		var date string
		if err := rows.Scan(&h.TenantID, &date, &h.Name); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		if h.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) DeleteHoliday(ctx context.Context, tenantID string, date leave.Date) error {
	res, err := s.writer.ExecContext(ctx,
		`DELETE FROM holidays WHERE tenant_id = ? AND date = ?`, tenantID, date.String())
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", leave.ErrHolidayNotFound, date)
	}
	return nil
}

func (s *Store) AddBlackout(ctx context.Context, b *leave.Blackout) error {
	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := s.GetTenant(ctx, b.TenantID); err != nil {
		return err
	}
	if b.LeaveTypeID != "" {
		lt, err := s.GetLeaveType(ctx, b.TenantID, b.LeaveTypeID)
		if err != nil {
			return err
		}
		b.LeaveTypeID = lt.ID
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO blackouts (id, tenant_id, leave_type_id, start_date, end_date, reason) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.TenantID, nullString(b.LeaveTypeID), b.Start.String(), b.End.String(), b.Reason,
	)
	if err != nil {
		return constraintErr("insert blackout", err)
	}
	return nil
}

func (s *Store) ListBlackouts(ctx context.Context, tenantID string) ([]leave.Blackout, error) {
	return listBlackouts(ctx, s.reader, tenantID)
}

func listBlackouts(ctx context.Context, q queryer, tenantID string) ([]leave.Blackout, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, tenant_id, COALESCE(leave_type_id, ''), start_date, end_date, reason
		FROM blackouts WHERE tenant_id = ? ORDER BY start_date, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	defer rows.Close()

	var blackouts []leave.Blackout
	for rows.Next() {
		var b leave.Blackout
		var start, end string
		if err := rows.Scan(&b.ID, &b.TenantID, &b.LeaveTypeID, &start, &end, &b.Reason); err != nil {
			return nil, fmt.Errorf("scan blackout: %w", err)
		}
		if b.Start, err = parseDate(start); err != nil {
			return nil, err
		}
		if b.End, err = parseDate(end); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, b)
	}
	return blackouts, rows.Err()
}

func (s *Store) DeleteBlackout(ctx context.Context, tenantID, id string) error {
	res, err := s.writer.ExecContext(ctx,
		`DELETE FROM blackouts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete blackout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", leave.ErrBlackoutNotFound, id)
	}
	return nil
}

// Calendar builds the tenant's working calendar from the configured weekend,
// its holidays and its blackouts.
func (s *Store) Calendar(ctx context.Context, tenantID string) (*leave.Calendar, error) {
	return s.calendar(ctx, s.reader, tenantID)
}

func (s *Store) calendar(ctx context.Context, q queryer, tenantID string) (*leave.Calendar, error) {
	holidays, err := listHolidays(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	blackouts, err := listBlackouts(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	return leave.NewCalendar(s.weekend, holidays, blackouts), nil
}
