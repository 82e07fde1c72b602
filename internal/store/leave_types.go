package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simonvc/leaveledger/internal/leave"
)

const leaveTypeColumns = `id, tenant_id, code, name, unit, rounding_step, rounding_mode, hours_per_day,
	timing, business_days_only, allow_negative, max_per_request, active, created_at`

func (s *Store) CreateLeaveType(ctx context.Context, lt *leave.LeaveType) error {
	if lt.ID == "" {
		lt.ID = uuid.Must(uuid.NewV7()).String()
	}
	if lt.CreatedAt.IsZero() {
		lt.CreatedAt = time.Now().UTC()
	}
	lt.ApplyDefaults()
	if err := lt.Validate(); err != nil {
		return err
	}
	if _, err := s.GetTenant(ctx, lt.TenantID); err != nil {
		return err
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO leave_types (id, tenant_id, code, name, unit, rounding_step, rounding_mode, hours_per_day,
			timing, business_days_only, allow_negative, max_per_request, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lt.ID, lt.TenantID, lt.Code, lt.Name, string(lt.Unit), lt.RoundingStep.String(), string(lt.RoundingMode),
		lt.HoursPerDay.String(), string(lt.Timing), boolToInt(lt.BusinessDaysOnly), boolToInt(lt.AllowNegative),
		lt.MaxPerRequest.String(), boolToInt(lt.Active), lt.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return constraintErr("insert leave type", err)
	}
	return nil
}

// GetLeaveType looks a leave type up by id or by its tenant-unique code.
func (s *Store) GetLeaveType(ctx context.Context, tenantID, idOrCode string) (*leave.LeaveType, error) {
	return getLeaveType(ctx, s.reader, tenantID, idOrCode)
}

func getLeaveType(ctx context.Context, q queryer, tenantID, idOrCode string) (*leave.LeaveType, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+leaveTypeColumns+` FROM leave_types WHERE tenant_id = ? AND (id = ? OR code = ?)`,
		tenantID, idOrCode, idOrCode)
	lt, err := scanLeaveType(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", leave.ErrLeaveTypeNotFound, idOrCode)
	}
	return lt, err
}

func (s *Store) ListLeaveTypes(ctx context.Context, tenantID string) ([]leave.LeaveType, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT `+leaveTypeColumns+` FROM leave_types WHERE tenant_id = ? ORDER BY code`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *lt)
	}
	return types, rows.Err()
}

// UpdateLeaveType saves the policy fields of an existing leave type. Unit and
// timing are fixed once created since existing entries are denominated in them.
func (s *Store) UpdateLeaveType(ctx context.Context, lt *leave.LeaveType) error {
	current, err := s.GetLeaveType(ctx, lt.TenantID, lt.ID)
	if err != nil {
		return err
	}
	if lt.Unit != current.Unit || lt.Timing != current.Timing {
		return fmt.Errorf("%w: unit and timing cannot be changed", leave.ErrInvalidLeaveType)
	}
	lt.ID = current.ID
	lt.Code = current.Code
	lt.CreatedAt = current.CreatedAt
	if err := lt.Validate(); err != nil {
		return err
	}

	_, err = s.writer.ExecContext(ctx,
		`UPDATE leave_types SET name = ?, rounding_step = ?, rounding_mode = ?, hours_per_day = ?,
			business_days_only = ?, allow_negative = ?, max_per_request = ?, active = ?
		WHERE id = ?`,
		lt.Name, lt.RoundingStep.String(), string(lt.RoundingMode), lt.HoursPerDay.String(),
		boolToInt(lt.BusinessDaysOnly), boolToInt(lt.AllowNegative), lt.MaxPerRequest.String(),
		boolToInt(lt.Active), lt.ID,
	)
	if err != nil {
		return fmt.Errorf("update leave type: %w", err)
	}
	return nil
}

func scanLeaveType(row scanner) (*leave.LeaveType, error) {
	var lt leave.LeaveType
	var step, hours, maxPer, createdAt string
	var businessDays, allowNegative, active int
	err := row.Scan(&lt.ID, &lt.TenantID, &lt.Code, &lt.Name, &lt.Unit, &step, &lt.RoundingMode, &hours,
		&lt.Timing, &businessDays, &allowNegative, &maxPer, &active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan leave type: %w", err)
	}
	if lt.RoundingStep, err = parseDecimal(step); err != nil {
		return nil, err
	}
	if lt.HoursPerDay, err = parseDecimal(hours); err != nil {
		return nil, err
	}
	if lt.MaxPerRequest, err = parseDecimal(maxPer); err != nil {
		return nil, err
	}
	lt.BusinessDaysOnly = businessDays == 1
	lt.AllowNegative = allowNegative == 1
	lt.Active = active == 1
	lt.CreatedAt = parseTime(createdAt)
	return &lt, nil
}
