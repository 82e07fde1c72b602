package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simonvc/leaveledger/internal/leave"
	"go.uber.org/zap"
)

const grantColumns = `id, tenant_id, user_id, leave_type_id, quantity, issued_on, COALESCE(expires_on, ''),
	source, note, created_at`

func (s *Store) CreateGrant(ctx context.Context, g *leave.Grant) error {
	if g.ID == "" {
		g.ID = uuid.Must(uuid.NewV7()).String()
	}
	if g.Source == "" {
		g.Source = leave.SourceManual
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, g.TenantID, g.UserID); err != nil {
		return err
	}
	lt, err := s.GetLeaveType(ctx, g.TenantID, g.LeaveTypeID)
	if err != nil {
		return err
	}
	g.LeaveTypeID = lt.ID

	_, err = s.writer.ExecContext(ctx,
		`INSERT INTO grants (id, tenant_id, user_id, leave_type_id, quantity, issued_on, expires_on, source, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.TenantID, g.UserID, g.LeaveTypeID, g.Quantity.String(), g.IssuedOn.String(),
		nullDate(g.ExpiresOn), string(g.Source), g.Note, g.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return constraintErr("insert grant", err)
	}

	s.log.Info("grant issued",
		zap.String("tenant", g.TenantID),
		zap.String("user", g.UserID),
		zap.String("leave_type", g.LeaveTypeID),
		zap.Stringer("quantity", g.Quantity),
		zap.String("source", string(g.Source)),
	)
	return nil
}

func (s *Store) GetGrant(ctx context.Context, tenantID, id string) (*leave.Grant, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM grants WHERE tenant_id = ? AND id = ?`, tenantID, id)
	g, err := scanGrant(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", leave.ErrGrantNotFound, id)
	}
	return g, err
}

func (s *Store) ListGrants(ctx context.Context, filter GrantFilter) ([]leave.Grant, error) {
	return listGrants(ctx, s.reader, filter)
}

func listGrants(ctx context.Context, q queryer, filter GrantFilter) ([]leave.Grant, error) {
	query := `SELECT ` + grantColumns + ` FROM grants WHERE tenant_id = ?`
	args := []any{filter.TenantID}

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.LeaveTypeID != "" {
		query += ` AND leave_type_id = ?`
		args = append(args, filter.LeaveTypeID)
	}
	query = paginate(query+` ORDER BY issued_on, id`, filter.Limit, filter.Offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []leave.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

// DeleteGrant removes a grant that nothing has been drawn against. Grants with
// entries are corrected with an ADJUSTMENT grant instead.
func (s *Store) DeleteGrant(ctx context.Context, tenantID, id string) error {
	if _, err := s.GetGrant(ctx, tenantID, id); err != nil {
		return err
	}

	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE grant_id = ?`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check entries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: grant %s has %d entries", leave.ErrGrantInUse, id, count)
	}

	_, err = s.writer.ExecContext(ctx, `DELETE FROM grants WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return constraintErr("delete grant", err)
	}
	return nil
}

func scanGrant(row scanner) (*leave.Grant, error) {
	var g leave.Grant
	var qty, issuedOn, expiresOn, createdAt string
	err := row.Scan(&g.ID, &g.TenantID, &g.UserID, &g.LeaveTypeID, &qty, &issuedOn, &expiresOn,
		&g.Source, &g.Note, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan grant: %w", err)
	}
	if g.Quantity, err = parseDecimal(qty); err != nil {
		return nil, err
	}
	if g.IssuedOn, err = parseDate(issuedOn); err != nil {
		return nil, err
	}
	if expiresOn != "" {
		d, err := parseDate(expiresOn)
		if err != nil {
			return nil, err
		}
		g.ExpiresOn = &d
	}
	g.CreatedAt = parseTime(createdAt)
	return &g, nil
}
