package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonvc/leaveledger/internal/leave"
)

const userColumns = `tenant_id, id, name, email, COALESCE(hired_on, ''), created_at`

func (s *Store) CreateUser(ctx context.Context, u *leave.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if _, err := s.GetTenant(ctx, u.TenantID); err != nil {
		return err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO users (tenant_id, id, name, email, hired_on, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.TenantID, u.ID, u.Name, u.Email, nullDate(&u.HiredOn), u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return constraintErr("insert user", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, tenantID, id string) (*leave.User, error) {
	return getUser(ctx, s.reader, tenantID, id)
}

func getUser(ctx context.Context, q queryer, tenantID, id string) (*leave.User, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? AND id = ?`, tenantID, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", leave.ErrUserNotFound, id)
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context, tenantID string) ([]leave.User, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []leave.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (*leave.User, error) {
	var u leave.User
	var hiredOn, createdAt string
	if err := row.Scan(&u.TenantID, &u.ID, &u.Name, &u.Email, &hiredOn, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	var err error
	if u.HiredOn, err = parseDate(hiredOn); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
