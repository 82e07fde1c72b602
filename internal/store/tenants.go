package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonvc/leaveledger/internal/leave"
)

func (s *Store) CreateTenant(ctx context.Context, t *leave.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return constraintErr("insert tenant", err)
	}
	return nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*leave.Tenant, error) {
	var t leave.Tenant
	var createdAt string
	err := s.reader.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tenants WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, leave.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	t.CreatedAt = parseTime(createdAt)
	return &t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]leave.Tenant, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT id, name, created_at FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []leave.Tenant
	for rows.Next() {
		var t leave.Tenant
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		t.CreatedAt = parseTime(createdAt)
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
