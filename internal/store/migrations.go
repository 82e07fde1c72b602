package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Create schema version table
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			tenant_id  TEXT NOT NULL REFERENCES tenants(id),
			id         TEXT NOT NULL,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			hired_on   TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			PRIMARY KEY (tenant_id, id)
		)`,

		`CREATE TABLE IF NOT EXISTS leave_types (
			id                 TEXT PRIMARY KEY,
			tenant_id          TEXT NOT NULL REFERENCES tenants(id),
			code               TEXT NOT NULL,
			name               TEXT NOT NULL,
			unit               TEXT NOT NULL CHECK (unit IN ('DAY','HALF_DAY','HOUR')),
			rounding_step      TEXT NOT NULL,
			rounding_mode      TEXT NOT NULL CHECK (rounding_mode IN ('NONE','UP','DOWN','NEAREST')),
			hours_per_day      TEXT NOT NULL,
			timing             TEXT NOT NULL CHECK (timing IN ('ON_APPLY','ON_APPROVE','NONE')),
			business_days_only INTEGER NOT NULL DEFAULT 1,
			allow_negative     INTEGER NOT NULL DEFAULT 0,
			max_per_request    TEXT NOT NULL DEFAULT '0',
			active             INTEGER NOT NULL DEFAULT 1,
			created_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (tenant_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS grants (
			id            TEXT PRIMARY KEY,
			tenant_id     TEXT NOT NULL,
			user_id       TEXT NOT NULL,
			leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
			quantity      TEXT NOT NULL,
			issued_on     TEXT NOT NULL,
			expires_on    TEXT,
			source        TEXT NOT NULL CHECK (source IN ('ACCRUAL','MANUAL','CARRYOVER','ADJUSTMENT')),
			note          TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			FOREIGN KEY (tenant_id, user_id) REFERENCES users(tenant_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grants_owner ON grants(tenant_id, user_id, leave_type_id)`,

		`CREATE TABLE IF NOT EXISTS requests (
			id            TEXT PRIMARY KEY,
			tenant_id     TEXT NOT NULL,
			user_id       TEXT NOT NULL,
			leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			quantity      TEXT NOT NULL,
			reason        TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL CHECK (status IN ('PENDING','APPROVED','REJECTED','CANCELLED')),
			decided_by    TEXT NOT NULL DEFAULT '',
			decision_note TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL,
			FOREIGN KEY (tenant_id, user_id) REFERENCES users(tenant_id, id),
			CHECK (end_date >= start_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_owner ON requests(tenant_id, user_id, status)`,

		// grant_id is NULL for overdraft draws.
		`CREATE TABLE IF NOT EXISTS entries (
			id            TEXT PRIMARY KEY,
			tenant_id     TEXT NOT NULL,
			user_id       TEXT NOT NULL,
			leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
			request_id    TEXT NOT NULL REFERENCES requests(id),
			grant_id      TEXT REFERENCES grants(id),
			kind          TEXT NOT NULL CHECK (kind IN ('HOLD','RELEASE','CONSUME','REVERSE')),
			quantity      TEXT NOT NULL,
			created_at    TEXT NOT NULL,
			CHECK ((kind IN ('HOLD','CONSUME') AND CAST(quantity AS REAL) > 0)
				OR (kind IN ('RELEASE','REVERSE') AND CAST(quantity AS REAL) < 0))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_owner ON entries(tenant_id, user_id, leave_type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_grant ON entries(grant_id)`,
		// One entry of each kind per (request, grant): a request allocates once.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_once ON entries(request_id, COALESCE(grant_id, ''), kind)`,

		`CREATE TABLE IF NOT EXISTS holidays (
			tenant_id TEXT NOT NULL REFERENCES tenants(id),
			date      TEXT NOT NULL,
			name      TEXT NOT NULL,
			PRIMARY KEY (tenant_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS blackouts (
			id            TEXT PRIMARY KEY,
			tenant_id     TEXT NOT NULL REFERENCES tenants(id),
			leave_type_id TEXT REFERENCES leave_types(id),
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			reason        TEXT NOT NULL,
			CHECK (end_date >= start_date)
		)`,

		// Trigger: entries are append-only
		`CREATE TRIGGER IF NOT EXISTS trg_entries_no_update
		BEFORE UPDATE ON entries
		BEGIN
			SELECT RAISE(ABORT, 'entries are append-only');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_entries_no_delete
		BEFORE DELETE ON entries
		BEGIN
			SELECT RAISE(ABORT, 'entries are append-only');
		END`,

		// Trigger: an entry's grant must belong to the same user and leave type
		`CREATE TRIGGER IF NOT EXISTS trg_entry_grant_owner
		BEFORE INSERT ON entries
		WHEN NEW.grant_id IS NOT NULL AND NOT EXISTS (
			SELECT 1 FROM grants
			WHERE id = NEW.grant_id
				AND tenant_id = NEW.tenant_id
				AND user_id = NEW.user_id
				AND leave_type_id = NEW.leave_type_id
		)
		BEGIN
			SELECT RAISE(ABORT, 'entry grant belongs to another user or leave type');
		END`,

		// Trigger: entries must match their request's owner
		`CREATE TRIGGER IF NOT EXISTS trg_entry_request_owner
		BEFORE INSERT ON entries
		WHEN NOT EXISTS (
			SELECT 1 FROM requests
			WHERE id = NEW.request_id
				AND tenant_id = NEW.tenant_id
				AND user_id = NEW.user_id
				AND leave_type_id = NEW.leave_type_id
		)
		BEGIN
			SELECT RAISE(ABORT, 'entry does not match its request');
		END`,

		// Trigger: a grant that has been drawn on cannot be removed
		`CREATE TRIGGER IF NOT EXISTS trg_grant_in_use
		BEFORE DELETE ON grants
		WHEN EXISTS (SELECT 1 FROM entries WHERE grant_id = OLD.id)
		BEGIN
			SELECT RAISE(ABORT, 'grant has entries');
		END`,

		// Trigger: decided requests are terminal
		`CREATE TRIGGER IF NOT EXISTS trg_request_terminal
		BEFORE UPDATE OF status ON requests
		WHEN OLD.status IN ('REJECTED','CANCELLED')
		BEGIN
			SELECT RAISE(ABORT, 'request is already closed');
		END`,

		// Record schema version
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
