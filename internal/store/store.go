package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type GrantFilter struct {
	TenantID    string
	UserID      string
	LeaveTypeID string
	Limit       int
	Offset      int
}

type RequestFilter struct {
	TenantID    string
	UserID      string
	LeaveTypeID string
	Status      leave.RequestStatus
	Limit       int
	Offset      int
}

type EntryFilter struct {
	TenantID  string
	UserID    string
	RequestID string
	Limit     int
	Offset    int
}

type Store struct {
	writer  *sql.DB
	reader  *sql.DB
	weekend []time.Weekday
	log     *zap.Logger
}

type Option func(*Store)

// WithWeekend sets the non-working weekdays used to build tenant calendars.
func WithWeekend(days []time.Weekday) Option {
	return func(s *Store) {
		if len(days) > 0 {
			s.weekend = days
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func Open(dbPath string, opts ...Option) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader, weekend: leave.DefaultWeekend, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// queryer is satisfied by *sql.DB and *sql.Tx so reads can run inside the
// writer transaction when a decision depends on them.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

func parseDate(s string) (leave.Date, error) {
	if s == "" {
		return leave.Date{}, nil
	}
	return leave.ParseDate(s)
}

func nullDate(d *leave.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func paginate(query string, limit, offset int) string {
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
		if offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, offset)
		}
	}
	return query
}

func isUnique(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed")
}

// constraintErr turns SQLite constraint failures into domain errors.
func constraintErr(op string, err error) error {
	switch {
	case isUnique(err):
		return fmt.Errorf("%s: %w", op, leave.ErrDuplicate)
	case strings.Contains(err.Error(), "grant has entries"):
		return fmt.Errorf("%s: %w", op, leave.ErrGrantInUse)
	}
	return fmt.Errorf("%s: %w", op, err)
}
