package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// Ensure AccountStore satisfies the storage.AccountStore interface at compile time.
var _ storage.AccountStore = (*AccountStore)(nil)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AccountStore provides Postgres-backed persistence for one role.
type AccountStore struct {
	pool  *pgxpool.Pool
	table accountTable

	selectSQL string
	insertSQL string
	updateSQL string
}

func newAccountStore(pool *pgxpool.Pool, table accountTable) *AccountStore {
	cols := table.columns()
	list := strings.Join(cols, ", ")

	placeholders := make([]string, len(cols))
	assignments := make([]string, 0, len(cols)-1)
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if i > 0 {
			assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
		}
	}

	return &AccountStore{
		pool:      pool,
		table:     table,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", list, table.name),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s", table.name, list, strings.Join(placeholders, ", "), list),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", table.name, strings.Join(assignments, ", ")),
	}
}

// FindByEmail fetches an account by email address.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (models.Authenticatable, error) {
	row := s.pool.QueryRow(ctx, s.selectSQL+` WHERE lower(email) = lower($1)`, email)
	return s.scan(row)
}

// FindByEmailOrPhone fetches the first account matching either identifier.
func (s *AccountStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (models.Authenticatable, error) {
	row := s.pool.QueryRow(ctx, s.selectSQL+` WHERE lower(email) = lower($1) OR phone = $2 LIMIT 1`, email, phone)
	return s.scan(row)
}

// FindByID fetches an account by id.
func (s *AccountStore) FindByID(ctx context.Context, id string) (models.Authenticatable, error) {
	row := s.pool.QueryRow(ctx, s.selectSQL+` WHERE id = $1`, id)
	return s.scan(row)
}

// Create inserts a new account row.
func (s *AccountStore) Create(ctx context.Context, account models.Authenticatable) (models.Authenticatable, error) {
	return s.create(ctx, s.pool, account)
}

// Save writes every mutable column of an existing account.
func (s *AccountStore) Save(ctx context.Context, account models.Authenticatable) error {
	if roleMismatch(s.table, account) {
		return storage.ErrWrongAccountType
	}
	tag, err := s.pool.Exec(ctx, s.updateSQL, s.args(account)...)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update %s: %w", s.table.name, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *AccountStore) create(ctx context.Context, q querier, account models.Authenticatable) (models.Authenticatable, error) {
	if roleMismatch(s.table, account) {
		return nil, storage.ErrWrongAccountType
	}
	base := account.Base()
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now().UTC()
	}
	created, err := s.scan(q.QueryRow(ctx, s.insertSQL, s.args(account)...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert %s: %w", s.table.name, err)
	}
	return created, nil
}

type otpColumns struct {
	hash      *string
	expiresAt *time.Time
	attempts  int32
}

func (c otpColumns) otp() *models.OTP {
	if c.hash == nil || c.expiresAt == nil {
		return nil
	}
	return &models.OTP{CodeHash: *c.hash, ExpiresAt: *c.expiresAt, Attempts: int(c.attempts)}
}

func otpArgs(otp *models.OTP) []any {
	if otp == nil {
		return []any{nil, nil, 0}
	}
	return []any{otp.CodeHash, otp.ExpiresAt, otp.Attempts}
}

func (s *AccountStore) scan(row pgx.Row) (models.Authenticatable, error) {
	account := models.NewForRole(s.table.role)
	base := account.Base()
	var reset, verify otpColumns

	dest := []any{
		&base.ID, &base.Name, &base.Email, &base.Phone, &base.PasswordHash, &base.IsActive, &base.IsEmailVerified,
		&reset.hash, &reset.expiresAt, &reset.attempts,
		&verify.hash, &verify.expiresAt, &verify.attempts,
		&base.LastLoginAt, &base.CreatedAt,
	}
	dest = append(dest, s.table.extraDest(account)...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	base.ResetPasswordOTP = reset.otp()
	base.EmailVerificationOTP = verify.otp()
	return account, nil
}

func (s *AccountStore) args(account models.Authenticatable) []any {
	base := account.Base()
	args := []any{base.ID, base.Name, base.Email, base.Phone, base.PasswordHash, base.IsActive, base.IsEmailVerified}
	args = append(args, otpArgs(base.ResetPasswordOTP)...)
	args = append(args, otpArgs(base.EmailVerificationOTP)...)
	args = append(args, base.LastLoginAt, base.CreatedAt)
	return append(args, s.table.extraArgs(account)...)
}
