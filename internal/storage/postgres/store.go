package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// Store owns the connection pool shared by every role's account store.
type Store struct {
	pool *pgxpool.Pool

	Customers *AccountStore
	Vendors   *VendorStore
	Delivery  *AccountStore
	Admins    *AccountStore
}

// NewStore connects to Postgres, runs migrations and builds the role stores.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{
		pool:      pool,
		Customers: newAccountStore(pool, customerTable),
		Vendors:   &VendorStore{AccountStore: newAccountStore(pool, vendorTable)},
		Delivery:  newAccountStore(pool, deliveryTable),
		Admins:    newAccountStore(pool, adminTable),
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Registry exposes the stores through the role registry.
func (s *Store) Registry() *storage.Registry {
	return storage.NewRegistry(s.Customers, s.Vendors, s.Delivery, s.Admins)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (` + commonColumnsDDL + `);`,
		`CREATE TABLE IF NOT EXISTS vendors (` + commonColumnsDDL + `,
			pin_hash TEXT NOT NULL DEFAULT '',
			storefront_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS storefronts (
			id TEXT PRIMARY KEY,
			vendor_id TEXT NOT NULL UNIQUE REFERENCES vendors(id),
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS delivery_agents (` + commonColumnsDDL + `,
			vehicle_type TEXT NOT NULL DEFAULT '',
			vehicle_plate TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS admins (` + commonColumnsDDL + `,
			permissions TEXT[] NOT NULL DEFAULT '{}'
		);`,
	}
	for _, table := range []string{"customers", "vendors", "delivery_agents", "admins"} {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_email_unique_idx ON %[1]s (lower(email));`, table),
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_phone_unique_idx ON %[1]s (phone);`, table),
		)
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const commonColumnsDDL = `
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	reset_otp_hash TEXT,
	reset_otp_expires_at TIMESTAMPTZ,
	reset_otp_attempts INTEGER NOT NULL DEFAULT 0,
	verify_otp_hash TEXT,
	verify_otp_expires_at TIMESTAMPTZ,
	verify_otp_attempts INTEGER NOT NULL DEFAULT 0,
	last_login_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func roleMismatch(table accountTable, account models.Authenticatable) bool {
	role, ok := models.RoleOf(account)
	return !ok || role != table.role
}
