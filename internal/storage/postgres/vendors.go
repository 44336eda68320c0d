package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

var _ storage.VendorStore = (*VendorStore)(nil)

// VendorStore persists vendors and their storefronts.
type VendorStore struct {
	*AccountStore
}

const storefrontColumns = `id, vendor_id, name, address, latitude, longitude, created_at`

// FindByEmail fetches a vendor by email with its storefront attached.
func (s *VendorStore) FindByEmail(ctx context.Context, email string) (models.Authenticatable, error) {
	acc, err := s.AccountStore.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, acc)
}

// FindByEmailOrPhone fetches a vendor matching either identifier.
func (s *VendorStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (models.Authenticatable, error) {
	acc, err := s.AccountStore.FindByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, acc)
}

// FindByID fetches a vendor by id.
func (s *VendorStore) FindByID(ctx context.Context, id string) (models.Authenticatable, error) {
	acc, err := s.AccountStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, acc)
}

// FindActiveVendor returns the earliest registered active vendor.
func (s *VendorStore) FindActiveVendor(ctx context.Context) (*models.Vendor, error) {
	row := s.pool.QueryRow(ctx, s.selectSQL+` WHERE is_active ORDER BY created_at ASC LIMIT 1`)
	acc, err := s.scan(row)
	if err != nil {
		return nil, err
	}
	attached, err := s.attach(ctx, acc)
	if err != nil {
		return nil, err
	}
	return attached.(*models.Vendor), nil
}

// FindStorefront fetches a storefront by id.
func (s *VendorStore) FindStorefront(ctx context.Context, id string) (models.Storefront, error) {
	return scanStorefront(s.pool.QueryRow(ctx, `SELECT `+storefrontColumns+` FROM storefronts WHERE id = $1`, id))
}

// CreateWithStorefront inserts the vendor and its storefront in one transaction.
func (s *VendorStore) CreateWithStorefront(ctx context.Context, vendor *models.Vendor, storefront models.Storefront) (*models.Vendor, error) {
	linked := *vendor
	linked.Storefront = nil
	if linked.ID == "" {
		linked.ID = uuid.NewString()
	}
	if storefront.ID == "" {
		storefront.ID = uuid.NewString()
	}
	if storefront.CreatedAt.IsZero() {
		storefront.CreatedAt = time.Now().UTC()
	}
	storefront.VendorID = linked.ID
	linked.StorefrontID = storefront.ID

	var created models.Authenticatable
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		created, err = s.create(ctx, tx, &linked)
		if err != nil {
			return err
		}
		storefront, err = scanStorefront(tx.QueryRow(ctx,
			`INSERT INTO storefronts (`+storefrontColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+storefrontColumns,
			storefront.ID, storefront.VendorID, storefront.Name, storefront.Address,
			storefront.Location.Lat, storefront.Location.Lng, storefront.CreatedAt,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert storefront: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := created.(*models.Vendor)
	out.Storefront = &storefront
	return out, nil
}

func (s *VendorStore) attach(ctx context.Context, acc models.Authenticatable) (models.Authenticatable, error) {
	vendor := acc.(*models.Vendor)
	if vendor.StorefrontID == "" {
		return vendor, nil
	}
	sf, err := s.FindStorefront(ctx, vendor.StorefrontID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return vendor, nil
	case err != nil:
		return nil, fmt.Errorf("load storefront %s: %w", vendor.StorefrontID, err)
	}
	vendor.Storefront = &sf
	return vendor, nil
}

func scanStorefront(row pgx.Row) (models.Storefront, error) {
	var sf models.Storefront
	if err := row.Scan(&sf.ID, &sf.VendorID, &sf.Name, &sf.Address, &sf.Location.Lat, &sf.Location.Lng, &sf.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Storefront{}, storage.ErrNotFound
		}
		return models.Storefront{}, err
	}
	return sf, nil
}
