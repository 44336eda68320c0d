package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/marketplace-auth/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrWrongAccountType indicates a record of another role was handed to a store.
var ErrWrongAccountType = errors.New("account type does not match store")

// AccountStore captures persistence operations for a single role.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (models.Authenticatable, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (models.Authenticatable, error)
	FindByID(ctx context.Context, id string) (models.Authenticatable, error)
	Create(ctx context.Context, account models.Authenticatable) (models.Authenticatable, error)
	Save(ctx context.Context, account models.Authenticatable) error
}

// VendorStore adds the vendor-only operations. Returned vendors carry their
// Storefront populated.
type VendorStore interface {
	AccountStore
	// CreateWithStorefront writes the vendor and its storefront as one unit:
	// either both records exist afterwards or neither does.
	CreateWithStorefront(ctx context.Context, vendor *models.Vendor, storefront models.Storefront) (*models.Vendor, error)
	// FindActiveVendor returns the single active vendor used for PIN login.
	FindActiveVendor(ctx context.Context) (*models.Vendor, error)
	FindStorefront(ctx context.Context, id string) (models.Storefront, error)
}
