package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// VendorStore keeps vendors and their storefronts behind one lock.
type VendorStore struct {
	*AccountStore
	storefronts map[string]models.Storefront
}

// NewVendorStore returns an empty vendor store.
func NewVendorStore() *VendorStore {
	return &VendorStore{
		AccountStore: NewAccountStore(models.RoleVendor),
		storefronts:  map[string]models.Storefront{},
	}
}

// FindByEmail fetches a vendor by email with its storefront attached.
func (s *VendorStore) FindByEmail(ctx context.Context, email string) (models.Authenticatable, error) {
	acc, err := s.AccountStore.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.attach(acc), nil
}

// FindByEmailOrPhone fetches a vendor matching either identifier.
func (s *VendorStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (models.Authenticatable, error) {
	acc, err := s.AccountStore.FindByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	return s.attach(acc), nil
}

// FindByID fetches a vendor by id.
func (s *VendorStore) FindByID(ctx context.Context, id string) (models.Authenticatable, error) {
	acc, err := s.AccountStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attach(acc), nil
}

// CreateWithStorefront inserts both records under a single lock.
func (s *VendorStore) CreateWithStorefront(ctx context.Context, vendor *models.Vendor, storefront models.Storefront) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	linked := *vendor
	linked.Storefront = nil
	if linked.ID == "" {
		linked.ID = uuid.NewString()
	}
	if storefront.ID == "" {
		storefront.ID = uuid.NewString()
	}
	if _, taken := s.storefronts[storefront.ID]; taken {
		return nil, storage.ErrAlreadyExists
	}
	storefront.VendorID = linked.ID
	if storefront.CreatedAt.IsZero() {
		storefront.CreatedAt = time.Now().UTC()
	}
	linked.StorefrontID = storefront.ID

	created, err := s.insertLocked(&linked)
	if err != nil {
		return nil, err
	}
	s.storefronts[storefront.ID] = storefront

	out := created.(*models.Vendor)
	sf := storefront
	out.Storefront = &sf
	return out, nil
}

// FindActiveVendor returns the earliest registered active vendor.
func (s *VendorStore) FindActiveVendor(ctx context.Context) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		acc := s.byID[id]
		if acc.Base().IsActive {
			return s.attachLocked(cloneAccount(acc)).(*models.Vendor), nil
		}
	}
	return nil, storage.ErrNotFound
}

// FindStorefront fetches a storefront by id.
func (s *VendorStore) FindStorefront(ctx context.Context, id string) (models.Storefront, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sf, ok := s.storefronts[id]
	if !ok {
		return models.Storefront{}, storage.ErrNotFound
	}
	return sf, nil
}

// Save replaces the stored vendor. The storefront itself is not modified.
func (s *VendorStore) Save(ctx context.Context, account models.Authenticatable) error {
	if vendor, ok := account.(*models.Vendor); ok {
		stripped := *vendor
		stripped.Storefront = nil
		account = &stripped
	}
	return s.AccountStore.Save(ctx, account)
}

func (s *VendorStore) attach(acc models.Authenticatable) models.Authenticatable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attachLocked(acc)
}

func (s *VendorStore) attachLocked(acc models.Authenticatable) models.Authenticatable {
	vendor, ok := acc.(*models.Vendor)
	if !ok {
		return acc
	}
	if sf, found := s.storefronts[vendor.StorefrontID]; found {
		vendor.Storefront = &sf
	}
	return vendor
}
