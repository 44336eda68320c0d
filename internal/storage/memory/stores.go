package memory

import (
	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// Stores bundles one in-memory store per role.
type Stores struct {
	Customers *AccountStore
	Vendors   *VendorStore
	Delivery  *AccountStore
	Admins    *AccountStore
}

// NewStores returns empty stores for every role.
func NewStores() *Stores {
	return &Stores{
		Customers: NewAccountStore(models.RoleCustomer),
		Vendors:   NewVendorStore(),
		Delivery:  NewAccountStore(models.RoleDelivery),
		Admins:    NewAccountStore(models.RoleAdmin),
	}
}

// Registry exposes the stores through the role registry.
func (s *Stores) Registry() *storage.Registry {
	return storage.NewRegistry(s.Customers, s.Vendors, s.Delivery, s.Admins)
}
