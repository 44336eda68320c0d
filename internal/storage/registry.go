package storage

import "github.com/hongminglow/marketplace-auth/internal/models"

// Registry maps each role to the store that persists its accounts.
type Registry struct {
	stores  map[models.Role]AccountStore
	vendors VendorStore
}

// NewRegistry builds the fixed role table.
func NewRegistry(customers AccountStore, vendors VendorStore, delivery AccountStore, admins AccountStore) *Registry {
	return &Registry{
		stores: map[models.Role]AccountStore{
			models.RoleCustomer: customers,
			models.RoleVendor:   vendors,
			models.RoleDelivery: delivery,
			models.RoleAdmin:    admins,
		},
		vendors: vendors,
	}
}

// Resolve returns the store for role. Unknown roles report false.
func (r *Registry) Resolve(role models.Role) (AccountStore, bool) {
	store, ok := r.stores[role]
	return store, ok
}

// Vendors returns the vendor store with its storefront operations.
func (r *Registry) Vendors() VendorStore {
	return r.vendors
}
