package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

func newVendor(email, phone string) *models.Vendor {
	return &models.Vendor{Account: models.Account{
		Role:     models.RoleVendor,
		Name:     "Noodle Bar",
		Email:    email,
		Phone:    phone,
		IsActive: true,
	}}
}

func TestCreateWithStorefrontLinksBothRecords(t *testing.T) {
	ctx := context.Background()
	store := NewVendorStore()

	created, err := store.CreateWithStorefront(ctx, newVendor("v@x.com", "111"), models.Storefront{Name: "Noodle Bar"})
	require.NoError(t, err)
	require.NotNil(t, created.Storefront)
	assert.NotEmpty(t, created.StorefrontID)
	assert.Equal(t, created.StorefrontID, created.Storefront.ID)
	assert.Equal(t, created.ID, created.Storefront.VendorID)

	sf, err := store.FindStorefront(ctx, created.StorefrontID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, sf.VendorID)

	found, err := store.FindByEmail(ctx, "v@x.com")
	require.NoError(t, err)
	vendor := found.(*models.Vendor)
	require.NotNil(t, vendor.Storefront)
	assert.Equal(t, "Noodle Bar", vendor.Storefront.Name)
}

func TestCreateWithStorefrontLeavesNothingOnConflict(t *testing.T) {
	ctx := context.Background()
	store := NewVendorStore()
	_, err := store.CreateWithStorefront(ctx, newVendor("v@x.com", "111"), models.Storefront{Name: "First"})
	require.NoError(t, err)

	_, err = store.CreateWithStorefront(ctx, newVendor("w@x.com", "111"), models.Storefront{ID: "sf-2", Name: "Second"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = store.FindStorefront(ctx, "sf-2")
	assert.ErrorIs(t, err, storage.ErrNotFound, "storefront must not outlive a failed vendor insert")
}

func TestFindActiveVendor(t *testing.T) {
	ctx := context.Background()
	store := NewVendorStore()

	_, err := store.FindActiveVendor(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	inactive := newVendor("old@x.com", "1")
	inactive.IsActive = false
	_, err = store.CreateWithStorefront(ctx, inactive, models.Storefront{Name: "Old"})
	require.NoError(t, err)
	active, err := store.CreateWithStorefront(ctx, newVendor("new@x.com", "2"), models.Storefront{Name: "New"})
	require.NoError(t, err)

	got, err := store.FindActiveVendor(ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
	require.NotNil(t, got.Storefront)
	assert.Equal(t, "New", got.Storefront.Name)
}

func TestVendorSaveKeepsStorefront(t *testing.T) {
	ctx := context.Background()
	store := NewVendorStore()
	created, err := store.CreateWithStorefront(ctx, newVendor("v@x.com", "111"), models.Storefront{Name: "Noodle Bar"})
	require.NoError(t, err)

	created.Storefront.Name = "Renamed"
	created.IsEmailVerified = true
	require.NoError(t, store.Save(ctx, created))

	found, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	vendor := found.(*models.Vendor)
	assert.True(t, vendor.IsEmailVerified)
	assert.Equal(t, "Noodle Bar", vendor.Storefront.Name)
}
