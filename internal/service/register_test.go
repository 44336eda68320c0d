package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/models/dto"
)

func TestRegisterCustomer(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, customerRequest("  Ada@Example.COM ", "+100"))

	base := res.Profile.Base()
	assert.Equal(t, models.RoleCustomer, base.Role)
	assert.Equal(t, "ada@example.com", base.Email)
	assert.True(t, base.IsActive)
	assert.False(t, base.IsEmailVerified)
	assert.NotEqual(t, testPassword, base.PasswordHash)

	session, err := f.svc.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, base.ID, session.AccountID)
	assert.Equal(t, models.RoleCustomer, session.Role)

	raw, err := json.Marshal(res.Profile)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "passwordHash")
	assert.NotContains(t, string(raw), base.PasswordHash)
}

func TestRegisterVendorCreatesStorefront(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, vendorRequest("vee@example.com", "+200", "1234"))

	vendor, ok := res.Profile.(*models.Vendor)
	require.True(t, ok)
	require.NotNil(t, vendor.Storefront)
	assert.Equal(t, vendor.StorefrontID, vendor.Storefront.ID)
	assert.Equal(t, vendor.ID, vendor.Storefront.VendorID)
	assert.Equal(t, "Vee's Noodles", vendor.Storefront.Name)

	stored, err := f.stores.Vendors.FindStorefront(context.Background(), vendor.StorefrontID)
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, stored.VendorID)
}

func TestRegisterVendorAcceptsRestaurantName(t *testing.T) {
	f := newFixture(t)
	req := vendorRequest("vee@example.com", "+200", "1234")
	req.StorefrontName = ""
	req.RestaurantName = "Legacy Diner"

	res := f.register(t, req)
	assert.Equal(t, "Legacy Diner", res.Profile.(*models.Vendor).Storefront.Name)
}

func TestRegisterDeliveryAndAdmin(t *testing.T) {
	f := newFixture(t)

	courier := f.register(t, dto.RegisterRequest{
		Role: "delivery", Name: "Dee", Email: "dee@example.com", PhoneNumber: "+300",
		Password: testPassword, VehicleType: "bike", VehiclePlate: "B-1",
	})
	agent, ok := courier.Profile.(*models.DeliveryAgent)
	require.True(t, ok)
	assert.Equal(t, "+300", agent.Phone)
	assert.Equal(t, models.VehicleInfo{Type: "bike", Plate: "B-1"}, agent.VehicleInfo)

	admin := f.register(t, dto.RegisterRequest{
		Role: "ADMIN", Name: "Root", Email: "root@example.com", Phone: "+400",
		Password: testPassword,
	})
	a, ok := admin.Profile.(*models.Admin)
	require.True(t, ok)
	assert.Empty(t, a.Permissions, "self-registered admins hold no permissions")
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*dto.RegisterRequest)
		want error
	}{
		{"unknown role", func(r *dto.RegisterRequest) { r.Role = "superuser" }, ErrInvalidRole},
		{"missing name", func(r *dto.RegisterRequest) { r.Name = " " }, nil},
		{"missing phone", func(r *dto.RegisterRequest) { r.Phone = "" }, nil},
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, nil},
		{"short password", func(r *dto.RegisterRequest) { r.Password = "short" }, nil},
		{"password beyond bcrypt limit", func(r *dto.RegisterRequest) { r.Password = strings.Repeat("a", 80) }, nil},
		{"pin too short", func(r *dto.RegisterRequest) { r.PIN = "123" }, nil},
		{"pin not digits", func(r *dto.RegisterRequest) { r.PIN = "12a4" }, nil},
		{"no storefront", func(r *dto.RegisterRequest) { r.StorefrontName = "" }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := vendorRequest("vee@example.com", "+200", "1234")
			tc.mut(&req)

			_, err := f.svc.Register(context.Background(), req)
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			} else {
				var e *Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, KindValidation, e.Kind)
			}
			_, ferr := f.stores.Vendors.FindActiveVendor(context.Background())
			assert.Error(t, ferr, "nothing may be persisted")
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, customerRequest("ada@example.com", "+100"))

	_, err := f.svc.Register(context.Background(), customerRequest("ADA@example.com", "+101"))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = f.svc.Register(context.Background(), customerRequest("other@example.com", "+100"))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	// Identity is unique per role only.
	f.register(t, vendorRequest("ada@example.com", "+100", "1234"))
}

func TestRegisterDuplicateVendorLeavesNoStorefront(t *testing.T) {
	f := newFixture(t)
	first := f.register(t, vendorRequest("vee@example.com", "+200", "1234"))

	_, err := f.svc.Register(context.Background(), vendorRequest("new@example.com", "+200", "5678"))
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	active, err := f.stores.Vendors.FindActiveVendor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Profile.Base().ID, active.ID)
}
