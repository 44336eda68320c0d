package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/models/dto"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// Register creates an account for the requested role and opens a session.
// Vendors are created together with their storefront.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (AuthResult, error) {
	role, store, rerr := s.resolve(req.Role)
	if rerr != nil {
		return AuthResult{}, rerr
	}
	email := normalizeEmail(req.Email)
	phone := normalizePhone(req)
	if verr := validateRegistration(role, req, email, phone); verr != nil {
		return AuthResult{}, verr
	}

	_, err := store.FindByEmailOrPhone(ctx, email, phone)
	switch {
	case err == nil:
		return AuthResult{}, ErrDuplicateIdentity
	case !errors.Is(err, storage.ErrNotFound):
		return AuthResult{}, unexpected("register lookup "+role.String(), err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResult{}, unexpected("register hash", err)
	}

	base := models.Account{
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	var created models.Authenticatable
	switch role {
	case models.RoleVendor:
		created, err = s.registerVendor(ctx, base, req)
	case models.RoleDelivery:
		created, err = store.Create(ctx, &models.DeliveryAgent{
			Account: base,
			VehicleInfo: models.VehicleInfo{
				Type:  strings.TrimSpace(req.VehicleType),
				Plate: strings.TrimSpace(req.VehiclePlate),
			},
		})
	case models.RoleAdmin:
		// Self-registered admins start without permissions; grants are made out of band.
		created, err = store.Create(ctx, &models.Admin{Account: base, Permissions: []string{}})
	default:
		created, err = store.Create(ctx, &models.Customer{Account: base})
	}
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return AuthResult{}, ErrDuplicateIdentity
		}
		return AuthResult{}, unexpected("register create "+role.String(), err)
	}

	return s.issue("register token", created)
}

func (s *AuthService) registerVendor(ctx context.Context, base models.Account, req dto.RegisterRequest) (models.Authenticatable, error) {
	pinHash, err := s.hasher.Hash(req.PIN)
	if err != nil {
		return nil, err
	}
	storefront := models.Storefront{
		Name:      storefrontName(req),
		Address:   strings.TrimSpace(req.StorefrontAddress),
		Location:  models.GeoPoint{},
		CreatedAt: base.CreatedAt,
	}
	return s.registry.Vendors().CreateWithStorefront(ctx, &models.Vendor{Account: base, PINHash: pinHash}, storefront)
}

func validateRegistration(role models.Role, req dto.RegisterRequest, email, phone string) *Error {
	if strings.TrimSpace(req.Name) == "" || phone == "" {
		return validationError("name, email, and phone are required")
	}
	if verr := validateEmail(email); verr != nil {
		return verr
	}
	if verr := validatePassword(req.Password); verr != nil {
		return verr
	}
	if role == models.RoleVendor {
		if !pinPattern.MatchString(req.PIN) {
			return validationError("pin must be exactly 4 digits")
		}
		if storefrontName(req) == "" {
			return validationError("storefront name is required")
		}
	}
	return nil
}

func normalizePhone(req dto.RegisterRequest) string {
	if trimmed := strings.TrimSpace(req.Phone); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(req.PhoneNumber)
}

func storefrontName(req dto.RegisterRequest) string {
	if trimmed := strings.TrimSpace(req.StorefrontName); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(req.RestaurantName)
}
