package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// pinThrottleKey is the throttle identifier shared by all PIN attempts of a role.
const pinThrottleKey = "#pin"

// Login authenticates by email and password. Unknown, inactive and wrong
// password all fail with the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, roleTag, email, password string) (AuthResult, error) {
	role, store, rerr := s.resolve(roleTag)
	if rerr != nil {
		return AuthResult{}, rerr
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, validationError("email and password are required")
	}
	if terr := s.checkLogin(ctx, role, email); terr != nil {
		return AuthResult{}, terr
	}

	account, err := findActive(ctx, store, email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return AuthResult{}, unexpected("login lookup "+role.String(), err)
		}
		s.hasher.Burn(password)
		s.recordLoginFailure(ctx, role, email)
		return AuthResult{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, account.Base().PasswordHash) {
		s.recordLoginFailure(ctx, role, email)
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := s.markLoggedIn(ctx, store, account); err != nil {
		return AuthResult{}, unexpected("login save "+role.String(), err)
	}
	s.resetLogin(ctx, role, email)
	return s.issue("login token", account)
}

// LoginWithPIN opens a vendor session for the active vendor or a synthetic
// admin session. Every other role, and any mismatch, fails with ErrInvalidPIN.
func (s *AuthService) LoginWithPIN(ctx context.Context, roleTag, pin string) (AuthResult, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return AuthResult{}, validationError("pin is required")
	}
	role, ok := models.ParseRole(roleTag)
	if !ok {
		return AuthResult{}, ErrInvalidPIN
	}
	if terr := s.checkLogin(ctx, role, pinThrottleKey); terr != nil {
		return AuthResult{}, terr
	}

	switch role {
	case models.RoleVendor:
		return s.vendorPINLogin(ctx, pin)
	case models.RoleAdmin:
		if s.adminPIN == "" || subtle.ConstantTimeCompare([]byte(pin), []byte(s.adminPIN)) != 1 {
			s.recordLoginFailure(ctx, role, pinThrottleKey)
			return AuthResult{}, ErrInvalidPIN
		}
		s.resetLogin(ctx, role, pinThrottleKey)
		return s.issue("admin pin token", syntheticAdmin())
	default:
		// Delivery agents used to sign in by PIN; the path is closed by policy.
		s.recordLoginFailure(ctx, role, pinThrottleKey)
		return AuthResult{}, ErrInvalidPIN
	}
}

func (s *AuthService) vendorPINLogin(ctx context.Context, pin string) (AuthResult, error) {
	vendors := s.registry.Vendors()
	vendor, err := vendors.FindActiveVendor(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return AuthResult{}, unexpected("vendor pin lookup", err)
		}
		s.hasher.Burn(pin)
		s.recordLoginFailure(ctx, models.RoleVendor, pinThrottleKey)
		return AuthResult{}, ErrInvalidPIN
	}
	if !s.hasher.Verify(pin, vendor.PINHash) {
		s.recordLoginFailure(ctx, models.RoleVendor, pinThrottleKey)
		return AuthResult{}, ErrInvalidPIN
	}
	if err := s.markLoggedIn(ctx, vendors, vendor); err != nil {
		return AuthResult{}, unexpected("vendor pin save", err)
	}
	s.resetLogin(ctx, models.RoleVendor, pinThrottleKey)
	return s.issue("vendor pin token", vendor)
}

func (s *AuthService) markLoggedIn(ctx context.Context, store storage.AccountStore, account models.Authenticatable) error {
	now := s.now().UTC()
	account.Base().LastLoginAt = &now
	return store.Save(ctx, account)
}

func syntheticAdmin() *models.Admin {
	return &models.Admin{
		Account: models.Account{
			ID:              SyntheticAdminID,
			Role:            models.RoleAdmin,
			Name:            "Administrator",
			IsActive:        true,
			IsEmailVerified: true,
		},
		Permissions: []string{"*"},
	}
}

func (s *AuthService) checkLogin(ctx context.Context, role models.Role, identifier string) *Error {
	if s.throttle == nil {
		return nil
	}
	return throttled("login throttle", s.throttle.CheckLogin(ctx, role.String(), identifier))
}

func (s *AuthService) recordLoginFailure(ctx context.Context, role models.Role, identifier string) {
	if s.throttle == nil {
		return
	}
	_ = throttled("login throttle", s.throttle.RecordLoginFailure(ctx, role.String(), identifier))
}

func (s *AuthService) resetLogin(ctx context.Context, role models.Role, identifier string) {
	if s.throttle == nil {
		return
	}
	_ = throttled("login throttle", s.throttle.ResetLogin(ctx, role.String(), identifier))
}
