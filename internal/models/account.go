package models

import "time"

// OTPPurpose distinguishes the two independent one-time passcode channels.
type OTPPurpose string

const (
	PurposePasswordReset     OTPPurpose = "password_reset"
	PurposeEmailVerification OTPPurpose = "email_verification"
)

// OTP is a pending one-time passcode. Only the digest of the code is kept.
type OTP struct {
	CodeHash  string
	ExpiresAt time.Time
	Attempts  int
}

// Account captures the fields every role shares. Secrets are never serialized.
type Account struct {
	ID                   string     `json:"id"`
	Role                 Role       `json:"role"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone"`
	PasswordHash         string     `json:"-"`
	IsActive             bool       `json:"isActive"`
	IsEmailVerified      bool       `json:"isEmailVerified"`
	ResetPasswordOTP     *OTP       `json:"-"`
	EmailVerificationOTP *OTP       `json:"-"`
	LastLoginAt          *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Base returns the shared account fields. Embedding Account promotes it, so
// every role type satisfies Authenticatable.
func (a *Account) Base() *Account {
	return a
}

// PendingOTP returns the OTP awaiting verification for purpose, if any.
func (a *Account) PendingOTP(purpose OTPPurpose) *OTP {
	if purpose == PurposeEmailVerification {
		return a.EmailVerificationOTP
	}
	return a.ResetPasswordOTP
}

// SetPendingOTP replaces the OTP for purpose. A nil otp clears the slot.
func (a *Account) SetPendingOTP(purpose OTPPurpose, otp *OTP) {
	if purpose == PurposeEmailVerification {
		a.EmailVerificationOTP = otp
		return
	}
	a.ResetPasswordOTP = otp
}

// Authenticatable is implemented by every role-specific account record.
type Authenticatable interface {
	Base() *Account
}

// Customer is a shopper account.
type Customer struct {
	Account
}

// Vendor owns exactly one Storefront and may sign in with a short PIN.
type Vendor struct {
	Account
	PINHash      string      `json:"-"`
	StorefrontID string      `json:"storefrontId"`
	Storefront   *Storefront `json:"storefront,omitempty"`
}

// VehicleInfo describes the delivery agent's vehicle.
type VehicleInfo struct {
	Type  string `json:"type"`
	Plate string `json:"plate"`
}

// DeliveryAgent is a courier account.
type DeliveryAgent struct {
	Account
	VehicleInfo VehicleInfo `json:"vehicleInfo"`
}

// Admin is a back-office account carrying capability tags.
type Admin struct {
	Account
	Permissions []string `json:"permissions"`
}

// RoleOf reports the role of account, requiring its concrete type and its
// Role field to agree.
func RoleOf(account Authenticatable) (Role, bool) {
	var role Role
	switch account.(type) {
	case *Customer:
		role = RoleCustomer
	case *Vendor:
		role = RoleVendor
	case *DeliveryAgent:
		role = RoleDelivery
	case *Admin:
		role = RoleAdmin
	default:
		return "", false
	}
	return role, account.Base().Role == role
}

// NewForRole returns an empty record of the concrete type backing role.
func NewForRole(role Role) Authenticatable {
	switch role {
	case RoleVendor:
		return &Vendor{Account: Account{Role: role}}
	case RoleDelivery:
		return &DeliveryAgent{Account: Account{Role: role}}
	case RoleAdmin:
		return &Admin{Account: Account{Role: role}}
	default:
		return &Customer{Account: Account{Role: RoleCustomer}}
	}
}
