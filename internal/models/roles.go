package models

import "strings"

// Role identifies one of the four actor types on the marketplace.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDelivery Role = "delivery"
	RoleAdmin    Role = "admin"
)

// Roles lists every supported role in registry order.
var Roles = []Role{RoleCustomer, RoleVendor, RoleDelivery, RoleAdmin}

// ParseRole normalizes a role tag and reports whether it belongs to the closed set.
func ParseRole(tag string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(tag)))
	switch role {
	case RoleCustomer, RoleVendor, RoleDelivery, RoleAdmin:
		return role, true
	}
	return "", false
}

// SupportsOTPFlows reports whether password reset and email verification by OTP
// are available to the role. Admins are excluded by policy.
func (r Role) SupportsOTPFlows() bool {
	return r != RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
