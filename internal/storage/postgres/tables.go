package postgres

import "github.com/hongminglow/marketplace-auth/internal/models"

// accountTable describes how one role maps onto its table. Role-specific
// columns follow the shared ones in both reads and writes.
type accountTable struct {
	name         string
	role         models.Role
	extraColumns []string
	extraDest    func(models.Authenticatable) []any
	extraArgs    func(models.Authenticatable) []any
}

var customerTable = accountTable{
	name:      "customers",
	role:      models.RoleCustomer,
	extraDest: func(models.Authenticatable) []any { return nil },
	extraArgs: func(models.Authenticatable) []any { return nil },
}

var vendorTable = accountTable{
	name:         "vendors",
	role:         models.RoleVendor,
	extraColumns: []string{"pin_hash", "storefront_id"},
	extraDest: func(acc models.Authenticatable) []any {
		v := acc.(*models.Vendor)
		return []any{&v.PINHash, &v.StorefrontID}
	},
	extraArgs: func(acc models.Authenticatable) []any {
		v := acc.(*models.Vendor)
		return []any{v.PINHash, v.StorefrontID}
	},
}

var deliveryTable = accountTable{
	name:         "delivery_agents",
	role:         models.RoleDelivery,
	extraColumns: []string{"vehicle_type", "vehicle_plate"},
	extraDest: func(acc models.Authenticatable) []any {
		d := acc.(*models.DeliveryAgent)
		return []any{&d.VehicleInfo.Type, &d.VehicleInfo.Plate}
	},
	extraArgs: func(acc models.Authenticatable) []any {
		d := acc.(*models.DeliveryAgent)
		return []any{d.VehicleInfo.Type, d.VehicleInfo.Plate}
	},
}

var adminTable = accountTable{
	name:         "admins",
	role:         models.RoleAdmin,
	extraColumns: []string{"permissions"},
	extraDest: func(acc models.Authenticatable) []any {
		a := acc.(*models.Admin)
		return []any{&a.Permissions}
	},
	extraArgs: func(acc models.Authenticatable) []any {
		a := acc.(*models.Admin)
		permissions := a.Permissions
		if permissions == nil {
			permissions = []string{}
		}
		return []any{permissions}
	},
}

var commonColumns = []string{
	"id", "name", "email", "phone", "password_hash", "is_active", "is_email_verified",
	"reset_otp_hash", "reset_otp_expires_at", "reset_otp_attempts",
	"verify_otp_hash", "verify_otp_expires_at", "verify_otp_attempts",
	"last_login_at", "created_at",
}

func (t accountTable) columns() []string {
	return append(append([]string(nil), commonColumns...), t.extraColumns...)
}
