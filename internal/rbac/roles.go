package rbac

import "storefront/internal/auth"

// Role names. These only label the admin flag in responses and audit records;
// authorization decisions read Claims.IsAdmin directly.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

func RoleOf(isAdmin bool) string {
	if isAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

func RoleOfClaims(c auth.Claims) string { return RoleOf(c.IsAdmin) }
