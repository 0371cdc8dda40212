// Package authz implements the operation-level pre-flight checks feature code
// runs before issuing state-changing calls. These are UX-layer checks over
// unverified client-side data; the backend performs the authoritative ones.
package authz

import (
	"fmt"
	"time"

	"unimart/internal/identity"
	"unimart/internal/token"
	dErrors "unimart/pkg/domain-errors"
)

// Operation names a sensitive state-changing action subject to the
// permission table, independent of route-level guarding.
type Operation string

const (
	OpCreateProduct Operation = "CREATE_PRODUCT"
	OpUpdateProduct Operation = "UPDATE_PRODUCT"
	OpDeleteProduct Operation = "DELETE_PRODUCT"
	OpMakePurchase  Operation = "MAKE_PURCHASE"
	OpDeleteUser    Operation = "DELETE_USER"
	OpViewAllUsers  Operation = "VIEW_ALL_USERS"
)

// SensitiveOperationMaxAge is how old a credential may be before sensitive
// operations demand a fresh login.
const SensitiveOperationMaxAge = time.Hour

// operationRoles is the static permission table. Listing and buying belong
// to students; moderation and user administration to admins and above.
// Operations absent from the table are not restricted here.
var operationRoles = map[Operation][]identity.Role{
	OpCreateProduct: {identity.RoleStudent},
	OpUpdateProduct: {identity.RoleStudent},
	OpMakePurchase:  {identity.RoleStudent},
	OpDeleteProduct: {identity.RoleAdmin, identity.RoleSuperAdmin},
	OpDeleteUser:    {identity.RoleAdmin, identity.RoleSuperAdmin},
	OpViewAllUsers:  {identity.RoleAdmin, identity.RoleSuperAdmin},
}

// RolesFor returns the set of roles permitted to perform op; nil when the
// operation is unrestricted.
func RolesFor(op Operation) []identity.Role {
	return operationRoles[op]
}

// Allowed compares tiers directly: the current role's privilege level must
// meet or exceed the required one. Unknown roles sit at level 0, so an
// unknown requirement passes for everyone and an unknown holder fails
// everything above nothing.
func Allowed(required, current identity.Role) bool {
	return current.Level() >= required.Level()
}

// ValidateSensitiveOperation runs the pre-flight checks, in order: the
// credential must pass the structural check, must be younger than
// SensitiveOperationMaxAge, and the role must be in the operation's allowed
// set. Every failure is a coded error so callers cannot ignore it silently.
func ValidateSensitiveOperation(op Operation, role identity.Role, rawToken string) error {
	if !token.Valid(rawToken) {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token for sensitive operation")
	}

	if token.Age(rawToken) > SensitiveOperationMaxAge {
		return dErrors.New(dErrors.CodeStaleCredential, "token too old for sensitive operation, please re-authenticate")
	}

	allowedRoles, restricted := operationRoles[op]
	if !restricted {
		return nil
	}
	for _, allowed := range allowedRoles {
		if role == allowed {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("insufficient permissions for operation: %s", op))
}
