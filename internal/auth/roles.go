package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stringdesk/stringing-service/internal/domain"
	apperrors "github.com/stringdesk/stringing-service/pkg/util/errorutil"
)

// RequireStaffRole ensures the staff principal has one of the allowed roles.
// Managers pass every role check.
func RequireStaffRole(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return apperrors.NewForbidden("staff role required")
		}
		if len(allowedSet) == 0 || principal.Role == domain.StaffRoleManager {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireManager restricts destructive routes.
func RequireManager() fiber.Handler {
	return RequireStaffRole(domain.StaffRoleManager)
}
