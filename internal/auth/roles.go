package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/recruitment-service/internal/domain"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireSupervisor ensures the caller belongs to a supervisor or admin group.
func RequireSupervisor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsSupervisor() {
			return apperrors.NewForbidden("supervisor access required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller belongs to an admin group.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsAdmin() {
			return apperrors.NewForbidden("admin access required")
		}
		return c.Next()
	}
}

// RequirePermission ensures one of the caller's groups grants code.
func RequirePermission(code domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Can(code) {
			return apperrors.NewForbidden("missing permission " + string(code))
		}
		return c.Next()
	}
}
