package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
)

// RequirePermission checks the caller's role claim against the casbin
// policy. It must run after AuthRequired.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		err := authorize.EnforceContext(c.Context(), auth, resource, action)
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, authorize.ErrNoSubjectInContext):
			return fiber.ErrUnauthorized
		case errors.Is(err, authorize.ErrForbidden):
			return fiber.ErrForbidden
		default:
			return err
		}
	}
}
