package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/pkg/reqctx"
	"github.com/Alijeyrad/nutriplan_backend/pkg/token"
)

// AuthRequired validates a Bearer JWT access token.
// On success, stores *token.Claims in c.Locals(token.CtxKeyClaims) and on the
// request context for the services.
func AuthRequired(mgr *token.Manager) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.ErrUnauthorized
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(token.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}
