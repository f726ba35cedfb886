package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
)

func (r *Router) registerIntegrationRoutes(
	appts fiber.Router,
	ih *handler.IntegrationHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	integrations := appts.Group("/integrations")

	integrations.Get("/status", requirePerm(authorize.ResourceIntegration, authorize.ActionRead), ih.Status)
	integrations.Get("/google/auth-url", requirePerm(authorize.ResourceIntegration, authorize.ActionManage), ih.GoogleAuthURL)
	integrations.Post("/google/auth", requirePerm(authorize.ResourceIntegration, authorize.ActionManage), ih.GoogleAuth)
}
