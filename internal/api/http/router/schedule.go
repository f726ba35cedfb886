package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
)

func (r *Router) registerScheduleRoutes(
	appts fiber.Router,
	sh *handler.ScheduleHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts.Get("/nutritionist/schedule", requirePerm(authorize.ResourceSchedule, authorize.ActionRead), sh.Get)
}
