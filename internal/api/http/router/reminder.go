package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
)

func (r *Router) registerReminderRoutes(
	appts fiber.Router,
	rh *handler.ReminderHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts.Post("/reminders/daily", requirePerm(authorize.ResourceReminder, authorize.ActionExecute), rh.SendDaily)
}
