package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	appts fiber.Router,
	ah *handler.AppointmentHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts.Post("/request", requirePerm(authorize.ResourceAppointment, authorize.ActionRequest), ah.Request)
	appts.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)
	appts.Post("/", requirePerm(authorize.ResourceAppointment, authorize.ActionCreate), ah.CreateDirect)

	a := appts.Group("/:id")
	a.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionRead), ah.Get)
	a.Put("/", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Update)
	a.Delete("/", requirePerm(authorize.ResourceAppointment, authorize.ActionCancel), ah.Cancel)
	a.Patch("/approve", requirePerm(authorize.ResourceAppointment, authorize.ActionApprove), ah.Approve)
	a.Patch("/reject", requirePerm(authorize.ResourceAppointment, authorize.ActionReject), ah.Reject)
	a.Patch("/complete", requirePerm(authorize.ResourceAppointment, authorize.ActionComplete), ah.Complete)
}
