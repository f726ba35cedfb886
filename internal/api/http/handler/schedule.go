package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/internal/service/scheduling"
)

type ScheduleHandler struct {
	svc scheduling.Service
}

func NewScheduleHandler(svc scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrInvalidDate):
		return badRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrNutritionistRequired):
		return badRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, scheduling.ErrNutritionistNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

type scheduleQuery struct {
	Date           string `query:"date" validate:"required,datetime=2006-01-02"`
	NutritionistID string `query:"nutritionistId" validate:"omitempty,uuid"`
}

// GET /appointments/nutritionist/schedule
func (h *ScheduleHandler) Get(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	var q scheduleQuery
	if err := bindQuery(c, &q); err != nil {
		return badRequest(c, err.Error())
	}

	view, err := h.svc.Schedule(c.Context(), scheduling.ScheduleRequest{
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		NutritionistID: optionalID(q.NutritionistID),
		Date:           q.Date,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, view)
}
