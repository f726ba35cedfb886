package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/nutriplan_backend/internal/service/reminder"
)

type ReminderHandler struct {
	svc reminder.Service
}

func NewReminderHandler(svc reminder.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func mapReminderError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, reminder.ErrNotificationsDisabled):
		return unavailable(c, err.Error())
	case errors.Is(err, reminder.ErrSweepInProgress):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}

type reminderQuery struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// POST /appointments/reminders/daily
//
// Sweeps tomorrow by default; ?date=YYYY-MM-DD re-runs a specific day.
func (h *ReminderHandler) SendDaily(c fiber.Ctx) error {
	var q reminderQuery
	if err := bindQuery(c, &q); err != nil {
		return badRequest(c, err.Error())
	}

	var (
		sum *reminder.Summary
		err error
	)
	if q.Date != "" {
		sum, err = h.svc.SendFor(c.Context(), q.Date)
	} else {
		sum, err = h.svc.SendDaily(c.Context())
	}
	if err != nil {
		return mapReminderError(c, err)
	}
	return ok(c, sum)
}
