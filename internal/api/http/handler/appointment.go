package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, appointment.ErrPermission):
		return forbidden(c, err.Error())
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrConflict):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidState):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

type requestBody struct {
	NutritionistID string `json:"nutritionistId" validate:"omitempty,uuid"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required"`
	Type           string `json:"type" validate:"omitempty,oneof=consultation follow-up evaluation"`
	Reason         string `json:"reason" validate:"max=200"`
	Notes          string `json:"notes" validate:"max=500"`
}

type directBody struct {
	PatientID      string `json:"patientId" validate:"required,uuid"`
	NutritionistID string `json:"nutritionistId" validate:"omitempty,uuid"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required"`
	Type           string `json:"type" validate:"omitempty,oneof=consultation follow-up evaluation"`
	Reason         string `json:"reason" validate:"max=200"`
	Notes          string `json:"notes" validate:"max=500"`
}

type approveBody struct {
	Notes string `json:"notes" validate:"max=500"`
}

type alternativeBody struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Time  string `json:"time" validate:"required"`
	Notes string `json:"notes" validate:"max=200"`
}

type rejectBody struct {
	RejectionReason       string            `json:"rejectionReason" validate:"required,min=10,max=500"`
	SuggestedAlternatives []alternativeBody `json:"suggestedAlternatives" validate:"max=5,dive"`
}

type updateBody struct {
	Date            *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time            *string `json:"time" validate:"omitempty"`
	Status          *string `json:"status" validate:"omitempty,oneof=pending scheduled completed cancelled rejected"`
	Type            *string `json:"type" validate:"omitempty,oneof=consultation follow-up evaluation"`
	Reason          *string `json:"reason" validate:"omitempty,max=200"`
	Notes           *string `json:"notes" validate:"omitempty,max=500"`
	RejectionReason *string `json:"rejectionReason" validate:"omitempty,max=500"`
}

type listQuery struct {
	NutritionistID string `query:"nutritionistId" validate:"omitempty,uuid"`
	PatientID      string `query:"patientId" validate:"omitempty,uuid"`
	Status         string `query:"status" validate:"omitempty,oneof=pending scheduled completed cancelled rejected"`
	From           string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit          int    `query:"limit" validate:"gte=0,lte=500"`
	Offset         int    `query:"offset" validate:"gte=0"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// POST /appointments/request
func (h *AppointmentHandler) Request(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	var body requestBody
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.svc.Request(c.Context(), actor, appointment.RequestInput{
		NutritionistID: optionalID(body.NutritionistID),
		Date:           body.Date,
		Time:           body.Time,
		Type:           body.Type,
		Reason:         body.Reason,
		Notes:          body.Notes,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, res)
}

// POST /appointments
func (h *AppointmentHandler) CreateDirect(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	var body directBody
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "patientId must be a valid id")
	}

	res, err := h.svc.CreateDirect(c.Context(), actor, appointment.DirectInput{
		PatientID:      patientID,
		NutritionistID: optionalID(body.NutritionistID),
		Date:           body.Date,
		Time:           body.Time,
		Type:           body.Type,
		Reason:         body.Reason,
		Notes:          body.Notes,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, res)
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	var q listQuery
	if err := bindQuery(c, &q); err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.svc.List(c.Context(), actor, appointment.ListInput{
		NutritionistID: optionalID(q.NutritionistID),
		PatientID:      optionalID(q.PatientID),
		Status:         q.Status,
		From:           q.From,
		To:             q.To,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	if items == nil {
		items = []*repo.Appointment{}
	}
	return ok(c, items)
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	a, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, a)
}

// PATCH /appointments/:id/approve
func (h *AppointmentHandler) Approve(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	var body approveBody
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.svc.Approve(c.Context(), actor, id, body.Notes)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, res)
}

// PATCH /appointments/:id/reject
func (h *AppointmentHandler) Reject(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	var body rejectBody
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	alts := make([]repo.Alternative, 0, len(body.SuggestedAlternatives))
	for _, a := range body.SuggestedAlternatives {
		alts = append(alts, repo.Alternative{Date: a.Date, Time: a.Time, Notes: a.Notes})
	}
	res, err := h.svc.Reject(c.Context(), actor, id, appointment.RejectInput{
		Reason:       body.RejectionReason,
		Alternatives: alts,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, res)
}

// PATCH /appointments/:id/complete
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	res, err := h.svc.Complete(c.Context(), actor, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, res)
}

// PUT /appointments/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	var body updateBody
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.svc.Update(c.Context(), actor, id, appointment.UpdateInput{
		Date:            body.Date,
		Time:            body.Time,
		Status:          body.Status,
		Type:            body.Type,
		Reason:          body.Reason,
		Notes:           body.Notes,
		RejectionReason: body.RejectionReason,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, res)
}

// DELETE /appointments/:id
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	res, err := h.svc.Cancel(c.Context(), actor, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, res)
}
