package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/service/integration"
)

// IntegrationService is satisfied by *integration.Coordinator.
type IntegrationService interface {
	Status() integration.Status
	AuthURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
}

type IntegrationHandler struct {
	svc IntegrationService
}

func NewIntegrationHandler(svc IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{svc: svc}
}

func mapIntegrationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, integration.ErrCalendarNotConfigured):
		return unavailable(c, err.Error())
	case errors.Is(err, integration.ErrMissingCode):
		return badRequest(c, err.Error())
	case errors.Is(err, integration.ErrNoRefreshToken):
		return badGateway(c, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /appointments/integrations/status
func (h *IntegrationHandler) Status(c fiber.Ctx) error {
	return ok(c, h.svc.Status())
}

// GET /appointments/integrations/google/auth-url
func (h *IntegrationHandler) GoogleAuthURL(c fiber.Ctx) error {
	state := uuid.NewString()
	url, err := h.svc.AuthURL(state)
	if err != nil {
		return mapIntegrationError(c, err)
	}
	return ok(c, fiber.Map{"authUrl": url, "state": state})
}

type googleAuthBody struct {
	Code string `json:"code" validate:"required"`
}

// POST /appointments/integrations/google/auth
func (h *IntegrationHandler) GoogleAuth(c fiber.Ctx) error {
	var body googleAuthBody
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	refresh, err := h.svc.ExchangeCode(c.Context(), body.Code)
	if err != nil {
		return mapIntegrationError(c, err)
	}
	return ok(c, fiber.Map{
		"refreshToken": refresh,
		"message":      "set calendar.refresh_token to this value and restart the service",
	})
}
