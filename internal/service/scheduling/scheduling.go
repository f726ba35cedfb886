package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/constants"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

type Appointments interface {
	BookedTimes(ctx context.Context, nutritionistID uuid.UUID, date string) ([]string, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ScheduleRequest struct {
	ActorID   uuid.UUID
	ActorRole repo.Role
	// NutritionistID selects whose schedule an admin is viewing. Ignored
	// for nutritionists, who always see their own.
	NutritionistID *uuid.UUID
	Date           string
}

type Schedule struct {
	NutritionistID uuid.UUID        `json:"nutritionistId"`
	Date           string           `json:"date"`
	Weekday        string           `json:"weekday"`
	Availability   []repo.HourRange `json:"availability"`
	BookedSlots    []string         `json:"bookedSlots"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Schedule returns the weekly-template hours for the weekday of the
	// requested date together with the times already occupied. The view is
	// informational; booking does not consult it.
	Schedule(ctx context.Context, req ScheduleRequest) (*Schedule, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type schedulingService struct {
	users        Users
	appointments Appointments
}

func New(users Users, appointments Appointments) Service {
	return &schedulingService{users: users, appointments: appointments}
}

func (s *schedulingService) Schedule(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	day, err := time.Parse(constants.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var nutritionistID uuid.UUID
	switch req.ActorRole {
	case repo.RoleNutritionist:
		nutritionistID = req.ActorID
	case repo.RoleAdmin:
		if req.NutritionistID == nil || *req.NutritionistID == uuid.Nil {
			return nil, ErrNutritionistRequired
		}
		nutritionistID = *req.NutritionistID
	default:
		return nil, ErrForbidden
	}

	n, err := s.users.Get(ctx, nutritionistID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNutritionistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get nutritionist: %w", err)
	}
	if n.Role != repo.RoleNutritionist {
		return nil, ErrNutritionistNotFound
	}

	booked, err := s.appointments.BookedTimes(ctx, nutritionistID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("booked times: %w", err)
	}
	if booked == nil {
		booked = []string{}
	}

	weekday := strings.ToLower(day.Weekday().String())
	return &Schedule{
		NutritionistID: nutritionistID,
		Date:           req.Date,
		Weekday:        weekday,
		Availability:   hoursFor(n.Availability, weekday),
		BookedSlots:    booked,
	}, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func hoursFor(template []repo.DayAvailability, weekday string) []repo.HourRange {
	out := []repo.HourRange{}
	for _, d := range template {
		if strings.EqualFold(d.Day, weekday) {
			out = append(out, d.Hours...)
		}
	}
	return out
}
