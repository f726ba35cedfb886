package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/integration"
	"github.com/Alijeyrad/nutriplan_backend/pkg/events"
	"github.com/Alijeyrad/nutriplan_backend/pkg/observability"
)

const (
	maxReasonLen          = 200
	maxNotesLen           = 500
	minRejectionLen       = 10
	maxRejectionLen       = 500
	maxAlternatives       = 5
	maxAlternativeNoteLen = 200
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Store is satisfied by *repo.AppointmentClient.
type Store interface {
	Create(ctx context.Context, a *repo.Appointment) (*repo.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
	FindConflicting(ctx context.Context, nutritionistID uuid.UUID, date, at string, excludeID *uuid.UUID) (*repo.Appointment, error)
	List(ctx context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, expected repo.AppointmentStatus, u repo.AppointmentUpdate) (*repo.Appointment, error)
}

// Users is satisfied by *repo.UserClient.
type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// Integrations is satisfied by *integration.Coordinator.
type Integrations interface {
	Created(ctx context.Context, a *repo.Appointment) integration.Outcome
	Rejected(ctx context.Context, a *repo.Appointment) integration.Outcome
	Cancelled(ctx context.Context, a *repo.Appointment) integration.Outcome
	Updated(ctx context.Context, before, after *repo.Appointment) integration.Outcome
}

// Publisher is satisfied by *events.Publisher and *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Actor is the authenticated caller.
type Actor struct {
	ID   uuid.UUID
	Role repo.Role
}

type RequestInput struct {
	// NutritionistID defaults to the patient's assigned nutritionist.
	NutritionistID *uuid.UUID
	Date           string
	Time           string
	Type           string
	Reason         string
	Notes          string
}

type DirectInput struct {
	PatientID uuid.UUID
	// NutritionistID defaults to the actor for nutritionists; admins must set it.
	NutritionistID *uuid.UUID
	Date           string
	Time           string
	Type           string
	Reason         string
	Notes          string
}

type RejectInput struct {
	Reason       string
	Alternatives []repo.Alternative
}

// UpdateInput is a partial update; nil fields are left alone.
type UpdateInput struct {
	Date            *string
	Time            *string
	Status          *string
	Type            *string
	Reason          *string
	Notes           *string
	RejectionReason *string
}

type ListInput struct {
	NutritionistID *uuid.UUID
	PatientID      *uuid.UUID
	Status         string
	From           string
	To             string
	Limit          int
	Offset         int
}

// Result is what every mutation returns: the stored appointment plus the
// advisory integration outcome.
type Result struct {
	Appointment  *repo.Appointment   `json:"appointment"`
	Integrations integration.Outcome `json:"integrations"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Request(ctx context.Context, actor Actor, in RequestInput) (*Result, error)
	CreateDirect(ctx context.Context, actor Actor, in DirectInput) (*Result, error)
	Approve(ctx context.Context, actor Actor, id uuid.UUID, notes string) (*Result, error)
	Reject(ctx context.Context, actor Actor, id uuid.UUID, in RejectInput) (*Result, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*Result, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (*Result, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateInput) (*Result, error)

	Get(ctx context.Context, actor Actor, id uuid.UUID) (*repo.Appointment, error)
	List(ctx context.Context, actor Actor, in ListInput) ([]*repo.Appointment, error)

	// IsAvailable reports whether no pending or scheduled appointment other
	// than excludeID holds the slot.
	IsAvailable(ctx context.Context, nutritionistID uuid.UUID, date, at string, excludeID *uuid.UUID) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Deps struct {
	Store        Store
	Users        Users
	Validator    *Validator
	Integrations Integrations
	Publisher    Publisher
	Metrics      *observability.SchedulingMetrics
	// SubjectPrefix starts every lifecycle subject, e.g. "nutriplan".
	SubjectPrefix string
	Now           func() time.Time
}

type appointmentService struct {
	store        Store
	users        Users
	validator    *Validator
	integrations Integrations
	publisher    Publisher
	metrics      *observability.SchedulingMetrics
	prefix       string
	now          func() time.Time
}

func New(d Deps) Service {
	s := &appointmentService{
		store:        d.Store,
		users:        d.Users,
		validator:    d.Validator,
		integrations: d.Integrations,
		publisher:    d.Publisher,
		metrics:      d.Metrics,
		prefix:       d.SubjectPrefix,
		now:          d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.validator == nil {
		s.validator = NewValidator(DefaultSlotRules(), s.now)
	}
	if s.integrations == nil {
		s.integrations = noIntegrations{}
	}
	return s
}

func (s *appointmentService) Request(ctx context.Context, actor Actor, in RequestInput) (*Result, error) {
	if actor.Role != repo.RolePatient {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionRequest}
	}
	typ, err := checkDetails(in.Type, in.Reason, in.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in.Date, in.Time, PolicyStrict); err != nil {
		return nil, err
	}

	nutritionistID := in.NutritionistID
	if nutritionistID == nil {
		patient, err := s.users.Get(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("load patient: %w", err)
		}
		if patient.NutritionistID == nil {
			return nil, invalid("nutritionistId", "is required when no nutritionist is assigned")
		}
		nutritionistID = patient.NutritionistID
	}
	if err := s.requireRole(ctx, *nutritionistID, repo.RoleNutritionist, "nutritionistId"); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &repo.Appointment{
		PatientID:      actor.ID,
		NutritionistID: *nutritionistID,
		Date:           in.Date,
		Time:           in.Time,
		Status:         repo.StatusPending,
		Type:           typ,
		Reason:         strings.TrimSpace(in.Reason),
		Notes:          strings.TrimSpace(in.Notes),
		RequestedAt:    &now,
	}
	created, err := s.claim(ctx, a)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionRequest, created)

	// Providers are engaged once the nutritionist approves.
	return &Result{Appointment: created}, nil
}

func (s *appointmentService) CreateDirect(ctx context.Context, actor Actor, in DirectInput) (*Result, error) {
	var nutritionistID uuid.UUID
	switch actor.Role {
	case repo.RoleNutritionist:
		nutritionistID = actor.ID
		if in.NutritionistID != nil && *in.NutritionistID != actor.ID {
			return nil, &PermissionError{ActorID: actor.ID, Action: ActionBook}
		}
	case repo.RoleAdmin:
		if in.NutritionistID == nil {
			return nil, invalid("nutritionistId", "is required")
		}
		nutritionistID = *in.NutritionistID
	default:
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionBook}
	}

	typ, err := checkDetails(in.Type, in.Reason, in.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in.Date, in.Time, PolicyRelaxed); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, in.PatientID, repo.RolePatient, "patientId"); err != nil {
		return nil, err
	}
	if actor.Role == repo.RoleAdmin {
		if err := s.requireRole(ctx, nutritionistID, repo.RoleNutritionist, "nutritionistId"); err != nil {
			return nil, err
		}
	}

	a := &repo.Appointment{
		PatientID:      in.PatientID,
		NutritionistID: nutritionistID,
		Date:           in.Date,
		Time:           in.Time,
		Status:         repo.StatusScheduled,
		Type:           typ,
		Reason:         strings.TrimSpace(in.Reason),
		Notes:          strings.TrimSpace(in.Notes),
	}
	created, err := s.claim(ctx, a)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionBook, created)

	out := s.integrations.Created(ctx, created)
	return &Result{Appointment: created, Integrations: out}, nil
}

func (s *appointmentService) Approve(ctx context.Context, actor Actor, id uuid.UUID, notes string) (*Result, error) {
	if utf8.RuneCountInString(notes) > maxNotesLen {
		return nil, invalid("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, a) {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionApprove}
	}
	if !CanTransition(a.Status, repo.StatusScheduled) {
		return nil, &InvalidStateError{From: a.Status, Action: ActionApprove}
	}
	if err := s.ensureFree(ctx, a.NutritionistID, a.Date, a.Time, &a.ID); err != nil {
		return nil, err
	}

	status := repo.StatusScheduled
	now := s.now().UTC()
	u := repo.AppointmentUpdate{Status: &status}
	if a.RespondedAt == nil {
		u.RespondedAt = &now
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		u.Notes = &notes
	}
	updated, err := s.transition(ctx, a, ActionApprove, u)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionApprove, updated)

	out := s.integrations.Created(ctx, updated)
	return &Result{Appointment: updated, Integrations: out}, nil
}

func (s *appointmentService) Reject(ctx context.Context, actor Actor, id uuid.UUID, in RejectInput) (*Result, error) {
	reason, err := checkRejectionReason(in.Reason)
	if err != nil {
		return nil, err
	}
	alts, err := s.checkAlternatives(in.Alternatives)
	if err != nil {
		return nil, err
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, a) {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionReject}
	}
	if !CanTransition(a.Status, repo.StatusRejected) {
		return nil, &InvalidStateError{From: a.Status, Action: ActionReject}
	}

	status := repo.StatusRejected
	now := s.now().UTC()
	u := repo.AppointmentUpdate{
		Status:                &status,
		RejectionReason:       &reason,
		SuggestedAlternatives: &alts,
	}
	if a.RespondedAt == nil {
		u.RespondedAt = &now
	}
	updated, err := s.transition(ctx, a, ActionReject, u)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionReject, updated)

	out := s.integrations.Rejected(ctx, updated)
	return &Result{Appointment: updated, Integrations: out}, nil
}

func (s *appointmentService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*Result, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(actor, a) && actor.Role != repo.RoleAdmin {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionCancel}
	}
	if !CanTransition(a.Status, repo.StatusCancelled) {
		return nil, &InvalidStateError{From: a.Status, Action: ActionCancel}
	}

	status := repo.StatusCancelled
	now := s.now().UTC()
	u := repo.AppointmentUpdate{Status: &status, CancelledAt: &now}
	if a.RespondedAt == nil && a.Status == repo.StatusPending {
		u.RespondedAt = &now
	}
	updated, err := s.transition(ctx, a, ActionCancel, u)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionCancel, updated)

	out := s.integrations.Cancelled(ctx, updated)
	return &Result{Appointment: updated, Integrations: out}, nil
}

func (s *appointmentService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*Result, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, a) {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionComplete}
	}
	if !CanTransition(a.Status, repo.StatusCompleted) {
		return nil, &InvalidStateError{From: a.Status, Action: ActionComplete}
	}

	status := repo.StatusCompleted
	now := s.now().UTC()
	updated, err := s.transition(ctx, a, ActionComplete, repo.AppointmentUpdate{Status: &status, CompletedAt: &now})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionComplete, updated)
	return &Result{Appointment: updated}, nil
}

// Update applies a partial change. A date or time change is validated and
// conflict-checked like a new booking; a status change must follow the
// transition table.
func (s *appointmentService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateInput) (*Result, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, a) {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionUpdate}
	}

	var u repo.AppointmentUpdate
	now := s.now().UTC()
	target := a.Status

	if in.Status != nil {
		st, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		if st != a.Status {
			if !CanTransition(a.Status, st) {
				return nil, &InvalidStateError{From: a.Status, Action: ActionUpdate}
			}
			target = st
			u.Status = &st
			if a.Status == repo.StatusPending && a.RespondedAt == nil {
				u.RespondedAt = &now
			}
			switch st {
			case repo.StatusCancelled:
				u.CancelledAt = &now
			case repo.StatusCompleted:
				u.CompletedAt = &now
			case repo.StatusRejected:
				var raw string
				if in.RejectionReason != nil {
					raw = *in.RejectionReason
				}
				reason, err := checkRejectionReason(raw)
				if err != nil {
					return nil, err
				}
				u.RejectionReason = &reason
			}
		}
	}

	if in.Type != nil {
		typ, err := ParseType(*in.Type)
		if err != nil {
			return nil, err
		}
		u.Type = &typ
	}
	if in.Reason != nil {
		r := strings.TrimSpace(*in.Reason)
		if utf8.RuneCountInString(r) > maxReasonLen {
			return nil, invalid("reason", fmt.Sprintf("must be at most %d characters", maxReasonLen))
		}
		u.Reason = &r
	}
	if in.Notes != nil {
		n := strings.TrimSpace(*in.Notes)
		if utf8.RuneCountInString(n) > maxNotesLen {
			return nil, invalid("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
		}
		u.Notes = &n
	}

	date, at := a.Date, a.Time
	if in.Date != nil {
		date = *in.Date
	}
	if in.Time != nil {
		at = *in.Time
	}
	if date != a.Date || at != a.Time {
		if a.Status.Terminal() {
			return nil, &InvalidStateError{From: a.Status, Action: ActionUpdate}
		}
		if err := s.validator.Validate(date, at, policyFor(actor)); err != nil {
			return nil, err
		}
		if target.Occupying() {
			if err := s.ensureFree(ctx, a.NutritionistID, date, at, &a.ID); err != nil {
				return nil, err
			}
		}
		u.Date = &date
		u.Time = &at
		u.ResetReminder = a.ReminderSentAt != nil
	}

	updated, err := s.transition(ctx, a, ActionUpdate, u)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ActionUpdate, updated)

	out := s.integrations.Updated(ctx, a, updated)
	return &Result{Appointment: updated, Integrations: out}, nil
}

func (s *appointmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*repo.Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(actor, a) && actor.Role != repo.RoleAdmin {
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionView}
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, actor Actor, in ListInput) ([]*repo.Appointment, error) {
	f := repo.AppointmentFilter{
		From:   in.From,
		To:     in.To,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if in.Status != "" {
		st, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		f.Statuses = []repo.AppointmentStatus{st}
	}

	switch actor.Role {
	case repo.RolePatient:
		f.PatientID = &actor.ID
		f.NutritionistID = in.NutritionistID
	case repo.RoleNutritionist:
		f.NutritionistID = &actor.ID
		f.PatientID = in.PatientID
	case repo.RoleAdmin:
		f.NutritionistID = in.NutritionistID
		f.PatientID = in.PatientID
	default:
		return nil, &PermissionError{ActorID: actor.ID, Action: ActionView}
	}

	list, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return list, nil
}

func (s *appointmentService) IsAvailable(ctx context.Context, nutritionistID uuid.UUID, date, at string, excludeID *uuid.UUID) (bool, error) {
	existing, err := s.store.FindConflicting(ctx, nutritionistID, date, at, excludeID)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return existing == nil, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *appointmentService) load(ctx context.Context, id uuid.UUID) (*repo.Appointment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) requireRole(ctx context.Context, id uuid.UUID, role repo.Role, field string) error {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return invalid(field, string(role)+" not found")
		}
		return fmt.Errorf("load %s: %w", role, err)
	}
	if u.Role != role || !u.Active {
		return invalid(field, string(role)+" not found")
	}
	return nil
}

// ensureFree is the pre-flight check; the storage constraint remains the
// final arbiter.
func (s *appointmentService) ensureFree(ctx context.Context, nutritionistID uuid.UUID, date, at string, excludeID *uuid.UUID) error {
	existing, err := s.store.FindConflicting(ctx, nutritionistID, date, at, excludeID)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if existing != nil {
		s.metrics.Conflict(ctx, "check")
		return &ConflictError{NutritionistID: nutritionistID, Date: date, Time: at, ExistingID: existing.ID}
	}
	return nil
}

// claim pre-checks the slot, then inserts.
func (s *appointmentService) claim(ctx context.Context, a *repo.Appointment) (*repo.Appointment, error) {
	if err := s.ensureFree(ctx, a.NutritionistID, a.Date, a.Time, nil); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, a)
	if err != nil {
		if repo.IsDuplicate(err) {
			s.metrics.Conflict(ctx, "commit")
			return nil, &ConflictError{NutritionistID: a.NutritionistID, Date: a.Date, Time: a.Time}
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return created, nil
}

// transition writes u only if the appointment is still in a.Status.
func (s *appointmentService) transition(ctx context.Context, a *repo.Appointment, action Action, u repo.AppointmentUpdate) (*repo.Appointment, error) {
	updated, err := s.store.Update(ctx, a.ID, a.Status, u)
	switch {
	case err == nil:
		return updated, nil
	case repo.IsNotFound(err):
		return nil, &NotFoundError{ID: a.ID}
	case repo.IsDuplicate(err):
		s.metrics.Conflict(ctx, "commit")
		date, at := a.Date, a.Time
		if u.Date != nil {
			date = *u.Date
		}
		if u.Time != nil {
			at = *u.Time
		}
		return nil, &ConflictError{NutritionistID: a.NutritionistID, Date: date, Time: at}
	case errors.Is(err, repo.ErrStale):
		current, gerr := s.load(ctx, a.ID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, &InvalidStateError{From: current.Status, Action: action}
	default:
		return nil, fmt.Errorf("%s appointment: %w", action, err)
	}
}

// committed records metrics and publishes the lifecycle event. Publishing is
// best effort.
func (s *appointmentService) committed(ctx context.Context, action Action, a *repo.Appointment) {
	s.metrics.Transition(ctx, string(action), string(a.Status))
	slog.InfoContext(ctx, "appointment: "+string(action), "appointment_id", a.ID, "status", a.Status)

	if s.publisher == nil {
		return
	}
	subject := events.AppointmentSubject(s.prefix, action.event(), a.ID)
	if err := s.publisher.Publish(subject, []byte(a.ID.String())); err != nil {
		slog.Warn("appointment: publish event failed", "subject", subject, "err", err)
	}
}

func (s *appointmentService) checkAlternatives(in []repo.Alternative) ([]repo.Alternative, error) {
	if len(in) > maxAlternatives {
		return nil, invalid("suggestedAlternatives", fmt.Sprintf("at most %d alternatives", maxAlternatives))
	}
	out := make([]repo.Alternative, 0, len(in))
	for i, alt := range in {
		if err := s.validator.Validate(alt.Date, alt.Time, PolicyRelaxed); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				return nil, invalid(fmt.Sprintf("suggestedAlternatives[%d].%s", i, verr.Field), verr.Reason)
			}
			return nil, err
		}
		notes := strings.TrimSpace(alt.Notes)
		if utf8.RuneCountInString(notes) > maxAlternativeNoteLen {
			return nil, invalid(fmt.Sprintf("suggestedAlternatives[%d].notes", i), fmt.Sprintf("must be at most %d characters", maxAlternativeNoteLen))
		}
		out = append(out, repo.Alternative{Date: alt.Date, Time: alt.Time, Notes: notes})
	}
	return out, nil
}

func checkRejectionReason(raw string) (string, error) {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return "", invalid("rejectionReason", "is required")
	}
	if n := utf8.RuneCountInString(reason); n < minRejectionLen || n > maxRejectionLen {
		return "", invalid("rejectionReason", fmt.Sprintf("must be between %d and %d characters", minRejectionLen, maxRejectionLen))
	}
	return reason, nil
}

func checkDetails(typ, reason, notes string) (repo.AppointmentType, error) {
	t, err := ParseType(typ)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(strings.TrimSpace(reason)) > maxReasonLen {
		return "", invalid("reason", fmt.Sprintf("must be at most %d characters", maxReasonLen))
	}
	if utf8.RuneCountInString(strings.TrimSpace(notes)) > maxNotesLen {
		return "", invalid("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
	}
	return t, nil
}

func isParticipant(actor Actor, a *repo.Appointment) bool {
	return actor.ID == a.PatientID || actor.ID == a.NutritionistID
}

// canManage: the appointment's nutritionist or an admin.
func canManage(actor Actor, a *repo.Appointment) bool {
	return actor.Role == repo.RoleAdmin || (actor.Role == repo.RoleNutritionist && actor.ID == a.NutritionistID)
}

func policyFor(actor Actor) Policy {
	if actor.Role == repo.RolePatient {
		return PolicyStrict
	}
	return PolicyRelaxed
}

type noIntegrations struct{}

func (noIntegrations) Created(context.Context, *repo.Appointment) integration.Outcome { return integration.Outcome{} }
func (noIntegrations) Rejected(context.Context, *repo.Appointment) integration.Outcome { return integration.Outcome{} }
func (noIntegrations) Cancelled(context.Context, *repo.Appointment) integration.Outcome { return integration.Outcome{} }
func (noIntegrations) Updated(context.Context, *repo.Appointment, *repo.Appointment) integration.Outcome {
	return integration.Outcome{}
}
