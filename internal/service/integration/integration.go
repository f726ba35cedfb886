package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/calendar"
	"github.com/Alijeyrad/nutriplan_backend/pkg/email"
	"github.com/Alijeyrad/nutriplan_backend/pkg/observability"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Calendar is satisfied by *calendar.Client.
type Calendar interface {
	IsConfigured() bool
	HasCredentials() bool
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	CreateEvent(ctx context.Context, a calendar.Appointment) (calendar.Result, error)
	UpdateEvent(ctx context.Context, eventID string, a calendar.Appointment) (calendar.Result, error)
	CancelEvent(ctx context.Context, eventID string) error
}

// Notifier is satisfied by *email.Client.
type Notifier interface {
	IsConfigured() bool
	SendConfirmation(ctx context.Context, data email.AppointmentData) error
	SendCancellation(ctx context.Context, data email.AppointmentData) error
	SendRejection(ctx context.Context, data email.AppointmentData) error
	SendReminder(ctx context.Context, data email.AppointmentData) error
}

type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// Store records the sync fields once a side effect succeeded.
type Store interface {
	Update(ctx context.Context, id uuid.UUID, expected repo.AppointmentStatus, u repo.AppointmentUpdate) (*repo.Appointment, error)
}

// ---------------------------------------------------------------------------
// Outcome
// ---------------------------------------------------------------------------

// Outcome is advisory: a false field means "verify with the provider", never
// that the appointment change failed.
type Outcome struct {
	CalendarCreated   bool   `json:"calendarCreated"`
	CalendarUpdated   bool   `json:"calendarUpdated"`
	CalendarCancelled bool   `json:"calendarCancelled"`
	EmailSent         bool   `json:"emailSent"`
	CalendarEventID   string `json:"calendarEventId,omitempty"`
	MeetLink          string `json:"meetLink,omitempty"`
}

// CalendarOK reports whether any calendar operation succeeded.
func (o Outcome) CalendarOK() bool {
	return o.CalendarCreated || o.CalendarUpdated || o.CalendarCancelled
}

type ProviderStatus struct {
	Configured bool     `json:"configured"`
	Required   []string `json:"required"`
}

type Status struct {
	GoogleCalendar ProviderStatus `json:"googleCalendar"`
	Email          ProviderStatus `json:"email"`
}

// ---------------------------------------------------------------------------
// Coordinator
// ---------------------------------------------------------------------------

type Deps struct {
	Calendar Calendar
	Notifier Notifier
	Users    Users
	Store    Store
	Metrics  *observability.SchedulingMetrics
	// Timeout bounds each external call. Zero means no extra bound.
	Timeout time.Duration
}

// Coordinator runs calendar then email side effects after a committed
// transition. Provider availability is decided once, at construction.
type Coordinator struct {
	calendar Calendar
	notifier Notifier
	users    Users
	store    Store
	metrics  *observability.SchedulingMetrics
	timeout  time.Duration

	calendarOn bool
	emailOn    bool
	status     Status
}

func New(d Deps) *Coordinator {
	c := &Coordinator{
		calendar: d.Calendar,
		notifier: d.Notifier,
		users:    d.Users,
		store:    d.Store,
		metrics:  d.Metrics,
		timeout:  d.Timeout,
	}
	c.calendarOn = d.Calendar != nil && d.Calendar.IsConfigured()
	c.emailOn = d.Notifier != nil && d.Notifier.IsConfigured()
	c.status = Status{
		GoogleCalendar: ProviderStatus{
			Configured: c.calendarOn,
			Required:   []string{"calendar.client_id", "calendar.client_secret", "calendar.redirect_uri", "calendar.refresh_token"},
		},
		Email: ProviderStatus{
			Configured: c.emailOn,
			Required:   []string{"email.from", "email.smtp.host", "email.smtp.username", "email.smtp.password"},
		},
	}
	return c
}

func (c *Coordinator) Status() Status { return c.status }

func (c *Coordinator) EmailEnabled() bool { return c.emailOn }

// AuthURL returns the Google consent page for an operator to grant offline
// calendar access.
func (c *Coordinator) AuthURL(state string) (string, error) {
	if c.calendar == nil || !c.calendar.HasCredentials() {
		return "", ErrCalendarNotConfigured
	}
	return c.calendar.AuthURL(state)
}

// ExchangeCode trades an authorization code for the refresh token that goes
// into calendar.refresh_token.
func (c *Coordinator) ExchangeCode(ctx context.Context, code string) (string, error) {
	if c.calendar == nil || !c.calendar.HasCredentials() {
		return "", ErrCalendarNotConfigured
	}
	if code == "" {
		return "", ErrMissingCode
	}
	tok, err := c.calendar.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}
	return tok.RefreshToken, nil
}

// Created handles a newly confirmed appointment: direct booking or approval.
func (c *Coordinator) Created(ctx context.Context, a *repo.Appointment) Outcome {
	var out Outcome
	patient, nutritionist, ok := c.participants(ctx, a)
	if !ok {
		return out
	}

	if c.calendarOn {
		res, err := c.createEvent(ctx, a, patient, nutritionist)
		c.metrics.Integration(ctx, "calendar", "create", err == nil)
		if err != nil {
			slog.Warn("integration: calendar create failed", "appointment_id", a.ID, "err", err)
		} else {
			err := c.record(ctx, a, repo.AppointmentUpdate{
				CalendarEventID:   &res.EventID,
				CalendarEventLink: &res.EventLink,
				MeetLink:          &res.MeetLink,
			})
			if errors.Is(err, repo.ErrStale) {
				// The appointment moved on while the event was being created.
				c.discardEvent(ctx, a, res.EventID)
				return out
			}
			out.CalendarCreated = true
			out.CalendarEventID = res.EventID
			out.MeetLink = res.MeetLink
			a.CalendarEventID, a.CalendarEventLink, a.MeetLink = res.EventID, res.EventLink, res.MeetLink
		}
	}

	if c.emailOn {
		err := c.send(ctx, c.notifier.SendConfirmation, MailData(a, patient, nutritionist))
		c.metrics.Integration(ctx, "email", "confirmation", err == nil)
		if err != nil {
			slog.Warn("integration: confirmation email failed", "appointment_id", a.ID, "err", err)
		} else {
			out.EmailSent = true
			sent := true
			_ = c.record(ctx, a, repo.AppointmentUpdate{NotificationSent: &sent})
		}
	}
	return out
}

// Rejected notifies the patient; there is no calendar event to touch.
func (c *Coordinator) Rejected(ctx context.Context, a *repo.Appointment) Outcome {
	var out Outcome
	if !c.emailOn {
		return out
	}
	patient, nutritionist, ok := c.participants(ctx, a)
	if !ok {
		return out
	}
	err := c.send(ctx, c.notifier.SendRejection, MailData(a, patient, nutritionist))
	c.metrics.Integration(ctx, "email", "rejection", err == nil)
	if err != nil {
		slog.Warn("integration: rejection email failed", "appointment_id", a.ID, "err", err)
		return out
	}
	out.EmailSent = true
	return out
}

func (c *Coordinator) Cancelled(ctx context.Context, a *repo.Appointment) Outcome {
	var out Outcome
	patient, nutritionist, ok := c.participants(ctx, a)
	if !ok {
		return out
	}

	if c.calendarOn && a.CalendarEventID != "" {
		err := c.withTimeout(ctx, func(ctx context.Context) error {
			return c.calendar.CancelEvent(ctx, a.CalendarEventID)
		})
		c.metrics.Integration(ctx, "calendar", "cancel", err == nil)
		if err != nil {
			slog.Warn("integration: calendar cancel failed", "appointment_id", a.ID, "event_id", a.CalendarEventID, "err", err)
		} else {
			out.CalendarCancelled = true
		}
	}

	if c.emailOn {
		err := c.send(ctx, c.notifier.SendCancellation, MailData(a, patient, nutritionist))
		c.metrics.Integration(ctx, "email", "cancellation", err == nil)
		if err != nil {
			slog.Warn("integration: cancellation email failed", "appointment_id", a.ID, "err", err)
		} else {
			out.EmailSent = true
		}
	}
	return out
}

// Updated re-engages providers only when date, time or status changed.
func (c *Coordinator) Updated(ctx context.Context, before, after *repo.Appointment) Outcome {
	if before.Date == after.Date && before.Time == after.Time && before.Status == after.Status {
		return Outcome{}
	}
	switch after.Status {
	case repo.StatusCancelled:
		return c.Cancelled(ctx, after)
	case repo.StatusRejected:
		return c.Rejected(ctx, after)
	case repo.StatusScheduled:
		if after.CalendarEventID == "" {
			return c.Created(ctx, after)
		}
	default:
		return Outcome{}
	}

	var out Outcome
	patient, nutritionist, ok := c.participants(ctx, after)
	if !ok {
		return out
	}

	if c.calendarOn {
		var res calendar.Result
		err := c.withTimeout(ctx, func(ctx context.Context) error {
			var err error
			res, err = c.calendar.UpdateEvent(ctx, after.CalendarEventID, calendarAppointment(after, patient, nutritionist))
			return err
		})
		c.metrics.Integration(ctx, "calendar", "update", err == nil)
		if err != nil {
			slog.Warn("integration: calendar update failed", "appointment_id", after.ID, "event_id", after.CalendarEventID, "err", err)
		} else {
			out.CalendarUpdated = true
			out.CalendarEventID = after.CalendarEventID
			out.MeetLink = after.MeetLink
			if res.EventLink != "" && res.EventLink != after.CalendarEventLink {
				_ = c.record(ctx, after, repo.AppointmentUpdate{CalendarEventLink: &res.EventLink})
			}
		}
	}

	if c.emailOn {
		err := c.send(ctx, c.notifier.SendConfirmation, MailData(after, patient, nutritionist))
		c.metrics.Integration(ctx, "email", "confirmation", err == nil)
		if err != nil {
			slog.Warn("integration: update email failed", "appointment_id", after.ID, "err", err)
		} else {
			out.EmailSent = true
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (c *Coordinator) participants(ctx context.Context, a *repo.Appointment) (*repo.User, *repo.User, bool) {
	if c.users == nil {
		return nil, nil, false
	}
	patient, err := c.users.Get(ctx, a.PatientID)
	if err != nil {
		slog.Warn("integration: patient lookup failed", "appointment_id", a.ID, "patient_id", a.PatientID, "err", err)
		return nil, nil, false
	}
	nutritionist, err := c.users.Get(ctx, a.NutritionistID)
	if err != nil {
		slog.Warn("integration: nutritionist lookup failed", "appointment_id", a.ID, "nutritionist_id", a.NutritionistID, "err", err)
		return nil, nil, false
	}
	return patient, nutritionist, true
}

func (c *Coordinator) createEvent(ctx context.Context, a *repo.Appointment, patient, nutritionist *repo.User) (calendar.Result, error) {
	var res calendar.Result
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		res, err = c.calendar.CreateEvent(ctx, calendarAppointment(a, patient, nutritionist))
		return err
	})
	return res, err
}

func (c *Coordinator) send(ctx context.Context, fn func(context.Context, email.AppointmentData) error, data email.AppointmentData) error {
	return c.withTimeout(ctx, func(ctx context.Context) error { return fn(ctx, data) })
}

func (c *Coordinator) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if c.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

// record persists sync fields, guarded by the status a was committed with,
// and mirrors them onto a so the caller returns the stored state. Failures
// are logged; the error is returned for callers that must undo a side effect.
func (c *Coordinator) record(ctx context.Context, a *repo.Appointment, u repo.AppointmentUpdate) error {
	if c.store == nil {
		return nil
	}
	updated, err := c.store.Update(ctx, a.ID, a.Status, u)
	if err != nil {
		slog.Warn("integration: persist sync fields failed", "appointment_id", a.ID, "status", a.Status, "err", err)
		return err
	}
	a.CalendarEventID = updated.CalendarEventID
	a.CalendarEventLink = updated.CalendarEventLink
	a.MeetLink = updated.MeetLink
	a.NotificationSent = updated.NotificationSent
	a.UpdatedAt = updated.UpdatedAt
	return nil
}

// discardEvent removes an event that could not be attached to its
// appointment.
func (c *Coordinator) discardEvent(ctx context.Context, a *repo.Appointment, eventID string) {
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.calendar.CancelEvent(ctx, eventID)
	})
	c.metrics.Integration(ctx, "calendar", "discard", err == nil)
	if err != nil {
		slog.Error("integration: orphaned calendar event", "appointment_id", a.ID, "event_id", eventID, "err", err)
	}
}

func calendarAppointment(a *repo.Appointment, patient, nutritionist *repo.User) calendar.Appointment {
	return calendar.Appointment{
		ID:                a.ID.String(),
		PatientName:       patient.Name,
		PatientEmail:      patient.Email,
		NutritionistName:  nutritionist.Name,
		NutritionistEmail: nutritionist.Email,
		Date:              a.Date,
		Time:              a.Time,
		Notes:             a.Notes,
	}
}

// MailData maps an appointment and its participants onto the email
// template data.
func MailData(a *repo.Appointment, patient, nutritionist *repo.User) email.AppointmentData {
	d := email.AppointmentData{
		Patient:         email.Person{Name: patient.Name, Email: patient.Email},
		Nutritionist:    email.Person{Name: nutritionist.Name, Email: nutritionist.Email},
		Date:            a.Date,
		Time:            a.Time,
		Type:            string(a.Type),
		Reason:          a.Reason,
		Notes:           a.Notes,
		RejectionReason: a.RejectionReason,
		CalendarLink:    a.CalendarEventLink,
		MeetLink:        a.MeetLink,
	}
	for _, alt := range a.SuggestedAlternatives {
		d.Alternatives = append(d.Alternatives, email.Slot{Date: alt.Date, Time: alt.Time, Notes: alt.Notes})
	}
	return d
}
