package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/integration"
	"github.com/Alijeyrad/nutriplan_backend/pkg/constants"
	"github.com/Alijeyrad/nutriplan_backend/pkg/email"
	"github.com/Alijeyrad/nutriplan_backend/pkg/observability"
	"github.com/Alijeyrad/nutriplan_backend/pkg/redis"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Store is satisfied by *repo.AppointmentClient.
type Store interface {
	ListByWindow(ctx context.Context, status repo.AppointmentStatus, from, to string) ([]*repo.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

type Notifier interface {
	IsConfigured() bool
	SendReminder(ctx context.Context, data email.AppointmentData) error
}

// Locker is satisfied by *redis.Locker.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Entry struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	Success       bool      `json:"success"`
	// Skipped marks a reminder delivered by an earlier sweep.
	Skipped      bool   `json:"skipped,omitempty"`
	PatientEmail string `json:"patientEmail,omitempty"`
	Error        string `json:"error,omitempty"`
}

type Summary struct {
	Date              string  `json:"date"`
	TotalAppointments int     `json:"totalAppointments"`
	Sent              int     `json:"sent"`
	Skipped           int     `json:"skipped"`
	Failed            int     `json:"failed"`
	Results           []Entry `json:"results"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// SendDaily reminds every scheduled appointment dated tomorrow in the
	// scheduling time zone.
	SendDaily(ctx context.Context) (*Summary, error)
	// SendFor sweeps one calendar date (YYYY-MM-DD).
	SendFor(ctx context.Context, date string) (*Summary, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Deps struct {
	Store    Store
	Users    Users
	Notifier Notifier
	Locker   Locker
	Metrics  *observability.SchedulingMetrics
	Location *time.Location
	LockTTL  time.Duration
	// Timeout bounds each send. Zero means no extra bound.
	Timeout time.Duration
	Now     func() time.Time
}

type reminderService struct {
	store    Store
	users    Users
	notifier Notifier
	locker   Locker
	metrics  *observability.SchedulingMetrics
	loc      *time.Location
	lockTTL  time.Duration
	timeout  time.Duration
	now      func() time.Time
}

func New(d Deps) Service {
	s := &reminderService{
		store:    d.Store,
		users:    d.Users,
		notifier: d.Notifier,
		locker:   d.Locker,
		metrics:  d.Metrics,
		loc:      d.Location,
		lockTTL:  d.LockTTL,
		timeout:  d.Timeout,
		now:      d.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 10 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *reminderService) SendDaily(ctx context.Context) (*Summary, error) {
	tomorrow := s.now().In(s.loc).AddDate(0, 0, 1)
	return s.SendFor(ctx, tomorrow.Format(constants.DateLayout))
}

func (s *reminderService) SendFor(ctx context.Context, date string) (*Summary, error) {
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return nil, fmt.Errorf("reminder date %q: %w", date, err)
	}
	if s.notifier == nil || !s.notifier.IsConfigured() {
		return nil, ErrNotificationsDisabled
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "reminders:"+date, s.lockTTL)
		if err != nil {
			if errors.Is(err, redis.ErrLockHeld) {
				return nil, ErrSweepInProgress
			}
			return nil, fmt.Errorf("acquire reminder lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("reminder: release lock failed", "date", date, "err", err)
			}
		}()
	}

	appts, err := s.store.ListByWindow(ctx, repo.StatusScheduled, date, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", date, err)
	}

	sum := &Summary{
		Date:              date,
		TotalAppointments: len(appts),
		Results:           make([]Entry, 0, len(appts)),
	}
	for _, a := range appts {
		e := s.remind(ctx, a)
		switch {
		case e.Skipped:
			sum.Skipped++
			s.metrics.Reminder(ctx, "skipped")
		case e.Success:
			sum.Sent++
			s.metrics.Reminder(ctx, "sent")
		default:
			sum.Failed++
			s.metrics.Reminder(ctx, "failed")
		}
		sum.Results = append(sum.Results, e)
	}

	slog.Info("reminder: sweep finished",
		"date", date,
		"total", sum.TotalAppointments,
		"sent", sum.Sent,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
	)
	return sum, nil
}

// remind handles one appointment. The flag is set only after a successful
// send, so failures are retried by the next sweep.
func (s *reminderService) remind(ctx context.Context, a *repo.Appointment) Entry {
	e := Entry{AppointmentID: a.ID}
	patient, err := s.users.Get(ctx, a.PatientID)
	if err != nil {
		e.Error = "patient lookup: " + err.Error()
		slog.Warn("reminder: patient lookup failed", "appointment_id", a.ID, "err", err)
		return e
	}
	e.PatientEmail = patient.Email
	if a.ReminderSentAt != nil {
		e.Success, e.Skipped = true, true
		return e
	}

	nutritionist, err := s.users.Get(ctx, a.NutritionistID)
	if err != nil {
		e.Error = "nutritionist lookup: " + err.Error()
		slog.Warn("reminder: nutritionist lookup failed", "appointment_id", a.ID, "err", err)
		return e
	}

	sendCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.notifier.SendReminder(sendCtx, integration.MailData(a, patient, nutritionist)); err != nil {
		e.Error = err.Error()
		slog.Warn("reminder: send failed", "appointment_id", a.ID, "patient_email", patient.Email, "err", err)
		return e
	}

	e.Success = true
	claimed, err := s.store.MarkReminderSent(ctx, a.ID, s.now().UTC())
	if err != nil {
		slog.Error("reminder: mark sent failed", "appointment_id", a.ID, "err", err)
	} else if !claimed {
		slog.Warn("reminder: already marked by another sweep", "appointment_id", a.ID)
	}
	return e
}
