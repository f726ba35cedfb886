package repo_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/repo/repotest"
)

func newAppointment(nutritionistID, patientID uuid.UUID, date, at string, status repo.AppointmentStatus) *repo.Appointment {
	now := time.Now().UTC()
	return &repo.Appointment{
		PatientID:      patientID,
		NutritionistID: nutritionistID,
		Date:           date,
		Time:           at,
		Status:         status,
		RequestedAt:    &now,
	}
}

func TestAppointmentCreateAndGet(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	ctx := t.Context()

	in := newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusPending)
	in.Reason = "first visit"
	in.SuggestedAlternatives = []repo.Alternative{{Date: "2030-03-12", Time: "10:00"}}

	created, err := c.Appointment.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	got, err := c.Appointment.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != repo.StatusPending || got.Type != repo.TypeConsultation {
		t.Errorf("status/type = %s/%s", got.Status, got.Type)
	}
	if got.Reason != "first visit" || got.Date != "2030-03-11" || got.Time != "09:00" {
		t.Errorf("unexpected fields: %+v", got)
	}
	if got.RequestedAt == nil || got.RespondedAt != nil {
		t.Errorf("requestedAt=%v respondedAt=%v", got.RequestedAt, got.RespondedAt)
	}
	if len(got.SuggestedAlternatives) != 1 || got.SuggestedAlternatives[0].Time != "10:00" {
		t.Errorf("alternatives = %+v", got.SuggestedAlternatives)
	}

	if _, err := c.Appointment.Get(ctx, uuid.New()); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("Get unknown: err = %v, want ErrNotFound", err)
	}
}

func TestActiveSlotIsUnique(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	other := repotest.NewPatient(t, c, n.ID)
	ctx := t.Context()

	first, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusPending))
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}

	tests := []struct {
		name    string
		status  repo.AppointmentStatus
		wantDup bool
	}{
		{"pending collides", repo.StatusPending, true},
		{"scheduled collides", repo.StatusScheduled, true},
		{"cancelled does not collide", repo.StatusCancelled, false},
		{"rejected does not collide", repo.StatusRejected, false},
		{"completed does not collide", repo.StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Appointment.Create(ctx, newAppointment(n.ID, other.ID, "2030-03-11", "09:00", tt.status))
			if got := errors.Is(err, repo.ErrDuplicate); got != tt.wantDup {
				t.Fatalf("Create(%s): err = %v, wantDup %v", tt.status, err, tt.wantDup)
			}
		})
	}

	cancelled := repo.StatusCancelled
	if _, err := c.Appointment.Update(ctx, first.ID, repo.StatusPending, repo.AppointmentUpdate{Status: &cancelled}); err != nil {
		t.Fatalf("cancel first: %v", err)
	}
	if _, err := c.Appointment.Create(ctx, newAppointment(n.ID, other.ID, "2030-03-11", "09:00", repo.StatusPending)); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	c := repotest.NewClient(t)
	n, _ := repotest.SeedPair(t, c)
	ctx := t.Context()

	const workers = 8
	patients := make([]*repo.User, workers)
	for i := range patients {
		patients[i] = repotest.NewPatient(t, c, n.ID)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dup   int
		otherErrs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(p *repo.User) {
			defer wg.Done()
			_, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "10:30", repo.StatusPending))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repo.ErrDuplicate):
				dup++
			default:
				otherErrs = append(otherErrs, err)
			}
		}(patients[i])
	}
	wg.Wait()

	if len(otherErrs) > 0 {
		t.Fatalf("unexpected errors: %v", otherErrs)
	}
	if ok != 1 || dup != workers-1 {
		t.Fatalf("ok=%d dup=%d, want 1/%d", ok, dup, workers-1)
	}
}

func TestFindConflicting(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	ctx := t.Context()

	a, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusPending))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := c.Appointment.FindConflicting(ctx, n.ID, "2030-03-11", "09:00", nil)
	if err != nil || got == nil || got.ID != a.ID {
		t.Fatalf("FindConflicting = %v, %v; want %s", got, err, a.ID)
	}

	got, err = c.Appointment.FindConflicting(ctx, n.ID, "2030-03-11", "09:00", &a.ID)
	if err != nil || got != nil {
		t.Fatalf("FindConflicting excluding self = %v, %v; want nil", got, err)
	}

	got, err = c.Appointment.FindConflicting(ctx, n.ID, "2030-03-11", "09:30", nil)
	if err != nil || got != nil {
		t.Fatalf("FindConflicting other time = %v, %v; want nil", got, err)
	}
}

func TestConditionalUpdate(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	ctx := t.Context()

	a, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusPending))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	scheduled := repo.StatusScheduled
	now := time.Now()
	updated, err := c.Appointment.Update(ctx, a.ID, repo.StatusPending, repo.AppointmentUpdate{Status: &scheduled, RespondedAt: &now})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != repo.StatusScheduled || updated.RespondedAt == nil {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := c.Appointment.Update(ctx, a.ID, repo.StatusPending, repo.AppointmentUpdate{Status: &scheduled}); !errors.Is(err, repo.ErrStale) {
		t.Errorf("stale update: err = %v, want ErrStale", err)
	}
	if _, err := c.Appointment.Update(ctx, uuid.New(), "", repo.AppointmentUpdate{Status: &scheduled}); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("missing update: err = %v, want ErrNotFound", err)
	}
}

func TestRescheduleOntoOccupiedSlot(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	ctx := t.Context()

	if _, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusScheduled)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "11:00", repo.StatusScheduled))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := "09:00"
	if _, err := c.Appointment.Update(ctx, b.ID, "", repo.AppointmentUpdate{Time: &at}); !errors.Is(err, repo.ErrDuplicate) {
		t.Fatalf("reschedule: err = %v, want ErrDuplicate", err)
	}
}

func TestListAndBookedTimes(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	ctx := t.Context()

	for _, in := range []*repo.Appointment{
		newAppointment(n.ID, p.ID, "2030-03-11", "14:00", repo.StatusScheduled),
		newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusPending),
		newAppointment(n.ID, p.ID, "2030-03-11", "10:00", repo.StatusCancelled),
		newAppointment(n.ID, p.ID, "2030-03-12", "09:00", repo.StatusScheduled),
	} {
		if _, err := c.Appointment.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	booked, err := c.Appointment.BookedTimes(ctx, n.ID, "2030-03-11")
	if err != nil {
		t.Fatalf("BookedTimes: %v", err)
	}
	if len(booked) != 2 || booked[0] != "09:00" || booked[1] != "14:00" {
		t.Errorf("booked = %v, want [09:00 14:00]", booked)
	}

	window, err := c.Appointment.ListByWindow(ctx, repo.StatusScheduled, "2030-03-12", "2030-03-12")
	if err != nil {
		t.Fatalf("ListByWindow: %v", err)
	}
	if len(window) != 1 || window[0].Date != "2030-03-12" {
		t.Errorf("window = %+v", window)
	}

	all, err := c.Appointment.List(ctx, repo.AppointmentFilter{PatientID: &p.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("List returned %d, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.Date > cur.Date || (prev.Date == cur.Date && prev.Time > cur.Time) {
			t.Errorf("List not ordered at %d: %s %s after %s %s", i, cur.Date, cur.Time, prev.Date, prev.Time)
		}
	}
}

func TestMarkReminderSentOnce(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	ctx := t.Context()

	a, err := c.Appointment.Create(ctx, newAppointment(n.ID, p.ID, "2030-03-11", "09:00", repo.StatusScheduled))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := c.Appointment.MarkReminderSent(ctx, a.ID, time.Now())
	if err != nil || !claimed {
		t.Fatalf("first mark = %v, %v; want true", claimed, err)
	}
	claimed, err = c.Appointment.MarkReminderSent(ctx, a.ID, time.Now())
	if err != nil || claimed {
		t.Fatalf("second mark = %v, %v; want false", claimed, err)
	}

	got, err := c.Appointment.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ReminderSentAt == nil {
		t.Error("reminderSentAt not persisted")
	}
}
