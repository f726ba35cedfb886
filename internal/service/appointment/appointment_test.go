package appointment_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/repo/repotest"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/appointment"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/integration"
	"github.com/Alijeyrad/nutriplan_backend/pkg/calendar"
	"github.com/Alijeyrad/nutriplan_backend/pkg/email"
)

var now = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

type fakeIntegrations struct {
	calls []string
}

func (f *fakeIntegrations) Created(context.Context, *repo.Appointment) integration.Outcome {
	f.calls = append(f.calls, "created")
	return integration.Outcome{CalendarCreated: true, EmailSent: true, MeetLink: "https://meet.example/x"}
}

func (f *fakeIntegrations) Rejected(context.Context, *repo.Appointment) integration.Outcome {
	f.calls = append(f.calls, "rejected")
	return integration.Outcome{EmailSent: true}
}

func (f *fakeIntegrations) Cancelled(context.Context, *repo.Appointment) integration.Outcome {
	f.calls = append(f.calls, "cancelled")
	return integration.Outcome{CalendarCancelled: true}
}

func (f *fakeIntegrations) Updated(_ context.Context, before, after *repo.Appointment) integration.Outcome {
	f.calls = append(f.calls, "updated")
	return integration.Outcome{CalendarUpdated: true}
}

// blindStore skips the pre-flight check so only the storage constraint can
// catch a collision.
type blindStore struct {
	*repo.AppointmentClient
}

func (blindStore) FindConflicting(context.Context, uuid.UUID, string, string, *uuid.UUID) (*repo.Appointment, error) {
	return nil, nil
}

// takenStore reports the slot as held by another appointment during approval.
type takenStore struct {
	*repo.AppointmentClient
	holder uuid.UUID
}

func (s takenStore) FindConflicting(ctx context.Context, nutritionistID uuid.UUID, date, at string, excludeID *uuid.UUID) (*repo.Appointment, error) {
	if excludeID != nil {
		return &repo.Appointment{ID: s.holder, NutritionistID: nutritionistID, Date: date, Time: at, Status: repo.StatusScheduled}, nil
	}
	return s.AppointmentClient.FindConflicting(ctx, nutritionistID, date, at, excludeID)
}

type fixture struct {
	client       *repo.Client
	svc          appointment.Service
	nutritionist *repo.User
	patient      *repo.User
	admin        *repo.User
	pub          *recordingPublisher
	integrations *fakeIntegrations
}

func (f *fixture) patientActor() appointment.Actor {
	return appointment.Actor{ID: f.patient.ID, Role: repo.RolePatient}
}

func (f *fixture) nutritionistActor() appointment.Actor {
	return appointment.Actor{ID: f.nutritionist.ID, Role: repo.RoleNutritionist}
}

func (f *fixture) adminActor() appointment.Actor {
	return appointment.Actor{ID: f.admin.ID, Role: repo.RoleAdmin}
}

func newFixture(t *testing.T, wrap func(*repo.AppointmentClient) appointment.Store) *fixture {
	t.Helper()
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	admin := repotest.NewUser(t, c, &repo.User{Name: "Ada Admin", Role: repo.RoleAdmin, Active: true})

	var store appointment.Store = c.Appointment
	if wrap != nil {
		store = wrap(c.Appointment)
	}

	rules := appointment.DefaultSlotRules()
	rules.Location = time.UTC
	clock := func() time.Time { return now }

	f := &fixture{
		client:       c,
		nutritionist: n,
		patient:      p,
		admin:        admin,
		pub:          &recordingPublisher{},
		integrations: &fakeIntegrations{},
	}
	f.svc = appointment.New(appointment.Deps{
		Store:         store,
		Users:         c.User,
		Validator:     appointment.NewValidator(rules, clock),
		Integrations:  f.integrations,
		Publisher:     f.pub,
		SubjectPrefix: "nutriplan",
		Now:           clock,
	})
	return f
}

func (f *fixture) request(t *testing.T, patient *repo.User, date, at string) *repo.Appointment {
	t.Helper()
	res, err := f.svc.Request(t.Context(), appointment.Actor{ID: patient.ID, Role: repo.RolePatient}, appointment.RequestInput{
		Date: date, Time: at, Reason: "check-in",
	})
	if err != nil {
		t.Fatalf("Request(%s %s): %v", date, at, err)
	}
	return res.Appointment
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *repo.Appointment {
	t.Helper()
	a, err := f.client.Appointment.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return a
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestRequestApproveRetryScenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	other := repotest.NewPatient(t, f.client, f.nutritionist.ID)

	first := f.request(t, f.patient, "2025-03-10", "09:00")
	if first.Status != repo.StatusPending || first.RespondedAt != nil || first.RequestedAt == nil {
		t.Fatalf("after request: status=%s respondedAt=%v requestedAt=%v", first.Status, first.RespondedAt, first.RequestedAt)
	}
	if first.NutritionistID != f.nutritionist.ID {
		t.Errorf("assigned nutritionist not used: %s", first.NutritionistID)
	}

	_, err := f.svc.Request(ctx, appointment.Actor{ID: other.ID, Role: repo.RolePatient}, appointment.RequestInput{Date: "2025-03-10", Time: "09:00"})
	var cerr *appointment.ConflictError
	if !errors.As(err, &cerr) || cerr.ExistingID != first.ID {
		t.Fatalf("second request: err = %v, want ConflictError on %s", err, first.ID)
	}

	res, err := f.svc.Approve(ctx, f.nutritionistActor(), first.ID, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if res.Appointment.Status != repo.StatusScheduled || res.Appointment.RespondedAt == nil {
		t.Fatalf("after approve: %+v", res.Appointment)
	}
	if !res.Integrations.CalendarCreated || res.Integrations.MeetLink == "" {
		t.Errorf("integrations = %+v", res.Integrations)
	}

	retry := f.request(t, other, "2025-03-10", "09:30")
	if retry.Status != repo.StatusPending {
		t.Errorf("retry status = %s", retry.Status)
	}

	want := []string{
		"nutriplan.appointment.created." + first.ID.String(),
		"nutriplan.appointment.approved." + first.ID.String(),
		"nutriplan.appointment.created." + retry.ID.String(),
	}
	if strings.Join(f.pub.subjects, ",") != strings.Join(want, ",") {
		t.Errorf("published %v, want %v", f.pub.subjects, want)
	}
}

func TestConcurrentRequestsSingleWinner(t *testing.T) {
	for _, tc := range []struct {
		name string
		wrap func(*repo.AppointmentClient) appointment.Store
	}{
		{"with pre-flight", nil},
		{"storage constraint only", func(c *repo.AppointmentClient) appointment.Store { return blindStore{c} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.wrap)
			const workers = 6
			patients := make([]*repo.User, workers)
			for i := range patients {
				patients[i] = repotest.NewPatient(t, f.client, f.nutritionist.ID)
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				ok, clash int
				others    []error
			)
			for _, p := range patients {
				wg.Add(1)
				go func(p *repo.User) {
					defer wg.Done()
					_, err := f.svc.Request(t.Context(), appointment.Actor{ID: p.ID, Role: repo.RolePatient}, appointment.RequestInput{Date: "2025-03-10", Time: "11:00"})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, appointment.ErrConflict):
						clash++
					default:
						others = append(others, err)
					}
				}(p)
			}
			wg.Wait()

			if len(others) > 0 {
				t.Fatalf("unexpected errors: %v", others)
			}
			if ok != 1 || clash != workers-1 {
				t.Fatalf("ok=%d conflicts=%d, want 1/%d", ok, clash, workers-1)
			}
		})
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t, nil)
	a := f.request(t, f.patient, "2025-03-10", "10:00")

	for _, reason := range []string{"", "   ", "busy", "  too short ", strings.Repeat("x", 501)} {
		_, err := f.svc.Reject(t.Context(), f.nutritionistActor(), a.ID, appointment.RejectInput{Reason: reason})
		if !errors.Is(err, appointment.ErrValidation) {
			t.Fatalf("Reject(%q): err = %v, want ErrValidation", reason, err)
		}
	}
	if got := f.stored(t, a.ID); got.Status != repo.StatusPending || got.RespondedAt != nil {
		t.Fatalf("record changed: %+v", got)
	}

	res, err := f.svc.Reject(t.Context(), f.nutritionistActor(), a.ID, appointment.RejectInput{
		Reason:       "Fully booked that morning",
		Alternatives: []repo.Alternative{{Date: "2025-03-11", Time: "19:00", Notes: "evening"}},
	})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	got := res.Appointment
	if got.Status != repo.StatusRejected || got.RejectionReason != "Fully booked that morning" || got.RespondedAt == nil {
		t.Errorf("after reject: %+v", got)
	}
	if len(got.SuggestedAlternatives) != 1 || got.SuggestedAlternatives[0].Time != "19:00" {
		t.Errorf("alternatives = %+v", got.SuggestedAlternatives)
	}
	if !res.Integrations.EmailSent {
		t.Errorf("integrations = %+v", res.Integrations)
	}
}

func TestRejectValidatesAlternatives(t *testing.T) {
	f := newFixture(t, nil)
	a := f.request(t, f.patient, "2025-03-10", "10:00")

	tests := []struct {
		name string
		alts []repo.Alternative
	}{
		{"past date", []repo.Alternative{{Date: "2025-03-01", Time: "09:00"}}},
		{"off granularity", []repo.Alternative{{Date: "2025-03-11", Time: "09:10"}}},
		{"too many", make([]repo.Alternative, 6)},
		{"long notes", []repo.Alternative{{Date: "2025-03-11", Time: "09:00", Notes: strings.Repeat("x", 201)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Reject(t.Context(), f.nutritionistActor(), a.ID, appointment.RejectInput{Reason: "Not available then", Alternatives: tt.alts})
			if !errors.Is(err, appointment.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRespondedAtSetOnce(t *testing.T) {
	f := newFixture(t, nil)
	a := f.request(t, f.patient, "2025-03-10", "09:00")

	res, err := f.svc.Approve(t.Context(), f.nutritionistActor(), a.ID, "see you")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	responded := *res.Appointment.RespondedAt
	if res.Appointment.Notes != "see you" {
		t.Errorf("notes = %q", res.Appointment.Notes)
	}

	if _, err := f.svc.Complete(t.Context(), f.nutritionistActor(), a.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got := f.stored(t, a.ID)
	if got.RespondedAt == nil || !got.RespondedAt.Equal(responded) {
		t.Errorf("respondedAt changed: %v -> %v", responded, got.RespondedAt)
	}
	if got.CompletedAt == nil {
		t.Error("completedAt not set")
	}
}

func TestDirectBookingKeepsRespondedAtNull(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.CreateDirect(t.Context(), f.nutritionistActor(), appointment.DirectInput{
		PatientID: f.patient.ID,
		Date:      "2025-03-10",
		Time:      "19:30",
		Type:      "follow-up",
	})
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	a := res.Appointment
	if a.Status != repo.StatusScheduled || a.RespondedAt != nil || a.Type != repo.TypeFollowUp {
		t.Fatalf("direct booking = %+v", a)
	}
	if len(f.integrations.calls) != 1 || f.integrations.calls[0] != "created" {
		t.Errorf("integration calls = %v", f.integrations.calls)
	}

	if _, err := f.svc.Cancel(t.Context(), f.patientActor(), a.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := f.stored(t, a.ID); got.RespondedAt != nil || got.CancelledAt == nil {
		t.Errorf("after cancel: respondedAt=%v cancelledAt=%v", got.RespondedAt, got.CancelledAt)
	}
}

func TestCreateDirectChecks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	otherNutritionist := repotest.NewUser(t, f.client, &repo.User{Name: "Nico", Role: repo.RoleNutritionist, Active: true})

	tests := []struct {
		name  string
		actor appointment.Actor
		in    appointment.DirectInput
		want  error
	}{
		{"patient cannot book", f.patientActor(), appointment.DirectInput{PatientID: f.patient.ID, Date: "2025-03-10", Time: "09:00"}, appointment.ErrPermission},
		{"nutritionist books only for self", f.nutritionistActor(), appointment.DirectInput{PatientID: f.patient.ID, NutritionistID: &otherNutritionist.ID, Date: "2025-03-10", Time: "09:00"}, appointment.ErrPermission},
		{"admin must name nutritionist", f.adminActor(), appointment.DirectInput{PatientID: f.patient.ID, Date: "2025-03-10", Time: "09:00"}, appointment.ErrValidation},
		{"unknown patient", f.nutritionistActor(), appointment.DirectInput{PatientID: uuid.New(), Date: "2025-03-10", Time: "09:00"}, appointment.ErrValidation},
		{"patient id is a nutritionist", f.adminActor(), appointment.DirectInput{PatientID: otherNutritionist.ID, NutritionistID: &f.nutritionist.ID, Date: "2025-03-10", Time: "09:00"}, appointment.ErrValidation},
		{"bad type", f.nutritionistActor(), appointment.DirectInput{PatientID: f.patient.ID, Date: "2025-03-10", Time: "09:00", Type: "emergency"}, appointment.ErrValidation},
		{"past", f.nutritionistActor(), appointment.DirectInput{PatientID: f.patient.ID, Date: "2025-03-01", Time: "09:00"}, appointment.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateDirect(ctx, tt.actor, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.svc.CreateDirect(ctx, f.adminActor(), appointment.DirectInput{PatientID: f.patient.ID, NutritionistID: &otherNutritionist.ID, Date: "2025-03-10", Time: "09:00"}); err != nil {
		t.Fatalf("admin booking: %v", err)
	}
	_, err := f.svc.CreateDirect(ctx, appointment.Actor{ID: otherNutritionist.ID, Role: repo.RoleNutritionist}, appointment.DirectInput{PatientID: f.patient.ID, Date: "2025-03-10", Time: "09:00"})
	if !errors.Is(err, appointment.ErrConflict) {
		t.Fatalf("double booking: err = %v, want ErrConflict", err)
	}
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	stranger := repotest.NewPatient(t, f.client, f.nutritionist.ID)

	a := f.request(t, f.patient, "2025-03-10", "09:00")
	if _, err := f.svc.Cancel(ctx, appointment.Actor{ID: stranger.ID, Role: repo.RolePatient}, a.ID); !errors.Is(err, appointment.ErrPermission) {
		t.Fatalf("stranger cancel: err = %v, want ErrPermission", err)
	}

	res, err := f.svc.Cancel(ctx, f.patientActor(), a.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.Appointment.Status != repo.StatusCancelled || res.Appointment.RespondedAt == nil {
		t.Errorf("cancelled pending request: %+v", res.Appointment)
	}

	_, err = f.svc.Cancel(ctx, f.patientActor(), a.ID)
	var serr *appointment.InvalidStateError
	if !errors.As(err, &serr) || serr.From != repo.StatusCancelled {
		t.Fatalf("second cancel: err = %v, want InvalidStateError from cancelled", err)
	}

	b := f.request(t, f.patient, "2025-03-10", "10:00")
	if _, err := f.svc.Approve(ctx, f.adminActor(), b.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.svc.Complete(ctx, f.nutritionistActor(), b.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	before := f.stored(t, b.ID)
	if _, err := f.svc.Cancel(ctx, f.adminActor(), b.ID); !errors.Is(err, appointment.ErrInvalidState) {
		t.Fatalf("cancel completed: err = %v, want ErrInvalidState", err)
	}
	after := f.stored(t, b.ID)
	if after.Status != repo.StatusCompleted || after.CancelledAt != nil || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("completed record changed: %+v", after)
	}

	c := f.request(t, f.patient, "2025-03-10", "11:00")
	rejected, err := f.svc.Reject(ctx, f.nutritionistActor(), c.ID, appointment.RejectInput{Reason: "Out of office"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	res, err = f.svc.Cancel(ctx, f.patientActor(), c.ID)
	if err != nil {
		t.Fatalf("cancel rejected: %v", err)
	}
	got := res.Appointment
	if got.Status != repo.StatusCancelled || got.CancelledAt == nil {
		t.Errorf("cancelled rejected request: %+v", got)
	}
	if got.RespondedAt == nil || !got.RespondedAt.Equal(*rejected.Appointment.RespondedAt) {
		t.Errorf("respondedAt rewritten: %v, want %v", got.RespondedAt, rejected.Appointment.RespondedAt)
	}
	if got.RejectionReason != "Out of office" {
		t.Errorf("rejection reason lost: %q", got.RejectionReason)
	}
}

func TestStateGuards(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	a := f.request(t, f.patient, "2025-03-10", "09:00")

	if _, err := f.svc.Complete(ctx, f.nutritionistActor(), a.ID); !errors.Is(err, appointment.ErrInvalidState) {
		t.Errorf("complete pending: err = %v", err)
	}
	if _, err := f.svc.Approve(ctx, f.patientActor(), a.ID, ""); !errors.Is(err, appointment.ErrPermission) {
		t.Errorf("patient approve: err = %v", err)
	}
	other := repotest.NewUser(t, f.client, &repo.User{Name: "Nico", Role: repo.RoleNutritionist, Active: true})
	if _, err := f.svc.Approve(ctx, appointment.Actor{ID: other.ID, Role: repo.RoleNutritionist}, a.ID, ""); !errors.Is(err, appointment.ErrPermission) {
		t.Errorf("foreign nutritionist approve: err = %v", err)
	}
	if _, err := f.svc.Approve(ctx, f.nutritionistActor(), a.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.svc.Approve(ctx, f.nutritionistActor(), a.ID, ""); !errors.Is(err, appointment.ErrInvalidState) {
		t.Errorf("approve twice: err = %v", err)
	}
	if _, err := f.svc.Reject(ctx, f.nutritionistActor(), a.ID, appointment.RejectInput{Reason: "Changed my mind"}); !errors.Is(err, appointment.ErrInvalidState) {
		t.Errorf("reject scheduled: err = %v", err)
	}

	missing := uuid.New()
	_, err := f.svc.Approve(ctx, f.nutritionistActor(), missing, "")
	var nerr *appointment.NotFoundError
	if !errors.As(err, &nerr) || nerr.ID != missing {
		t.Errorf("approve missing: err = %v", err)
	}
}

func TestApproveAfterSlotTaken(t *testing.T) {
	holder := uuid.New()
	f := newFixture(t, func(c *repo.AppointmentClient) appointment.Store { return takenStore{c, holder} })
	a := f.request(t, f.patient, "2025-03-10", "09:00")

	_, err := f.svc.Approve(t.Context(), f.nutritionistActor(), a.ID, "")
	var cerr *appointment.ConflictError
	if !errors.As(err, &cerr) || cerr.ExistingID != holder {
		t.Fatalf("Approve: err = %v, want ConflictError held by %s", err, holder)
	}
	if got := f.stored(t, a.ID); got.Status != repo.StatusPending || got.RespondedAt != nil {
		t.Errorf("appointment changed: %+v", got)
	}
	if len(f.integrations.calls) != 0 {
		t.Errorf("integrations called: %v", f.integrations.calls)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, func(c *repo.AppointmentClient) appointment.Store { return blindStore{c} })
	ctx := t.Context()

	a := f.request(t, f.patient, "2025-03-10", "09:00")
	b := f.request(t, f.patient, "2025-03-10", "10:00")

	t.Run("reschedule onto occupied slot", func(t *testing.T) {
		at := "09:00"
		_, err := f.svc.Update(ctx, f.nutritionistActor(), b.ID, appointment.UpdateInput{Time: &at})
		if !errors.Is(err, appointment.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
		if got := f.stored(t, b.ID); got.Time != "10:00" {
			t.Errorf("time changed to %s", got.Time)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		for _, s := range []string{"confirmed", "no-show", "rescheduled"} {
			st := s
			if _, err := f.svc.Update(ctx, f.nutritionistActor(), a.ID, appointment.UpdateInput{Status: &st}); !errors.Is(err, appointment.ErrValidation) {
				t.Errorf("status %q: err = %v, want ErrValidation", s, err)
			}
		}
	})

	t.Run("illegal transition", func(t *testing.T) {
		st := "completed"
		if _, err := f.svc.Update(ctx, f.nutritionistActor(), a.ID, appointment.UpdateInput{Status: &st}); !errors.Is(err, appointment.ErrInvalidState) {
			t.Errorf("err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("patient cannot update", func(t *testing.T) {
		n := "x"
		if _, err := f.svc.Update(ctx, f.patientActor(), a.ID, appointment.UpdateInput{Notes: &n}); !errors.Is(err, appointment.ErrPermission) {
			t.Errorf("err = %v, want ErrPermission", err)
		}
	})

	t.Run("reschedule outside hours is allowed for staff", func(t *testing.T) {
		date, at := "2025-03-12", "19:00"
		res, err := f.svc.Update(ctx, f.nutritionistActor(), a.ID, appointment.UpdateInput{Date: &date, Time: &at})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if res.Appointment.Date != date || res.Appointment.Time != at || res.Appointment.Status != repo.StatusPending {
			t.Errorf("after update: %+v", res.Appointment)
		}
		if !res.Integrations.CalendarUpdated {
			t.Errorf("integrations = %+v", res.Integrations)
		}
	})

	t.Run("status through transition table", func(t *testing.T) {
		st := "scheduled"
		res, err := f.svc.Update(ctx, f.adminActor(), b.ID, appointment.UpdateInput{Status: &st})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if res.Appointment.Status != repo.StatusScheduled || res.Appointment.RespondedAt == nil {
			t.Errorf("after update: %+v", res.Appointment)
		}
	})

	t.Run("reject through update needs reason", func(t *testing.T) {
		c := f.request(t, f.patient, "2025-03-10", "14:00")
		st := "rejected"
		if _, err := f.svc.Update(ctx, f.nutritionistActor(), c.ID, appointment.UpdateInput{Status: &st}); !errors.Is(err, appointment.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
		for _, reason := range []string{"busy", strings.Repeat("y", 501)} {
			r := reason
			if _, err := f.svc.Update(ctx, f.nutritionistActor(), c.ID, appointment.UpdateInput{Status: &st, RejectionReason: &r}); !errors.Is(err, appointment.ErrValidation) {
				t.Errorf("reason of %d chars: err = %v, want ErrValidation", len(r), err)
			}
		}
		if got := f.stored(t, c.ID); got.Status != repo.StatusPending {
			t.Fatalf("status changed to %s", got.Status)
		}

		r := "  Clinic closed for training  "
		res, err := f.svc.Update(ctx, f.nutritionistActor(), c.ID, appointment.UpdateInput{Status: &st, RejectionReason: &r})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if res.Appointment.Status != repo.StatusRejected || res.Appointment.RejectionReason != "Clinic closed for training" {
			t.Errorf("after update: %+v", res.Appointment)
		}
	})
}

func TestRescheduleResetsReminder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	res, err := f.svc.CreateDirect(ctx, f.nutritionistActor(), appointment.DirectInput{PatientID: f.patient.ID, Date: "2025-03-04", Time: "09:00"})
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	if _, err := f.client.Appointment.MarkReminderSent(ctx, res.Appointment.ID, now); err != nil {
		t.Fatalf("MarkReminderSent: %v", err)
	}

	date := "2025-03-05"
	if _, err := f.svc.Update(ctx, f.nutritionistActor(), res.Appointment.ID, appointment.UpdateInput{Date: &date}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := f.stored(t, res.Appointment.ID); got.ReminderSentAt != nil {
		t.Errorf("reminderSentAt = %v, want nil after reschedule", got.ReminderSentAt)
	}
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	other := repotest.NewPatient(t, f.client, f.nutritionist.ID)

	mine := f.request(t, f.patient, "2025-03-11", "09:00")
	f.request(t, f.patient, "2025-03-10", "09:00")
	f.request(t, other, "2025-03-10", "10:00")

	if _, err := f.svc.Get(ctx, appointment.Actor{ID: other.ID, Role: repo.RolePatient}, mine.ID); !errors.Is(err, appointment.ErrPermission) {
		t.Errorf("foreign get: err = %v", err)
	}
	if _, err := f.svc.Get(ctx, f.adminActor(), mine.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}

	list, err := f.svc.List(ctx, f.patientActor(), appointment.ListInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Date != "2025-03-10" {
		t.Errorf("patient list = %d items, first %v", len(list), list)
	}

	list, err = f.svc.List(ctx, f.nutritionistActor(), appointment.ListInput{Status: "pending"})
	if err != nil || len(list) != 3 {
		t.Errorf("nutritionist list = %d, %v; want 3", len(list), err)
	}

	list, err = f.svc.List(ctx, f.adminActor(), appointment.ListInput{PatientID: &other.ID})
	if err != nil || len(list) != 1 {
		t.Errorf("admin filtered list = %d, %v; want 1", len(list), err)
	}

	if _, err := f.svc.List(ctx, f.adminActor(), appointment.ListInput{Status: "confirmed"}); !errors.Is(err, appointment.ErrValidation) {
		t.Errorf("bad status filter: err = %v", err)
	}

	free, err := f.svc.IsAvailable(ctx, f.nutritionist.ID, "2025-03-11", "09:00", nil)
	if err != nil || free {
		t.Errorf("IsAvailable taken = %v, %v", free, err)
	}
	free, err = f.svc.IsAvailable(ctx, f.nutritionist.ID, "2025-03-11", "09:00", &mine.ID)
	if err != nil || !free {
		t.Errorf("IsAvailable excluding self = %v, %v", free, err)
	}
}

// ---------------------------------------------------------------------------
// with the real coordinator
// ---------------------------------------------------------------------------

type downCalendar struct{}

func (downCalendar) IsConfigured() bool { return true }
func (downCalendar) HasCredentials() bool { return true }
func (downCalendar) AuthURL(string) (string, error) { return "", nil }
func (downCalendar) Exchange(context.Context, string) (*oauth2.Token, error) { return nil, errors.New("down") }
func (downCalendar) CreateEvent(context.Context, calendar.Appointment) (calendar.Result, error) {
	return calendar.Result{}, calendar.ErrProvider{Op: "create", Status: 503, Err: errors.New("backend unavailable")}
}
func (downCalendar) UpdateEvent(context.Context, string, calendar.Appointment) (calendar.Result, error) {
	return calendar.Result{}, errors.New("down")
}
func (downCalendar) CancelEvent(context.Context, string) error { return errors.New("down") }

type okNotifier struct{ sent int }

func (n *okNotifier) IsConfigured() bool { return true }
func (n *okNotifier) SendConfirmation(context.Context, email.AppointmentData) error {
	n.sent++
	return nil
}
func (n *okNotifier) SendCancellation(context.Context, email.AppointmentData) error { return nil }
func (n *okNotifier) SendRejection(context.Context, email.AppointmentData) error { return nil }
func (n *okNotifier) SendReminder(context.Context, email.AppointmentData) error { return nil }

func TestDirectBookingSurvivesCalendarOutage(t *testing.T) {
	c := repotest.NewClient(t)
	n, p := repotest.SeedPair(t, c)
	notifier := &okNotifier{}

	coord := integration.New(integration.Deps{
		Calendar: downCalendar{},
		Notifier: notifier,
		Users:    c.User,
		Store:    c.Appointment,
		Timeout:  time.Second,
	})
	rules := appointment.DefaultSlotRules()
	rules.Location = time.UTC
	clock := func() time.Time { return now }
	svc := appointment.New(appointment.Deps{
		Store:        c.Appointment,
		Users:        c.User,
		Validator:    appointment.NewValidator(rules, clock),
		Integrations: coord,
		Now:          clock,
	})

	res, err := svc.CreateDirect(t.Context(), appointment.Actor{ID: n.ID, Role: repo.RoleNutritionist}, appointment.DirectInput{
		PatientID: p.ID,
		Date:      "2025-04-01",
		Time:      "10:00",
	})
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	if res.Appointment.Status != repo.StatusScheduled {
		t.Errorf("status = %s", res.Appointment.Status)
	}
	if res.Integrations.CalendarCreated || !res.Integrations.EmailSent {
		t.Errorf("integrations = %+v, want calendar false, email true", res.Integrations)
	}
	if notifier.sent != 1 {
		t.Errorf("confirmations sent = %d", notifier.sent)
	}

	stored, err := c.Appointment.Get(t.Context(), res.Appointment.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != repo.StatusScheduled || stored.CalendarEventID != "" || !stored.NotificationSent {
		t.Errorf("stored = %+v", stored)
	}
}
