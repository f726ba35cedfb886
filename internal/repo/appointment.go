package repo

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var appointmentColumns = []string{
	"id", "patient_id", "nutritionist_id", "appointment_date", "appointment_time",
	"status", "type", "reason", "notes", "rejection_reason", "suggested_alternatives",
	"requested_at", "responded_at", "cancelled_at", "completed_at",
	"calendar_event_id", "calendar_event_link", "meet_link", "notification_sent",
	"reminder_sent_at", "created_at", "updated_at",
}

// AppointmentClient is the appointment store.
type AppointmentClient struct {
	config
}

// AppointmentFilter narrows List. Zero fields are ignored; From and To are
// inclusive YYYY-MM-DD bounds.
type AppointmentFilter struct {
	PatientID      *uuid.UUID
	NutritionistID *uuid.UUID
	Statuses       []AppointmentStatus
	From           string
	To             string
	Limit          int
	Offset         int
}

// AppointmentUpdate lists the fields to change. Nil pointers are left alone.
type AppointmentUpdate struct {
	Date                  *string
	Time                  *string
	Status                *AppointmentStatus
	Type                  *AppointmentType
	Reason                *string
	Notes                 *string
	RejectionReason       *string
	SuggestedAlternatives *[]Alternative
	RespondedAt           *time.Time
	CancelledAt           *time.Time
	CompletedAt           *time.Time
	CalendarEventID       *string
	CalendarEventLink     *string
	MeetLink              *string
	NotificationSent      *bool
	// ResetReminder clears reminder_sent_at, e.g. after a reschedule.
	ResetReminder bool
}

// Create inserts a. A zero ID is replaced with a fresh UUID. A second
// occupying appointment for the same nutritionist slot fails with
// ErrDuplicate.
func (c *AppointmentClient) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt
	if a.Type == "" {
		a.Type = TypeConsultation
	}

	alternatives, err := encodeAlternatives(a.SuggestedAlternatives)
	if err != nil {
		return nil, err
	}

	query, args := c.builder().Insert(tableAppointments).
		Columns(appointmentColumns...).
		Values(
			a.ID, a.PatientID, a.NutritionistID, a.Date, a.Time,
			string(a.Status), string(a.Type), a.Reason, a.Notes, a.RejectionReason, alternatives,
			nullTime(a.RequestedAt), nullTime(a.RespondedAt), nullTime(a.CancelledAt), nullTime(a.CompletedAt),
			a.CalendarEventID, a.CalendarEventLink, a.MeetLink, a.NotificationSent,
			nullTime(a.ReminderSentAt), a.CreatedAt, a.UpdatedAt,
		).Query()

	if _, err := c.exec(ctx, query, args); err != nil {
		return nil, mapWriteError(err)
	}
	return a, nil
}

// Get returns the appointment with the given id or ErrNotFound.
func (c *AppointmentClient) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	items, err := c.query(ctx, func(s *sql.Selector) {
		s.Where(sql.EQ("id", id)).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// FindConflicting returns an occupying appointment holding the slot, or nil
// when the slot is free. excludeID, when set, is ignored in the search.
func (c *AppointmentClient) FindConflicting(ctx context.Context, nutritionistID uuid.UUID, date, at string, excludeID *uuid.UUID) (*Appointment, error) {
	items, err := c.query(ctx, func(s *sql.Selector) {
		preds := []*sql.Predicate{
			sql.EQ("nutritionist_id", nutritionistID),
			sql.EQ("appointment_date", date),
			sql.EQ("appointment_time", at),
			sql.In("status", statusArgs(OccupyingStatuses)...),
		}
		if excludeID != nil {
			preds = append(preds, sql.NEQ("id", *excludeID))
		}
		s.Where(sql.And(preds...)).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// List returns appointments matching f ordered by date then time.
func (c *AppointmentClient) List(ctx context.Context, f AppointmentFilter) ([]*Appointment, error) {
	return c.query(ctx, func(s *sql.Selector) {
		var preds []*sql.Predicate
		if f.PatientID != nil {
			preds = append(preds, sql.EQ("patient_id", *f.PatientID))
		}
		if f.NutritionistID != nil {
			preds = append(preds, sql.EQ("nutritionist_id", *f.NutritionistID))
		}
		if len(f.Statuses) > 0 {
			preds = append(preds, sql.In("status", statusArgs(f.Statuses)...))
		}
		if f.From != "" {
			preds = append(preds, sql.GTE("appointment_date", f.From))
		}
		if f.To != "" {
			preds = append(preds, sql.LTE("appointment_date", f.To))
		}
		if len(preds) > 0 {
			s.Where(sql.And(preds...))
		}
		if f.Limit > 0 {
			s.Limit(f.Limit)
		}
		if f.Offset > 0 {
			s.Offset(f.Offset)
		}
	})
}

// ListByWindow returns appointments in status whose date lies in [from, to].
func (c *AppointmentClient) ListByWindow(ctx context.Context, status AppointmentStatus, from, to string) ([]*Appointment, error) {
	return c.List(ctx, AppointmentFilter{Statuses: []AppointmentStatus{status}, From: from, To: to})
}

// BookedTimes returns the HH:MM values of occupying appointments for the
// nutritionist on date.
func (c *AppointmentClient) BookedTimes(ctx context.Context, nutritionistID uuid.UUID, date string) ([]string, error) {
	items, err := c.List(ctx, AppointmentFilter{
		NutritionistID: &nutritionistID,
		Statuses:       OccupyingStatuses,
		From:           date,
		To:             date,
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Time)
	}
	return out, nil
}

// Update applies u to the appointment. When expected is non-empty the row is
// only written if its status still equals expected; otherwise ErrStale is
// returned. Slot collisions fail with ErrDuplicate.
func (c *AppointmentClient) Update(ctx context.Context, id uuid.UUID, expected AppointmentStatus, u AppointmentUpdate) (*Appointment, error) {
	b := c.builder().Update(tableAppointments).Set("updated_at", time.Now().UTC())

	setString := func(col string, v *string) {
		if v != nil {
			b.Set(col, *v)
		}
	}
	setTime := func(col string, v *time.Time) {
		if v != nil {
			b.Set(col, v.UTC())
		}
	}

	setString("appointment_date", u.Date)
	setString("appointment_time", u.Time)
	if u.Status != nil {
		b.Set("status", string(*u.Status))
	}
	if u.Type != nil {
		b.Set("type", string(*u.Type))
	}
	setString("reason", u.Reason)
	setString("notes", u.Notes)
	setString("rejection_reason", u.RejectionReason)
	if u.SuggestedAlternatives != nil {
		encoded, err := encodeAlternatives(*u.SuggestedAlternatives)
		if err != nil {
			return nil, err
		}
		b.Set("suggested_alternatives", encoded)
	}
	setTime("responded_at", u.RespondedAt)
	setTime("cancelled_at", u.CancelledAt)
	setTime("completed_at", u.CompletedAt)
	setString("calendar_event_id", u.CalendarEventID)
	setString("calendar_event_link", u.CalendarEventLink)
	setString("meet_link", u.MeetLink)
	if u.NotificationSent != nil {
		b.Set("notification_sent", *u.NotificationSent)
	}
	if u.ResetReminder {
		b.SetNull("reminder_sent_at")
	}

	where := sql.EQ("id", id)
	if expected != "" {
		where = sql.And(where, sql.EQ("status", string(expected)))
	}
	query, args := b.Where(where).Query()

	res, err := c.exec(ctx, query, args)
	if err != nil {
		return nil, mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := c.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStale
	}
	return c.Get(ctx, id)
}

// MarkReminderSent stamps reminder_sent_at if it is still unset. It reports
// whether this call claimed the reminder.
func (c *AppointmentClient) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query, args := c.builder().Update(tableAppointments).
		Set("reminder_sent_at", at.UTC()).
		Set("updated_at", time.Now().UTC()).
		Where(sql.And(sql.EQ("id", id), sql.IsNull("reminder_sent_at"))).
		Query()

	res, err := c.exec(ctx, query, args)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *AppointmentClient) query(ctx context.Context, modify func(*sql.Selector)) ([]*Appointment, error) {
	s := c.builder().Select(appointmentColumns...).From(sql.Table(tableAppointments))
	modify(s)
	s.OrderBy("appointment_date", "appointment_time", "created_at")
	query, args := s.Query()

	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(rows *sql.Rows) (*Appointment, error) {
	var (
		a                                                    Appointment
		status, typ, alternatives                            string
		requested, responded, cancelled, completed, reminder stdsql.NullTime
	)
	err := rows.Scan(
		&a.ID, &a.PatientID, &a.NutritionistID, &a.Date, &a.Time,
		&status, &typ, &a.Reason, &a.Notes, &a.RejectionReason, &alternatives,
		&requested, &responded, &cancelled, &completed,
		&a.CalendarEventID, &a.CalendarEventLink, &a.MeetLink, &a.NotificationSent,
		&reminder, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	a.Status = AppointmentStatus(status)
	a.Type = AppointmentType(typ)
	a.RequestedAt = timePtr(requested)
	a.RespondedAt = timePtr(responded)
	a.CancelledAt = timePtr(cancelled)
	a.CompletedAt = timePtr(completed)
	a.ReminderSentAt = timePtr(reminder)
	if alternatives != "" {
		if err := json.Unmarshal([]byte(alternatives), &a.SuggestedAlternatives); err != nil {
			return nil, fmt.Errorf("decode suggested alternatives: %w", err)
		}
	}
	return &a, nil
}

func encodeAlternatives(alts []Alternative) (string, error) {
	if alts == nil {
		alts = []Alternative{}
	}
	b, err := json.Marshal(alts)
	if err != nil {
		return "", fmt.Errorf("encode suggested alternatives: %w", err)
	}
	return string(b), nil
}

func statusArgs(statuses []AppointmentStatus) []any {
	out := make([]any, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t stdsql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
