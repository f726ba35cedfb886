package repo

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusRejected  AppointmentStatus = "rejected"
)

// Statuses lists every status the system accepts.
var Statuses = []AppointmentStatus{
	StatusPending, StatusScheduled, StatusCompleted, StatusCancelled, StatusRejected,
}

// OccupyingStatuses hold a slot; at most one such appointment may exist per
// (nutritionist, date, time).
var OccupyingStatuses = []AppointmentStatus{StatusPending, StatusScheduled}

func (s AppointmentStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Occupying reports whether the status blocks the slot for other bookings.
func (s AppointmentStatus) Occupying() bool {
	return s == StatusPending || s == StatusScheduled
}

// Terminal reports whether the appointment has left the active lifecycle
// and can no longer be rescheduled.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeFollowUp     AppointmentType = "follow-up"
	TypeEvaluation   AppointmentType = "evaluation"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeEvaluation:
		return true
	}
	return false
}

// Alternative is a slot suggested to the patient when a request is rejected.
type Alternative struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes,omitempty"`
}

type Appointment struct {
	ID             uuid.UUID         `json:"id"`
	PatientID      uuid.UUID         `json:"patientId"`
	NutritionistID uuid.UUID         `json:"nutritionistId"`
	Date           string            `json:"date"` // YYYY-MM-DD
	Time           string            `json:"time"` // HH:MM
	Status         AppointmentStatus `json:"status"`
	Type           AppointmentType   `json:"type"`
	Reason         string            `json:"reason,omitempty"`
	Notes          string            `json:"notes,omitempty"`

	RejectionReason       string        `json:"rejectionReason,omitempty"`
	SuggestedAlternatives []Alternative `json:"suggestedAlternatives,omitempty"`

	RequestedAt *time.Time `json:"requestedAt,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CalendarEventID   string `json:"calendarEventId,omitempty"`
	CalendarEventLink string `json:"calendarEventLink,omitempty"`
	MeetLink          string `json:"meetLink,omitempty"`
	NotificationSent  bool   `json:"notificationSent"`

	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StartsAt combines date and time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, loc)
}

type Role string

const (
	RolePatient      Role = "patient"
	RoleNutritionist Role = "nutritionist"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleNutritionist, RoleAdmin:
		return true
	}
	return false
}

// HourRange is an availability window such as 09:00-13:00.
type HourRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayAvailability is one entry of a nutritionist's weekly template.
type DayAvailability struct {
	Day   string      `json:"day"` // monday..sunday
	Hours []HourRange `json:"hours"`
}

type User struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Role           Role              `json:"role"`
	NutritionistID *uuid.UUID        `json:"nutritionistId,omitempty"`
	Availability   []DayAvailability `json:"availability,omitempty"`
	Active         bool              `json:"active"`
	CreatedAt      time.Time         `json:"createdAt"`
}
