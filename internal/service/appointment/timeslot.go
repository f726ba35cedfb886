package appointment

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Alijeyrad/nutriplan_backend/config"
	"github.com/Alijeyrad/nutriplan_backend/pkg/constants"
)

// Policy selects how much of the slot rules apply.
type Policy int

const (
	// PolicyStrict is used for patient self-service requests.
	PolicyStrict Policy = iota
	// PolicyRelaxed is used for staff bookings: no business-hours or horizon
	// limits.
	PolicyRelaxed
)

func (p Policy) String() string {
	if p == PolicyRelaxed {
		return "relaxed"
	}
	return "strict"
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// SlotRules are the bookable-slot constraints. OpenAt and CloseAt are
// minutes after midnight; both ends are bookable slot starts.
type SlotRules struct {
	Location      *time.Location
	OpenAt        int
	CloseAt       int
	SlotMinutes   int
	HorizonMonths int
}

func DefaultSlotRules() SlotRules {
	return SlotRules{
		Location:      time.Local,
		OpenAt:        8 * 60,
		CloseAt:       18 * 60,
		SlotMinutes:   30,
		HorizonMonths: 6,
	}
}

// SlotRulesFromConfig expects a config that already passed Validate.
func SlotRulesFromConfig(c config.SchedulingConfig) (SlotRules, error) {
	r := DefaultSlotRules()
	if c.TimeZone != "" {
		loc, err := time.LoadLocation(c.TimeZone)
		if err != nil {
			return r, fmt.Errorf("scheduling time zone: %w", err)
		}
		r.Location = loc
	}
	if c.OpenAt != "" {
		m, err := minutesOf(c.OpenAt)
		if err != nil {
			return r, fmt.Errorf("scheduling open_at: %w", err)
		}
		r.OpenAt = m
	}
	if c.CloseAt != "" {
		m, err := minutesOf(c.CloseAt)
		if err != nil {
			return r, fmt.Errorf("scheduling close_at: %w", err)
		}
		r.CloseAt = m
	}
	if c.SlotMinutes > 0 {
		r.SlotMinutes = c.SlotMinutes
	}
	if c.HorizonMonths > 0 {
		r.HorizonMonths = c.HorizonMonths
	}
	return r, nil
}

func minutesOf(hhmm string) (int, error) {
	t, err := time.Parse(constants.TimeLayout, hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Validator checks proposed slots. It performs no I/O; now is injected so
// results are deterministic.
type Validator struct {
	rules SlotRules
	now   func() time.Time
}

func NewValidator(rules SlotRules, now func() time.Time) *Validator {
	if rules.Location == nil {
		rules.Location = time.Local
	}
	if rules.SlotMinutes <= 0 {
		rules.SlotMinutes = 30
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{rules: rules, now: now}
}

func (v *Validator) Location() *time.Location { return v.rules.Location }

// Today is the current calendar date in the scheduling time zone.
func (v *Validator) Today() time.Time {
	n := v.now().In(v.rules.Location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, v.rules.Location)
}

// Validate returns nil or a *ValidationError. Checks run in order: date
// format, time format, past, horizon, business hours, granularity.
func (v *Validator) Validate(date, at string, p Policy) error {
	if !dateRe.MatchString(date) {
		return invalid("date", "must be YYYY-MM-DD")
	}
	day, err := time.ParseInLocation(constants.DateLayout, date, v.rules.Location)
	if err != nil {
		return invalid("date", "is not a calendar date")
	}
	if !timeRe.MatchString(at) {
		return invalid("time", "must be HH:MM")
	}
	minutes, _ := minutesOf(at)

	now := v.now().In(v.rules.Location)
	today := v.Today()
	if day.Before(today) {
		return invalid("date", "is in the past")
	}
	if day.Equal(today) && minutes <= now.Hour()*60+now.Minute() {
		return invalid("time", "is in the past")
	}

	if p == PolicyStrict {
		if day.After(today.AddDate(0, v.rules.HorizonMonths, 0)) {
			return invalid("date", fmt.Sprintf("cannot be more than %d months ahead", v.rules.HorizonMonths))
		}
		if minutes < v.rules.OpenAt || minutes > v.rules.CloseAt {
			return invalid("time", fmt.Sprintf("must be between %s and %s", formatMinutes(v.rules.OpenAt), formatMinutes(v.rules.CloseAt)))
		}
	}

	if minutes%v.rules.SlotMinutes != 0 {
		return invalid("time", fmt.Sprintf("must be on a %d-minute boundary", v.rules.SlotMinutes))
	}
	return nil
}
