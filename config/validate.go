package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alijeyrad/nutriplan_backend/pkg/constants"
)

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required for the postgres driver"))
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlite_path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	if c.Authentication.JWT.Secret == "" {
		errs = append(errs, errors.New("authentication.jwt.secret is required"))
	}

	if c.Email.Enabled {
		if c.Email.From == "" || c.Email.SMTP.Host == "" {
			errs = append(errs, errors.New("email.from and email.smtp.host are required when email is enabled"))
		}
	}

	if c.Scheduling.TimeZone != "" {
		if _, err := time.LoadLocation(c.Scheduling.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("scheduling.time_zone: %w", err))
		}
	}
	open, errOpen := time.Parse(constants.TimeLayout, c.Scheduling.OpenAt)
	closeAt, errClose := time.Parse(constants.TimeLayout, c.Scheduling.CloseAt)
	switch {
	case errOpen != nil:
		errs = append(errs, fmt.Errorf("scheduling.open_at: %w", errOpen))
	case errClose != nil:
		errs = append(errs, fmt.Errorf("scheduling.close_at: %w", errClose))
	case !closeAt.After(open):
		errs = append(errs, errors.New("scheduling.close_at must be after scheduling.open_at"))
	}
	if c.Scheduling.SlotMinutes <= 0 || 60%c.Scheduling.SlotMinutes != 0 {
		errs = append(errs, fmt.Errorf("scheduling.slot_minutes must divide 60, got %d", c.Scheduling.SlotMinutes))
	}
	if c.Scheduling.HorizonMonths <= 0 {
		errs = append(errs, errors.New("scheduling.horizon_months must be positive"))
	}

	if c.Nats.Enabled && c.Nats.URL == "" {
		errs = append(errs, errors.New("nats.url is required when nats is enabled"))
	}

	return errors.Join(errs...)
}
