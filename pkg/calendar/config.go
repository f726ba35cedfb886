package calendar

import (
	"time"

	"github.com/Alijeyrad/nutriplan_backend/config"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/calendar/v3/"
	Scope          = "https://www.googleapis.com/auth/calendar"
)

type Config struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string

	CalendarID     string
	TimeZone       string
	EventDuration  time.Duration
	RequestTimeout time.Duration

	// BaseURL overrides the Calendar v3 API endpoint.
	BaseURL string
}

func DefaultConfig() Config {
	return Config{
		CalendarID:     "primary",
		TimeZone:       "UTC",
		EventDuration:  60 * time.Minute,
		RequestTimeout: 10 * time.Second,
		BaseURL:        DefaultBaseURL,
	}
}

// HasCredentials reports whether the OAuth client is set up, which is all the
// consent flow needs.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

// Configured reports whether events can be written.
func (c Config) Configured() bool {
	return c.Enabled && c.HasCredentials() && c.RefreshToken != ""
}

// FromCentralConfig converts config.CalendarConfig. The scheduling time
// zone is used when the calendar does not set its own.
func FromCentralConfig(c config.CalendarConfig, schedulingTZ string) Config {
	def := DefaultConfig()
	cfg := Config{
		Enabled:        c.Enabled,
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		RedirectURI:    c.RedirectURI,
		RefreshToken:   c.RefreshToken,
		CalendarID:     c.CalendarID,
		TimeZone:       c.TimeZone,
		EventDuration:  time.Duration(c.EventDurationMinutes) * time.Minute,
		RequestTimeout: time.Duration(c.TimeoutSeconds) * time.Second,
		BaseURL:        def.BaseURL,
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = def.CalendarID
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = schedulingTZ
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = def.TimeZone
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = def.EventDuration
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	return cfg
}
