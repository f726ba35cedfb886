package email

import (
	"time"

	"github.com/Alijeyrad/nutriplan_backend/config"
)

// Config holds email service configuration
type Config struct {
	Enabled bool
	From    string

	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPUseTLS         bool
	SMTPTimeoutSeconds int

	// Used by the appointment templates.
	AppName string
	BaseURL string
}

func DefaultConfig() Config {
	return Config{
		SMTPPort:           587,
		SMTPTimeoutSeconds: 30,
		AppName:            "NutriPlan",
	}
}

func (c Config) SMTPTimeout() time.Duration {
	if c.SMTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SMTPTimeoutSeconds) * time.Second
}

// Configured reports whether mail can actually be delivered.
func (c Config) Configured() bool {
	return c.Enabled && c.From != "" && c.SMTPHost != ""
}

// FromCentralConfig converts central config.EmailConfig to package Config
func FromCentralConfig(c config.EmailConfig) Config {
	cfg := Config{
		Enabled:            c.Enabled,
		From:               c.From,
		SMTPHost:           c.SMTP.Host,
		SMTPPort:           c.SMTP.Port,
		SMTPUsername:       c.SMTP.Username,
		SMTPPassword:       c.SMTP.Password,
		SMTPUseTLS:         c.SMTP.UseTLS,
		SMTPTimeoutSeconds: c.SMTP.TimeoutSeconds,
		AppName:            c.AppName,
		BaseURL:            c.BaseURL,
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultConfig().AppName
	}
	return cfg
}
