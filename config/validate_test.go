package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		Database:       DatabaseConfig{Driver: "sqlite", SQLitePath: "test.db"},
		Authentication: AuthenticationConfig{JWT: JWTConfig{Secret: "secret"}},
		Scheduling: SchedulingConfig{
			OpenAt:        "08:00",
			CloseAt:       "18:00",
			SlotMinutes:   30,
			HorizonMonths: 6,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"valid postgres", func(c *Config) { c.Database = DatabaseConfig{Driver: "postgres", Host: "db"} }, false},
		{"postgres without host", func(c *Config) { c.Database = DatabaseConfig{Driver: "postgres"} }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"missing jwt secret", func(c *Config) { c.Authentication.JWT.Secret = "" }, true},
		{"email enabled without smtp", func(c *Config) { c.Email.Enabled = true }, true},
		{"bad time zone", func(c *Config) { c.Scheduling.TimeZone = "Mars/Olympus" }, true},
		{"close before open", func(c *Config) { c.Scheduling.CloseAt = "07:00" }, true},
		{"slot not dividing hour", func(c *Config) { c.Scheduling.SlotMinutes = 25 }, true},
		{"zero horizon", func(c *Config) { c.Scheduling.HorizonMonths = 0 }, true},
		{"nats without url", func(c *Config) { c.Nats.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `database:
  driver: sqlite
  sqlite_path: ` + filepath.Join(dir, "app.db") + `
authentication:
  jwt:
    secret: test-secret
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Scheduling.SlotMinutes != 30 {
		t.Errorf("SlotMinutes = %d, want 30", cfg.Scheduling.SlotMinutes)
	}
	if cfg.Scheduling.OpenAt != "08:00" || cfg.Scheduling.CloseAt != "18:00" {
		t.Errorf("business hours = %s-%s, want 08:00-18:00", cfg.Scheduling.OpenAt, cfg.Scheduling.CloseAt)
	}
	if cfg.Calendar.CalendarID != "primary" {
		t.Errorf("CalendarID = %q, want primary", cfg.Calendar.CalendarID)
	}
}
