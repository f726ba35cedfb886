package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/nutriplan_backend/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// Allow env vars to override config values.
	// e.g. NUTRIPLAN_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Containers may ship without a file and rely on env only.
		if os.Getenv(constants.EnvPrefix+"_DATABASE_DRIVER") == "" && os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "nutriplan.db")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.requests_per_window", 20)
	v.SetDefault("server.rate_limit.window_seconds", 30)

	v.SetDefault("authentication.jwt.issuer", constants.AppName)
	v.SetDefault("authentication.jwt.access_ttl_minutes", 60)

	v.SetDefault("email.app_name", "NutriPlan")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.timeout_seconds", 30)

	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.event_duration_minutes", 60)
	v.SetDefault("calendar.timeout_seconds", 10)

	v.SetDefault("scheduling.open_at", "08:00")
	v.SetDefault("scheduling.close_at", "18:00")
	v.SetDefault("scheduling.slot_minutes", 30)
	v.SetDefault("scheduling.horizon_months", 6)
	v.SetDefault("scheduling.integration_timeout_seconds", 10)

	v.SetDefault("reminders.lock_ttl_seconds", 600)

	v.SetDefault("nats.subject_prefix", constants.AppName)

	v.SetDefault("observability.service_name", "nutriplan_backend")
	v.SetDefault("logging.level", "info")
}
