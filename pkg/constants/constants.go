package constants

const (
	AppName      = "nutriplan"
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to every environment override, e.g. NUTRIPLAN_DATABASE_HOST.
	EnvPrefix = "NUTRIPLAN"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
