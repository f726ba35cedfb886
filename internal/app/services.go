package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/nutriplan_backend/config"
	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/appointment"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/integration"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/reminder"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/scheduling"
	"github.com/Alijeyrad/nutriplan_backend/pkg/calendar"
	"github.com/Alijeyrad/nutriplan_backend/pkg/email"
	"github.com/Alijeyrad/nutriplan_backend/pkg/events"
	"github.com/Alijeyrad/nutriplan_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/nutriplan_backend/pkg/redis"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideSlotValidator,
		ProvideIntegrationCoordinator,
		ProvideAppointmentService,
		ProvideReminderService,
		ProvideSchedulingService,
	),
)

func ProvideSlotValidator(cfg *config.Config) (*appointment.Validator, error) {
	rules, err := appointment.SlotRulesFromConfig(cfg.Scheduling)
	if err != nil {
		return nil, err
	}
	return appointment.NewValidator(rules, time.Now), nil
}

func ProvideIntegrationCoordinator(
	cfg *config.Config,
	db *repo.Client,
	cal *calendar.Client,
	mail *email.Client,
	metrics *observability.SchedulingMetrics,
) *integration.Coordinator {
	return integration.New(integration.Deps{
		Calendar: cal,
		Notifier: mail,
		Users:    db.User,
		Store:    db.Appointment,
		Metrics:  metrics,
		Timeout:  time.Duration(cfg.Scheduling.IntegrationTimeoutSeconds) * time.Second,
	})
}

func ProvideAppointmentService(
	cfg *config.Config,
	db *repo.Client,
	validator *appointment.Validator,
	coord *integration.Coordinator,
	pub *events.Publisher,
	metrics *observability.SchedulingMetrics,
) appointment.Service {
	return appointment.New(appointment.Deps{
		Store:         db.Appointment,
		Users:         db.User,
		Validator:     validator,
		Integrations:  coord,
		Publisher:     pub,
		Metrics:       metrics,
		SubjectPrefix: cfg.Nats.SubjectPrefix,
	})
}

func ProvideReminderService(
	cfg *config.Config,
	db *repo.Client,
	mail *email.Client,
	locker *redispkg.Locker,
	validator *appointment.Validator,
	metrics *observability.SchedulingMetrics,
) reminder.Service {
	deps := reminder.Deps{
		Store:    db.Appointment,
		Users:    db.User,
		Notifier: mail,
		Metrics:  metrics,
		Location: validator.Location(),
		LockTTL:  time.Duration(cfg.Reminders.LockTTLSeconds) * time.Second,
		Timeout:  time.Duration(cfg.Scheduling.IntegrationTimeoutSeconds) * time.Second,
	}
	// A nil *Locker must not end up inside the interface.
	if locker != nil {
		deps.Locker = locker
	}
	return reminder.New(deps)
}

func ProvideSchedulingService(db *repo.Client) scheduling.Service {
	return scheduling.New(db.User, db.Appointment)
}
