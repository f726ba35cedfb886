package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/nutriplan_backend/config"
	"github.com/Alijeyrad/nutriplan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/nutriplan_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/appointment"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/integration"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/reminder"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/scheduling"
	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
	"github.com/Alijeyrad/nutriplan_backend/pkg/database"
	"github.com/Alijeyrad/nutriplan_backend/pkg/token"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	Auth           authorize.IAuthorization
	Tokens         *token.Manager
	DB             *database.DB `optional:"true"`
	AppointmentSvc appointment.Service
	SchedulingSvc  scheduling.Service
	ReminderSvc    reminder.Service
	Integrations   *integration.Coordinator
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.Tokens)

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	scheduleH := handler.NewScheduleHandler(r.p.SchedulingSvc)
	reminderH := handler.NewReminderHandler(r.p.ReminderSvc)
	integrationH := handler.NewIntegrationHandler(r.p.Integrations)

	api := app.Group("/api/v1")
	appts := api.Group("/appointments", authRequired)

	// 4. Delegate to sub-files. Fixed paths go before /:id.
	r.registerScheduleRoutes(appts, scheduleH, requirePerm)
	r.registerReminderRoutes(appts, reminderH, requirePerm)
	r.registerIntegrationRoutes(appts, integrationH, requirePerm)
	r.registerAppointmentRoutes(appts, appointmentH, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if r.p.DB == nil {
				return true
			}
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			return r.p.DB.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
