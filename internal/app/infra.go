package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/nutriplan_backend/config"
	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/authorize"
	"github.com/Alijeyrad/nutriplan_backend/pkg/calendar"
	"github.com/Alijeyrad/nutriplan_backend/pkg/constants"
	"github.com/Alijeyrad/nutriplan_backend/pkg/database"
	"github.com/Alijeyrad/nutriplan_backend/pkg/email"
	"github.com/Alijeyrad/nutriplan_backend/pkg/events"
	"github.com/Alijeyrad/nutriplan_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/nutriplan_backend/pkg/redis"
	"github.com/Alijeyrad/nutriplan_backend/pkg/token"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideRepoClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideLocker),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideTokenManager),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideCalendarClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideSchedulingMetrics),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
)

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config) (*database.DB, error) {
	db, err := database.New(database.FromCentralConfig(cfg.Database))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, nil
}

// ProvideRepoClient builds the data access client and, when configured,
// brings the schema up to date before the server starts.
func ProvideRepoClient(lc fx.Lifecycle, cfg *config.Config, db *database.DB) (*repo.Client, error) {
	client, err := repo.NewClient(db.Dialect(), db.GetConnection())
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrations.AutoMigrate {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				m, err := repo.NewMigrator(db.Dialect(), db.GetConnection())
				if err != nil {
					return err
				}
				_, err = m.Up(ctx)
				return err
			},
		})
	}
	return client, nil
}

// ProvideRedis returns nil when no address is configured; the rate limiter
// and the reminder lock are skipped in that case.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("redis: no address configured, rate limiting and reminder locking are off")
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideLocker(rdb *redis.Client) *redispkg.Locker {
	if rdb == nil {
		return nil
	}
	return redispkg.NewLocker(rdb, constants.AppName+":lock:")
}

func ProvideAuthorization() (authorize.IAuthorization, error) {
	baseAuth, err := authorize.NewDefault()
	if err != nil {
		return nil, err
	}
	return authorize.NewAuditedAuthorization(baseAuth, slog.Default()), nil
}

func ProvideTokenManager(cfg *config.Config) (*token.Manager, error) {
	return token.NewFromCentral(cfg)
}

func ProvideEmailClient(cfg *config.Config) *email.Client {
	return email.NewFromCentral(cfg.Email)
}

func ProvideCalendarClient(cfg *config.Config) (*calendar.Client, error) {
	return calendar.New(calendar.FromCentralConfig(cfg.Calendar, cfg.Scheduling.TimeZone))
}

// ProvideNatsClient returns nil when messaging is disabled.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(constants.AppName))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvidePublisher(nc *nats.Conn) *events.Publisher {
	return events.NewPublisher(nc)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,

		SchedulingTimeZone: cfg.Scheduling.TimeZone,
		CalendarEnabled:    cfg.Calendar.Enabled,
		EmailEnabled:       cfg.Email.Enabled,

		OTLPEndpoint: cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate: cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideSchedulingMetrics reuses the counters registered by InitTelemetry;
// with observability off they record into the no-op global provider.
func ProvideSchedulingMetrics(p *observability.Provider) (*observability.SchedulingMetrics, error) {
	if p != nil && p.Scheduling != nil {
		return p.Scheduling, nil
	}
	return observability.NewSchedulingMetrics(nil)
}
