package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/nutriplan_backend/config"
	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/reminder"
	"github.com/Alijeyrad/nutriplan_backend/pkg/events"
)

const reminderRunTimeout = 10 * time.Minute

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	NC        *nats.Conn `optional:"true"`
	DB        *repo.Client
	Reminders reminder.Service
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		slog.Info("workers: nats disabled, no subscriptions")
		return
	}
	prefix := p.Cfg.Nats.SubjectPrefix

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := p.NC.Subscribe(events.RemindersRunSubject(prefix), reminderWorker(p.Reminders)); err != nil {
				return err
			}
			if _, err := p.NC.Subscribe(events.AppointmentWildcard(prefix, events.AppointmentCreated), bookingAuditWorker(p.DB)); err != nil {
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// reminder_worker
// ---------------------------------------------------------------------------

type reminderReply struct {
	Summary *reminder.Summary `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// reminderWorker runs a sweep per message. The payload may name a date;
// an empty payload sweeps tomorrow. Request/reply callers get the summary.
func reminderWorker(svc reminder.Service) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), reminderRunTimeout)
		defer cancel()

		var (
			sum *reminder.Summary
			err error
		)
		if date := strings.TrimSpace(string(msg.Data)); date != "" {
			sum, err = svc.SendFor(ctx, date)
		} else {
			sum, err = svc.SendDaily(ctx)
		}

		reply := reminderReply{Summary: sum}
		switch {
		case errors.Is(err, reminder.ErrSweepInProgress):
			slog.Info("reminder_worker: sweep already running, skipped")
			reply.Error = err.Error()
		case err != nil:
			slog.Error("reminder_worker: sweep failed", "err", err)
			reply.Error = err.Error()
		}

		if msg.Reply == "" {
			return
		}
		data, err := json.Marshal(reply)
		if err != nil {
			slog.Warn("reminder_worker: encode reply failed", "err", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			slog.Warn("reminder_worker: reply failed", "err", err)
		}
	}
}

// ---------------------------------------------------------------------------
// booking_audit_worker
// ---------------------------------------------------------------------------

// bookingAuditWorker writes one structured log line per new booking so
// requests and direct bookings can be traced outside the request path.
func bookingAuditWorker(db *repo.Client) nats.MsgHandler {
	return func(msg *nats.Msg) {
		id, ok := events.AppointmentIDFromSubject(msg.Subject)
		if !ok {
			slog.Warn("booking_audit_worker: bad subject", "subject", msg.Subject)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		a, err := db.Appointment.Get(ctx, id)
		if err != nil {
			slog.Warn("booking_audit_worker: appointment not found", "appointment_id", id, "err", err)
			return
		}
		slog.Info("booking_audit_worker: appointment booked",
			"appointment_id", a.ID,
			"nutritionist_id", a.NutritionistID,
			"patient_id", a.PatientID,
			"date", a.Date,
			"time", a.Time,
			"status", a.Status,
		)
	}
}
