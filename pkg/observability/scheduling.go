package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SchedulingMetrics counts appointment lifecycle and integration outcomes.
type SchedulingMetrics struct {
	transitions  metric.Int64Counter
	conflicts    metric.Int64Counter
	integrations metric.Int64Counter
	reminders    metric.Int64Counter
}

// NewSchedulingMetrics creates the counters on mp. A nil mp uses the global
// meter provider, which is a no-op until InitTelemetry has run.
func NewSchedulingMetrics(mp metric.MeterProvider) (*SchedulingMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(tracerName)

	transitions, err := meter.Int64Counter("appointment_transitions_total",
		metric.WithDescription("Committed appointment lifecycle transitions"))
	if err != nil {
		return nil, err
	}
	conflicts, err := meter.Int64Counter("appointment_conflicts_total",
		metric.WithDescription("Booking attempts rejected because the slot was occupied"))
	if err != nil {
		return nil, err
	}
	integrations, err := meter.Int64Counter("appointment_integration_calls_total",
		metric.WithDescription("Calendar and email side effects by outcome"))
	if err != nil {
		return nil, err
	}
	reminders, err := meter.Int64Counter("appointment_reminders_total",
		metric.WithDescription("Reminder sweep results by outcome"))
	if err != nil {
		return nil, err
	}

	return &SchedulingMetrics{
		transitions:  transitions,
		conflicts:    conflicts,
		integrations: integrations,
		reminders:    reminders,
	}, nil
}

func (m *SchedulingMetrics) Transition(ctx context.Context, action, to string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", to),
	))
}

// Conflict records a rejected booking; stage is "check" or "commit".
func (m *SchedulingMetrics) Conflict(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *SchedulingMetrics) Integration(ctx context.Context, provider, op string, ok bool) {
	if m == nil {
		return
	}
	m.integrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("op", op),
		attribute.Bool("success", ok),
	))
}

// Reminder records one sweep entry; outcome is sent, skipped or failed.
func (m *SchedulingMetrics) Reminder(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.reminders.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
