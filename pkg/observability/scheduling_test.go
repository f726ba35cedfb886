package observability

import (
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestSchedulingMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewSchedulingMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatalf("NewSchedulingMetrics: %v", err)
	}
	ctx := t.Context()
	m.Transition(ctx, "approve", "scheduled")
	m.Transition(ctx, "approve", "scheduled")
	m.Conflict(ctx, "commit")
	m.Integration(ctx, "calendar", "create", false)
	m.Reminder(ctx, "sent")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}

	want := map[string]int64{
		"appointment_transitions_total":       2,
		"appointment_conflicts_total":         1,
		"appointment_integration_calls_total": 1,
		"appointment_reminders_total":         1,
	}
	for name, v := range want {
		if totals[name] != v {
			t.Errorf("%s = %d, want %d", name, totals[name], v)
		}
	}
}

func TestNilSchedulingMetricsIsSafe(t *testing.T) {
	var m *SchedulingMetrics
	m.Transition(t.Context(), "cancel", "cancelled")
	m.Conflict(t.Context(), "check")
	m.Integration(t.Context(), "email", "send", true)
	m.Reminder(t.Context(), "failed")
}
