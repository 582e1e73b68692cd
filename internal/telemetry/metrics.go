// Package telemetry provides OpenTelemetry instrumentation for statusbot.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/mcstatusbot/statusbot/sync"
)

// Fetch outcomes recorded by RecordFetch
const (
	FetchSuccess        = "success"
	FetchInvalidAddress = "invalid_address"
	FetchTransient      = "transient"
)

// Mutation outcomes recorded by RecordMutation, in addition to the failure kinds
const (
	MutationApplied = "applied"
	MutationSkipped = "skipped"
)

// SyncMetrics holds the OpenTelemetry instruments for synchronization passes
type SyncMetrics struct {
	passDuration   metric.Float64Histogram
	passesSkipped  metric.Int64Counter
	guildsInFlight metric.Int64UpDownCounter
	fetches        metric.Int64Counter
	mutations      metric.Int64Counter
	serversTotal   metric.Int64Gauge
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	passDuration, err := meter.Float64Histogram(
		"statusbot_sync_pass_duration_seconds",
		metric.WithDescription("Duration of synchronization passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600, 1200),
	)
	if err != nil {
		return nil, err
	}

	passesSkipped, err := meter.Int64Counter(
		"statusbot_sync_passes_skipped_total",
		metric.WithDescription("Triggers skipped because the previous pass was still running"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	guildsInFlight, err := meter.Int64UpDownCounter(
		"statusbot_sync_guilds_in_flight",
		metric.WithDescription("Number of guilds currently being updated"),
		metric.WithUnit("{guild}"),
	)
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter(
		"statusbot_status_fetches_total",
		metric.WithDescription("Status fetches by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	mutations, err := meter.Int64Counter(
		"statusbot_display_mutations_total",
		metric.WithDescription("Display mutations by surface and outcome"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	serversTotal, err := meter.Int64Gauge(
		"statusbot_monitored_servers_total",
		metric.WithDescription("Number of monitored servers across all guilds"),
		metric.WithUnit("{server}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		passDuration:   passDuration,
		passesSkipped:  passesSkipped,
		guildsInFlight: guildsInFlight,
		fetches:        fetches,
		mutations:      mutations,
		serversTotal:   serversTotal,
	}, nil
}

// RecordPassDuration records the duration of a completed pass
func (m *SyncMetrics) RecordPassDuration(ctx context.Context, duration time.Duration, guilds int) {
	if m == nil || m.passDuration == nil {
		return
	}
	m.passDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Int("guilds", guilds),
	))
}

// RecordPassSkipped counts a trigger that fired while a pass was running
func (m *SyncMetrics) RecordPassSkipped(ctx context.Context) {
	if m == nil || m.passesSkipped == nil {
		return
	}
	m.passesSkipped.Add(ctx, 1)
}

// GuildStarted increments the in-flight guild count
func (m *SyncMetrics) GuildStarted(ctx context.Context) {
	if m == nil || m.guildsInFlight == nil {
		return
	}
	m.guildsInFlight.Add(ctx, 1)
}

// GuildFinished decrements the in-flight guild count
func (m *SyncMetrics) GuildFinished(ctx context.Context) {
	if m == nil || m.guildsInFlight == nil {
		return
	}
	m.guildsInFlight.Add(ctx, -1)
}

// RecordFetch counts a status fetch by outcome
func (m *SyncMetrics) RecordFetch(ctx context.Context, outcome string) {
	if m == nil || m.fetches == nil {
		return
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordMutation counts a display mutation by surface ("status", "players" or
// "visibility") and outcome
func (m *SyncMetrics) RecordMutation(ctx context.Context, surface, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("surface", surface),
		attribute.String("outcome", outcome),
	))
}

// RecordServersTotal records the number of monitored servers seen at the start of a pass
func (m *SyncMetrics) RecordServersTotal(ctx context.Context, count int64) {
	if m == nil || m.serversTotal == nil {
		return
	}
	m.serversTotal.Record(ctx, count)
}
