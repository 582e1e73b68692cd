package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcstatusbot/statusbot/internal/delegate"
	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/store"
	"github.com/mcstatusbot/statusbot/internal/sync/coordinator"
	"github.com/mcstatusbot/statusbot/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator schedules synchronization passes
	SyncCoordinator coordinator.Coordinator

	// Store holds the monitored servers of every guild
	Store store.Store

	// Platform is the display platform passes write to
	Platform display.Platform

	// Reporter posts the guild count; nil when the delegate is not configured
	Reporter *delegate.Reporter

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry

	// Pool is the database pool; nil with file storage
	Pool *pgxpool.Pool
}
