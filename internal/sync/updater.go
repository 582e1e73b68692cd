package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/labels"
	"github.com/mcstatusbot/statusbot/internal/models"
	"github.com/mcstatusbot/statusbot/internal/otel"
	"github.com/mcstatusbot/statusbot/internal/status"
	"github.com/mcstatusbot/statusbot/internal/store"
	"github.com/mcstatusbot/statusbot/internal/telemetry"
)

// Surfaces named in mutation metrics
const (
	SurfaceStatus     = "status"
	SurfacePlayers    = "players"
	SurfaceVisibility = "visibility"
)

// Updater brings the display surfaces of monitored servers in line with
// their live status. Failures are logged and counted, never returned.
//
//go:generate mockgen -destination=mocks/mock_updater.go -package=mocks github.com/mcstatusbot/statusbot/internal/sync Updater
type Updater interface {
	// UpdateGuild refreshes every server of the guild concurrently and waits for all of them
	UpdateGuild(ctx context.Context, guildID string)

	// UpdateServer refreshes one server against a snapshot of the guild's surfaces
	UpdateServer(ctx context.Context, guildID string, server models.MonitoredServer, surfaces display.Snapshot)
}

type defaultUpdater struct {
	store    store.Store
	status   status.Client
	platform display.Platform
	metrics  *telemetry.SyncMetrics
	tracer   trace.Tracer
}

// Option configures the updater
type Option func(*defaultUpdater)

// WithMetrics sets the sync metrics
func WithMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(u *defaultUpdater) {
		u.metrics = metrics
	}
}

// WithTracer sets the tracer used for guild and server spans
func WithTracer(tracer trace.Tracer) Option {
	return func(u *defaultUpdater) {
		u.tracer = tracer
	}
}

// NewUpdater creates an Updater reading records from st, statuses from
// client and writing to platform
func NewUpdater(st store.Store, client status.Client, platform display.Platform, opts ...Option) Updater {
	u := &defaultUpdater{
		store:    st,
		status:   client,
		platform: platform,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UpdateGuild reads the guild's servers fresh from the store, takes a single
// surface snapshot and fans out one update per server
func (u *defaultUpdater) UpdateGuild(ctx context.Context, guildID string) {
	ctx, span := otel.StartSpan(ctx, u.tracer, "sync.guild",
		trace.WithAttributes(otel.AttrGuildID.String(guildID)),
	)
	defer span.End()

	servers, err := u.store.GetServers(ctx, guildID)
	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Failed to read monitored servers", "guild_id", guildID, "error", err)
		return
	}
	if len(servers) == 0 {
		return
	}

	surfaces, err := u.platform.Surfaces(ctx, guildID)
	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Failed to read guild channels", "guild_id", guildID, "error", err)
		return
	}

	span.SetAttributes(
		otel.AttrServerCount.Int(len(servers)),
		otel.AttrSurfaceCount.Int(len(surfaces)),
	)

	var g errgroup.Group
	for _, server := range servers {
		g.Go(func() error {
			u.UpdateServer(ctx, guildID, server, surfaces)
			return nil
		})
	}
	_ = g.Wait()
}

// UpdateServer fetches the server's status and applies the reconciled labels
func (u *defaultUpdater) UpdateServer(
	ctx context.Context,
	guildID string,
	server models.MonitoredServer,
	surfaces display.Snapshot,
) {
	ctx, span := otel.StartSpan(ctx, u.tracer, "sync.server",
		trace.WithAttributes(otel.ServerAttributes(guildID, server)...),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			otel.RecordError(span, err)
			slog.Error("Recovered from panic while updating server",
				"guild_id", guildID,
				"address", server.Address,
				"error", err,
			)
		}
	}()

	var errText string
	snap, err := u.status.Fetch(ctx, server.Address, server.GetPlatform(), models.PriorityLow)
	switch {
	case err == nil:
		u.metrics.RecordFetch(ctx, telemetry.FetchSuccess)
		if snap != nil {
			span.SetAttributes(otel.AttrOnline.Bool(snap.Online))
		}
	case errors.Is(err, status.ErrInvalidAddress):
		u.metrics.RecordFetch(ctx, telemetry.FetchInvalidAddress)
		errText = labels.InvalidAddressText
	default:
		u.metrics.RecordFetch(ctx, telemetry.FetchTransient)
		otel.RecordError(span, err)
		slog.Warn("Failed to fetch server status",
			"guild_id", guildID,
			"address", server.Address,
			"error", err,
		)
		return
	}

	indicators, err := u.store.GetIndicators(ctx, guildID, server.Address)
	if err != nil {
		slog.Warn("Failed to read indicators, using the server record",
			"guild_id", guildID,
			"address", server.Address,
			"error", err,
		)
		indicators = server.Indicators()
	}

	target := labels.Reconcile(snap, errText, indicators).Truncated()

	u.rename(ctx, guildID, SurfaceStatus, server.StatusChannelID, target.StatusLabel, surfaces)
	u.rename(ctx, guildID, SurfacePlayers, server.PlayersChannelID, target.PlayersLabel, surfaces)

	if target.Visibility == labels.VisibilityUnchanged {
		return
	}
	players, ok := surfaces.Lookup(server.PlayersChannelID)
	if !ok {
		return
	}
	visible := target.Visibility == labels.VisibilityShown
	if players.EveryoneVisible != nil && *players.EveryoneVisible == visible {
		u.metrics.RecordMutation(ctx, SurfaceVisibility, telemetry.MutationSkipped)
		return
	}
	err = u.platform.SetEveryoneVisibility(ctx, guildID, server.PlayersChannelID, visible)
	u.recordMutation(ctx, guildID, SurfaceVisibility, server.PlayersChannelID, err)
}

// rename changes the surface's name unless it is absent or already shows name
func (u *defaultUpdater) rename(
	ctx context.Context,
	guildID, surface, surfaceID, name string,
	surfaces display.Snapshot,
) {
	current, ok := surfaces.Lookup(surfaceID)
	if !ok || current.Name == name {
		u.metrics.RecordMutation(ctx, surface, telemetry.MutationSkipped)
		return
	}

	err := u.platform.Rename(ctx, surfaceID, name, models.PriorityLow)
	u.recordMutation(ctx, guildID, surface, surfaceID, err)
}

func (u *defaultUpdater) recordMutation(ctx context.Context, guildID, surface, surfaceID string, err error) {
	if err == nil {
		u.metrics.RecordMutation(ctx, surface, telemetry.MutationApplied)
		return
	}

	kind := display.Classify(err)
	u.metrics.RecordMutation(ctx, surface, string(kind))
	if kind.Suppressed() {
		return
	}

	trace.SpanFromContext(ctx).AddEvent("mutation failed", trace.WithAttributes(
		otel.AttrChannelID.String(surfaceID),
		attribute.String("surface", surface),
	))
	slog.Error("Failed to update channel",
		"guild_id", guildID,
		"channel_id", surfaceID,
		"surface", surface,
		"error", err,
	)
}
