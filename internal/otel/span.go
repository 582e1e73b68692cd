// Package otel holds the span helpers and attribute keys shared by the sync
// engine, the status client and the record store.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcstatusbot/statusbot/internal/models"
)

// Attribute keys
const (
	AttrGuildID      = attribute.Key("guild.id")
	AttrServerAddr   = attribute.Key("server.address")
	AttrPlatform     = attribute.Key("server.platform")
	AttrPriority     = attribute.Key("status.priority")
	AttrPassID       = attribute.Key("sync.pass_id")
	AttrGuildCount   = attribute.Key("sync.guild_count")
	AttrServerCount  = attribute.Key("sync.server_count")
	AttrOnline       = attribute.Key("status.online")
	AttrChannelID    = attribute.Key("channel.id")
	AttrSurfaceCount = attribute.Key("display.surface_count")
)

// StartSpan starts a span on tracer. A nil tracer returns ctx unchanged
// together with the span already in it, which is a no-op span when tracing
// is off.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// ServerAttributes describes one monitored server of a guild. An empty
// guildID is left out.
func ServerAttributes(guildID string, server models.MonitoredServer) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if guildID != "" {
		attrs = append(attrs, AttrGuildID.String(guildID))
	}
	return append(attrs,
		AttrServerAddr.String(server.Address),
		AttrPlatform.String(string(server.GetPlatform())),
	)
}

// RecordError attaches err to span and marks it failed. The status
// description stays generic so addresses and tokens only appear in the
// recorded event.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
