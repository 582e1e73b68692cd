package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcstatusbot/statusbot/internal/config"
)

// newLogEnv reads STATUSBOT_LOG_LEVEL and STATUSBOT_LOG_FORMAT. LOG_LEVEL
// without the prefix is honoured when the prefixed variable is unset.
func newLogEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	if os.Getenv(config.EnvPrefix+"_LOG_LEVEL") == "" {
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			v.SetDefault("log_level", level)
		}
	}
	return v
}

// setupLogging installs the default slog logger writing to w
func setupLogging(w io.Writer, env *viper.Viper) {
	raw := env.GetString("log_level")
	level, ok := parseLevel(raw)

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(env.GetString("log_format"), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(&traceHandler{Handler: handler}))

	if !ok {
		slog.Warn("Invalid log level, using info", "value", raw)
	}
}

// parseLevel maps a level name to its slog level. Unknown names yield info
// and false; an empty name is info.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// traceHandler adds the trace_id and span_id of the active span to every
// record so logs of a sync pass can be joined with its trace
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}
