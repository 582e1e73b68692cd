package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HTTPInstrumentationName names the tracer and meter of the HTTP API
	HTTPInstrumentationName = "github.com/mcstatusbot/statusbot/http"

	// UnknownRoute replaces the route of requests chi could not match
	UnknownRoute = "unknown_route"

	maxUserAgentLength = 256
)

// untracedPaths are polled by orchestrators and scrapers. They are counted
// but never traced.
var untracedPaths = map[string]bool{
	"/health":    true,
	"/readiness": true,
	"/metrics":   true,
}

// httpInstruments records one span and one set of measurements per request.
// A nil tracer disables spans; nil instruments disable measurements.
type httpInstruments struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

// HTTPMiddleware returns middleware tracing and measuring every request of
// a chi router. Either provider may be nil.
func HTTPMiddleware(tp trace.TracerProvider, mp metric.MeterProvider) (func(http.Handler) http.Handler, error) {
	h := &httpInstruments{}

	if tp != nil {
		h.tracer = tp.Tracer(HTTPInstrumentationName)
		h.propagator = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
	}

	if mp != nil {
		meter := mp.Meter(HTTPInstrumentationName)
		var err error
		h.duration, err = meter.Float64Histogram(
			"statusbot_http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
		)
		if err != nil {
			return nil, err
		}
		h.requests, err = meter.Int64Counter(
			"statusbot_http_requests_total",
			metric.WithDescription("Total number of HTTP requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			return nil, err
		}
		h.inFlight, err = meter.Int64UpDownCounter(
			"statusbot_http_active_requests",
			metric.WithDescription("Number of in-flight HTTP requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			return nil, err
		}
	}

	if h.tracer == nil && h.requests == nil {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	return h.wrap, nil
}

func (h *httpInstruments) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the request context may be cancelled once ServeHTTP returns
		ctx := r.Context()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var span trace.Span
		if h.tracer != nil && !untracedPaths[r.URL.Path] {
			ctx = h.propagator.Extract(ctx, propagation.HeaderCarrier(r.Header))
			ctx, span = h.tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.UserAgentOriginal(truncate(r.UserAgent(), maxUserAgentLength)),
				),
			)
			defer span.End()
			r = r.WithContext(ctx)
		}

		if h.inFlight != nil {
			h.inFlight.Add(ctx, 1)
			defer h.inFlight.Add(ctx, -1)
		}

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if span != nil {
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCode(status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		}

		if h.requests != nil {
			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.String("status_code", strconv.Itoa(status)),
			)
			h.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			h.requests.Add(ctx, 1, attrs)
		}
	})
}

// routePattern returns the chi pattern that matched r, keeping path
// parameters out of span names and metric labels
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return UnknownRoute
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
