package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type httpFixture struct {
	spans  *tracetest.InMemoryExporter
	reader *sdkmetric.ManualReader
	router chi.Router
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	spans := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	mw, err := HTTPMiddleware(tp, mp)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(mw)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/v1/guilds/{guildID}/servers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})
	router.Get("/v1/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	return &httpFixture{spans: spans, reader: reader, router: router}
}

func (f *httpFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

// requestCount returns the request counter value for route and status
func (f *httpFixture) requestCount(t *testing.T, route, status string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "statusbot_http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				r, _ := dp.Attributes.Value("route")
				s, _ := dp.Attributes.Value("status_code")
				if r.AsString() == route && s.AsString() == status {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func spanAttr(span tracetest.SpanStub, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestHTTPMiddleware_NilProviders(t *testing.T) {
	t.Parallel()

	mw, err := HTTPMiddleware(nil, nil)
	require.NoError(t, err)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Guild", "42")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/guilds/42/servers", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "42", rr.Header().Get("X-Guild"))
	assert.Equal(t, "created", rr.Body.String())
}

func TestHTTPMiddleware_RoutePattern(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/v1/guilds/42/servers", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	spans := f.spans.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /v1/guilds/{guildID}/servers", span.Name)
	assert.Equal(t, "/v1/guilds/{guildID}/servers", spanAttr(span, semconv.HTTPRouteKey).AsString())
	assert.Equal(t, "/v1/guilds/42/servers", spanAttr(span, semconv.URLPathKey).AsString())
	assert.Equal(t, int64(http.StatusOK), spanAttr(span, semconv.HTTPResponseStatusCodeKey).AsInt64())
	assert.Equal(t, codes.Unset, span.Status.Code)

	assert.Equal(t, int64(1), f.requestCount(t, "/v1/guilds/{guildID}/servers", "200"))
}

func TestHTTPMiddleware_ServerErrorStatus(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	f.do(t, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	f.do(t, httptest.NewRequest(http.MethodGet, "/missing", nil))

	spans := f.spans.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "GET "+UnknownRoute, spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code, "client errors leave the span status unset")

	assert.Equal(t, int64(1), f.requestCount(t, "/v1/status", "502"))
	assert.Equal(t, int64(1), f.requestCount(t, UnknownRoute, "404"))
}

func TestHTTPMiddleware_UntracedPaths(t *testing.T) {
	t.Parallel()

	f := newHTTPFixture(t)
	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Empty(t, f.spans.GetSpans())
	assert.Equal(t, int64(1), f.requestCount(t, "/health", "200"))
}

func TestHTTPMiddleware_ExtractsTraceContext(t *testing.T) {
	t.Parallel()

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	f := newHTTPFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/guilds/42/servers", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	req.Header.Set("User-Agent", strings.Repeat("a", 300))
	f.do(t, req)

	spans := f.spans.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, traceID, spans[0].SpanContext.TraceID().String())
	assert.True(t, spans[0].Parent.IsRemote())
	assert.Len(t, spanAttr(spans[0], semconv.UserAgentOriginalKey).AsString(), maxUserAgentLength)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde", truncate("abcdef", 5))
	assert.Empty(t, truncate("", 5))
}
