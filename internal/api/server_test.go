package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mcstatusbot/statusbot/internal/api"
	statusmocks "github.com/mcstatusbot/statusbot/internal/status/mocks"
	storemocks "github.com/mcstatusbot/statusbot/internal/store/mocks"
	"github.com/mcstatusbot/statusbot/internal/sync/coordinator"
)

type fixedStatus struct {
	status coordinator.PassStatus
}

func (f fixedStatus) Status() coordinator.PassStatus { return f.status }

func newServer(t *testing.T, opts ...api.ServerOption) (http.Handler, *storemocks.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	return api.NewServer(statusmocks.NewMockClient(ctrl), st, opts...), st
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t)
	rr := serve(t, server, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "store reachable",
			expectedStatus: http.StatusOK,
			expectedBody:   `"ready"`,
		},
		{
			name:           "store unreachable",
			pingErr:        errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, st := newServer(t)
			st.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			rr := serve(t, server, "/readiness")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t)
	rr := serve(t, server, "/version")
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	for _, key := range []string{"version", "commit", "build_date", "go_version", "platform"} {
		assert.Contains(t, response, key)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("not mounted by default", func(t *testing.T) {
		t.Parallel()
		server, _ := newServer(t)
		assert.Equal(t, http.StatusNotFound, serve(t, server, "/metrics").Code)
	})

	t.Run("mounted with a handler", func(t *testing.T) {
		t.Parallel()
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("statusbot_sync_passes_total 1\n"))
		})
		server, _ := newServer(t, api.WithMetricsHandler(handler))

		rr := serve(t, server, "/metrics")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "statusbot_sync_passes_total")
	})
}

func TestSyncStatusEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("without coordinator", func(t *testing.T) {
		t.Parallel()
		server, _ := newServer(t)
		assert.Equal(t, http.StatusServiceUnavailable, serve(t, server, "/v1/sync/status").Code)
	})

	t.Run("with coordinator", func(t *testing.T) {
		t.Parallel()
		server, _ := newServer(t, api.WithSyncStatus(fixedStatus{
			status: coordinator.PassStatus{PassesRun: 3, LastGuildCount: 12},
		}))

		rr := serve(t, server, "/v1/sync/status")
		require.Equal(t, http.StatusOK, rr.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.EqualValues(t, 3, response["passesRun"])
		assert.EqualValues(t, 12, response["lastGuildCount"])
	})
}

func TestMiddlewaresApplied(t *testing.T) {
	t.Parallel()

	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}
	server, _ := newServer(t, api.WithMiddlewares(mw, api.LoggingMiddleware))

	assert.Equal(t, http.StatusOK, serve(t, server, "/health").Code)
	assert.True(t, called)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t)
	assert.Equal(t, http.StatusNotFound, serve(t, server, "/v2/status").Code)
}
