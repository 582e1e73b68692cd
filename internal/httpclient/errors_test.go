package httpclient_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcstatusbot/statusbot/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := httpclient.NewHTTPError(http.StatusForbidden, "https://discord.com/api/v10/channels/1", "Missing Access (code 50001)")
	assert.Equal(t, "HTTP 403 for URL https://discord.com/api/v10/channels/1: Missing Access (code 50001)", err.Error())

	var herr *httpclient.HTTPError
	require.ErrorAs(t, fmt.Errorf("rename: %w", err), &herr)
	assert.Equal(t, http.StatusForbidden, herr.StatusCode)
}

func TestIsTemporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "transport error", err: errors.New("connection reset"), want: false},
		{name: "not found", err: httpclient.NewHTTPError(http.StatusNotFound, "u", ""), want: false},
		{name: "unauthorized", err: httpclient.NewHTTPError(http.StatusUnauthorized, "u", ""), want: false},
		{name: "rate limited", err: httpclient.NewHTTPError(http.StatusTooManyRequests, "u", ""), want: true},
		{name: "bad gateway", err: httpclient.NewHTTPError(http.StatusBadGateway, "u", ""), want: true},
		{name: "wrapped", err: fmt.Errorf("report: %w", httpclient.NewHTTPError(http.StatusServiceUnavailable, "u", "")), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, httpclient.IsTemporary(tt.err))
		})
	}
}
