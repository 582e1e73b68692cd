package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "", want: PlatformJava},
		{in: "java", want: PlatformJava},
		{in: " Bedrock ", want: PlatformBedrock},
		{in: "pocket", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndicators(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Indicators{Online: "Online", Offline: "Offline"}, DefaultIndicators())
	assert.Equal(t, Indicators{Online: "Up", Offline: "Offline"}, Indicators{Online: "Up"}.WithDefaults())

	require.NoError(t, Indicators{Online: "Up", Offline: "Down"}.Validate())
	require.Error(t, Indicators{Online: " ", Offline: "Down"}.Validate())
	require.Error(t, Indicators{Online: "Up", Offline: "a very long offline label"}.Validate())
	// 16 runes, multi-byte
	require.NoError(t, Indicators{Online: "éééééééééééééééé", Offline: "Down"}.Validate())
}

func TestMonitoredServer(t *testing.T) {
	t.Parallel()

	s := MonitoredServer{Address: "mc.example.com", OfflineIndicator: "Closed"}
	assert.Equal(t, PlatformJava, s.GetPlatform())
	assert.Equal(t, "mc.example.com", s.DisplayName())
	assert.Equal(t, Indicators{Online: DefaultOnlineIndicator, Offline: "Closed"}, s.Indicators())
	assert.True(t, s.Matches("MC.example.COM"))
	assert.False(t, s.Matches(""))

	s.Nickname = "Hub"
	s.Platform = PlatformBedrock
	assert.Equal(t, PlatformBedrock, s.GetPlatform())
	assert.Equal(t, "Hub", s.DisplayName())
	assert.True(t, s.Matches("hub"))
}

func TestValidateGuildServers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		servers []MonitoredServer
		errMsg  string
	}{
		{name: "empty list", servers: nil},
		{
			name: "valid",
			servers: []MonitoredServer{
				{Address: "mc.example.com", Default: true},
				{Address: "play.example.org", Nickname: "survival"},
			},
		},
		{
			name: "duplicate address",
			servers: []MonitoredServer{
				{Address: "mc.example.com", Default: true},
				{Address: "MC.example.com"},
			},
			errMsg: "duplicate server address",
		},
		{
			name: "duplicate nickname",
			servers: []MonitoredServer{
				{Address: "mc.example.com", Nickname: "hub", Default: true},
				{Address: "play.example.org", Nickname: "HUB"},
			},
			errMsg: "duplicate server nickname",
		},
		{
			name: "nickname collides with address",
			servers: []MonitoredServer{
				{Address: "mc.example.com", Default: true},
				{Address: "play.example.org", Nickname: "mc.example.com"},
			},
			errMsg: "collides with a monitored address",
		},
		{
			name: "no default",
			servers: []MonitoredServer{
				{Address: "mc.example.com"},
			},
			errMsg: "found 0",
		},
		{
			name: "two defaults",
			servers: []MonitoredServer{
				{Address: "mc.example.com", Default: true},
				{Address: "play.example.org", Default: true},
			},
			errMsg: "found 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateGuildServers(tt.servers)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPriorityCacheTier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sm", PriorityHigh.CacheTier())
	assert.Equal(t, "lg", PriorityLow.CacheTier())
}
