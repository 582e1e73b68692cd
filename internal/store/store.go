// Package store persists the servers each guild monitors.
//
// Two implementations share the same semantics: a YAML file for single
// instance deployments and PostgreSQL for everything else. Both apply
// mutations through the list helpers in this file, so the guild invariants
// (unique addresses and nicknames, exactly one default) hold regardless of
// the backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mcstatusbot/statusbot/internal/models"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/mcstatusbot/statusbot/internal/store Store

var (
	// ErrServerNotFound is returned when no server in the guild matches a query
	ErrServerNotFound = errors.New("server not found")

	// ErrDuplicateServer is returned when an address or nickname is already in use in the guild
	ErrDuplicateServer = errors.New("server already monitored")
)

// Store is the record store consulted by every sync pass
type Store interface {
	// GuildIDs returns every guild with at least one monitored server
	GuildIDs(ctx context.Context) ([]string, error)

	// GetServers returns the guild's servers, empty when the guild is unknown
	GetServers(ctx context.Context, guildID string) ([]models.MonitoredServer, error)

	// GetIndicators returns the server's indicators, or the defaults when the
	// guild or server is unknown
	GetIndicators(ctx context.Context, guildID, address string) (models.Indicators, error)

	// TotalServers counts monitored servers across all guilds
	TotalServers(ctx context.Context) (int, error)

	// FindServer matches query against nicknames first, then addresses, ignoring case
	FindServer(ctx context.Context, guildID, query string) (*models.MonitoredServer, error)

	// DefaultServer returns the guild's default server
	DefaultServer(ctx context.Context, guildID string) (*models.MonitoredServer, error)

	// AddServer appends a server to the guild
	AddServer(ctx context.Context, guildID string, server models.MonitoredServer) error

	// RemoveServer removes the server matching query and returns it
	RemoveServer(ctx context.Context, guildID, query string) (*models.MonitoredServer, error)

	// SetDefault marks the server matching query as the guild's default
	SetDefault(ctx context.Context, guildID, query string) error

	// SetIndicators replaces the indicators of the server matching query
	SetIndicators(ctx context.Context, guildID, query string, indicators models.Indicators) error

	// DeleteGuild forgets every server of the guild
	DeleteGuild(ctx context.Context, guildID string) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}

// findIndex returns the index of the server matching query, preferring a
// nickname match over an address match
func findIndex(servers []models.MonitoredServer, query string) int {
	if query == "" {
		return -1
	}
	if i := slices.IndexFunc(servers, func(s models.MonitoredServer) bool {
		return s.Nickname != "" && strings.EqualFold(s.Nickname, query)
	}); i >= 0 {
		return i
	}
	return slices.IndexFunc(servers, func(s models.MonitoredServer) bool {
		return strings.EqualFold(s.Address, query)
	})
}

func findServer(servers []models.MonitoredServer, query string) (*models.MonitoredServer, error) {
	i := findIndex(servers, query)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, query)
	}
	found := servers[i]
	return &found, nil
}

func defaultServer(servers []models.MonitoredServer) (*models.MonitoredServer, error) {
	i := slices.IndexFunc(servers, func(s models.MonitoredServer) bool { return s.Default })
	if i < 0 {
		return nil, fmt.Errorf("%w: guild has no default server", ErrServerNotFound)
	}
	found := servers[i]
	return &found, nil
}

func indicatorsFor(servers []models.MonitoredServer, address string) models.Indicators {
	for i := range servers {
		if strings.EqualFold(servers[i].Address, address) {
			return servers[i].Indicators()
		}
	}
	return models.DefaultIndicators()
}

// addServer returns a new list with server appended. The first server of a
// guild always becomes the default; adding a default clears the previous one.
func addServer(servers []models.MonitoredServer, server models.MonitoredServer) ([]models.MonitoredServer, error) {
	if server.Address == "" {
		return nil, errors.New("server address is required")
	}
	for _, existing := range servers {
		if existing.Matches(server.Address) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateServer, server.Address)
		}
		if server.Nickname != "" && existing.Matches(server.Nickname) {
			return nil, fmt.Errorf("%w: nickname %s", ErrDuplicateServer, server.Nickname)
		}
	}
	server.Platform = server.GetPlatform()

	updated := slices.Clone(servers)
	if len(updated) == 0 {
		server.Default = true
	}
	if server.Default {
		for i := range updated {
			updated[i].Default = false
		}
	}
	updated = append(updated, server)
	return updated, models.ValidateGuildServers(updated)
}

// removeServer returns a new list without the server matching query. When
// the default is removed the first remaining server is promoted.
func removeServer(servers []models.MonitoredServer, query string) ([]models.MonitoredServer, *models.MonitoredServer, error) {
	i := findIndex(servers, query)
	if i < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrServerNotFound, query)
	}
	removed := servers[i]

	updated := slices.Delete(slices.Clone(servers), i, i+1)
	if removed.Default && len(updated) > 0 {
		updated[0].Default = true
	}
	return updated, &removed, nil
}

func setDefault(servers []models.MonitoredServer, query string) ([]models.MonitoredServer, error) {
	target := findIndex(servers, query)
	if target < 0 {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, query)
	}
	updated := slices.Clone(servers)
	for i := range updated {
		updated[i].Default = i == target
	}
	return updated, nil
}

func setIndicators(
	servers []models.MonitoredServer, query string, indicators models.Indicators,
) ([]models.MonitoredServer, error) {
	if err := indicators.Validate(); err != nil {
		return nil, err
	}
	target := findIndex(servers, query)
	if target < 0 {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, query)
	}
	updated := slices.Clone(servers)
	updated[target].OnlineIndicator = indicators.Online
	updated[target].OfflineIndicator = indicators.Offline
	return updated, nil
}
