package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcstatusbot/statusbot/internal/models"
)

// runStoreSuite exercises the behaviour every Store implementation shares.
// newStore must return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("empty store", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		ids, err := s.GuildIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)

		servers, err := s.GetServers(ctx, "guild-1")
		require.NoError(t, err)
		assert.Empty(t, servers)

		total, err := s.TotalServers(ctx)
		require.NoError(t, err)
		assert.Zero(t, total)

		indicators, err := s.GetIndicators(ctx, "guild-1", "mc.example.com")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultIndicators(), indicators)

		_, err = s.DefaultServer(ctx, "guild-1")
		require.ErrorIs(t, err, ErrServerNotFound)

		require.NoError(t, s.Ping(ctx))
	})

	t.Run("add find and remove", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.AddServer(ctx, "guild-1", server("mc.example.com", "hub", false)))
		require.NoError(t, s.AddServer(ctx, "guild-1", server("play.example.org", "", false)))
		require.NoError(t, s.AddServer(ctx, "guild-2", server("mc.example.com", "", false)))

		err := s.AddServer(ctx, "guild-1", server("MC.EXAMPLE.COM", "", false))
		require.ErrorIs(t, err, ErrDuplicateServer)

		ids, err := s.GuildIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"guild-1", "guild-2"}, ids)

		total, err := s.TotalServers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, total)

		servers, err := s.GetServers(ctx, "guild-1")
		require.NoError(t, err)
		require.Len(t, servers, 2)
		assert.Equal(t, "mc.example.com", servers[0].Address)
		assert.True(t, servers[0].Default)
		assert.Equal(t, models.PlatformJava, servers[1].Platform)
		assert.Equal(t, "play.example.org-status", servers[1].StatusChannelID)

		found, err := s.FindServer(ctx, "guild-1", "HUB")
		require.NoError(t, err)
		assert.Equal(t, "mc.example.com", found.Address)

		_, err = s.FindServer(ctx, "guild-2", "hub")
		require.ErrorIs(t, err, ErrServerNotFound)

		removed, err := s.RemoveServer(ctx, "guild-1", "hub")
		require.NoError(t, err)
		assert.Equal(t, "mc.example.com", removed.Address)

		def, err := s.DefaultServer(ctx, "guild-1")
		require.NoError(t, err)
		assert.Equal(t, "play.example.org", def.Address)

		_, err = s.RemoveServer(ctx, "guild-1", "hub")
		require.ErrorIs(t, err, ErrServerNotFound)
	})

	t.Run("default and indicators", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.AddServer(ctx, "guild-1", server("mc.example.com", "", false)))
		require.NoError(t, s.AddServer(ctx, "guild-1", server("play.example.org", "survival", false)))

		require.NoError(t, s.SetDefault(ctx, "guild-1", "survival"))
		def, err := s.DefaultServer(ctx, "guild-1")
		require.NoError(t, err)
		assert.Equal(t, "play.example.org", def.Address)

		require.ErrorIs(t, s.SetDefault(ctx, "guild-1", "creative"), ErrServerNotFound)

		custom := models.Indicators{Online: "Open", Offline: "Closed"}
		require.NoError(t, s.SetIndicators(ctx, "guild-1", "mc.example.com", custom))

		indicators, err := s.GetIndicators(ctx, "guild-1", "MC.example.com")
		require.NoError(t, err)
		assert.Equal(t, custom, indicators)

		indicators, err = s.GetIndicators(ctx, "guild-1", "play.example.org")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultIndicators(), indicators)
	})

	t.Run("delete guild", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.AddServer(ctx, "guild-1", server("mc.example.com", "", false)))
		require.NoError(t, s.AddServer(ctx, "guild-2", server("mc.example.com", "", false)))

		require.NoError(t, s.DeleteGuild(ctx, "guild-1"))
		require.NoError(t, s.DeleteGuild(ctx, "guild-unknown"))

		ids, err := s.GuildIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"guild-2"}, ids)

		servers, err := s.GetServers(ctx, "guild-1")
		require.NoError(t, err)
		assert.Empty(t, servers)
	})
}
