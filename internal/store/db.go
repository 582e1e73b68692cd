package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcstatusbot/statusbot/internal/models"
)

const (
	serverColumns = `address, platform, nickname, is_default, online_indicator, offline_indicator,
	status_channel_id, players_channel_id, category_id`

	selectGuildServersSQL = `SELECT ` + serverColumns + `
FROM monitored_server
WHERE guild_id = $1
ORDER BY position`

	selectIndicatorsSQL = `SELECT online_indicator, offline_indicator
FROM monitored_server
WHERE guild_id = $1 AND lower(address) = lower($2)`

	selectGuildIDsSQL = `SELECT DISTINCT guild_id FROM monitored_server ORDER BY guild_id`

	countServersSQL = `SELECT count(*) FROM monitored_server`

	lockGuildSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

	deleteGuildSQL = `DELETE FROM monitored_server WHERE guild_id = $1`
)

var copyColumns = []string{
	"guild_id", "position", "address", "platform", "nickname", "is_default",
	"online_indicator", "offline_indicator", "status_channel_id", "players_channel_id", "category_id",
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type dbStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*dbStore)(nil)

// NewDBStore creates a PostgreSQL-backed store. The schema must have been
// created with the migrate command.
func NewDBStore(pool *pgxpool.Pool) Store {
	return &dbStore{pool: pool}
}

func (d *dbStore) GuildIDs(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, selectGuildIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return ids, nil
}

func (d *dbStore) GetServers(ctx context.Context, guildID string) ([]models.MonitoredServer, error) {
	return queryServers(ctx, d.pool, guildID)
}

func (d *dbStore) GetIndicators(ctx context.Context, guildID, address string) (models.Indicators, error) {
	var indicators models.Indicators
	err := d.pool.QueryRow(ctx, selectIndicatorsSQL, guildID, address).
		Scan(&indicators.Online, &indicators.Offline)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultIndicators(), nil
	}
	if err != nil {
		return models.Indicators{}, fmt.Errorf("failed to get indicators: %w", err)
	}
	return indicators.WithDefaults(), nil
}

func (d *dbStore) TotalServers(ctx context.Context) (int, error) {
	var total int64
	if err := d.pool.QueryRow(ctx, countServersSQL).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count servers: %w", err)
	}
	return int(total), nil
}

func (d *dbStore) FindServer(ctx context.Context, guildID, query string) (*models.MonitoredServer, error) {
	servers, err := queryServers(ctx, d.pool, guildID)
	if err != nil {
		return nil, err
	}
	return findServer(servers, query)
}

func (d *dbStore) DefaultServer(ctx context.Context, guildID string) (*models.MonitoredServer, error) {
	servers, err := queryServers(ctx, d.pool, guildID)
	if err != nil {
		return nil, err
	}
	return defaultServer(servers)
}

func (d *dbStore) AddServer(ctx context.Context, guildID string, server models.MonitoredServer) error {
	return d.update(ctx, guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		return addServer(servers, server)
	})
}

func (d *dbStore) RemoveServer(ctx context.Context, guildID, query string) (*models.MonitoredServer, error) {
	var removed *models.MonitoredServer
	err := d.update(ctx, guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		updated, r, err := removeServer(servers, query)
		removed = r
		return updated, err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (d *dbStore) SetDefault(ctx context.Context, guildID, query string) error {
	return d.update(ctx, guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		return setDefault(servers, query)
	})
}

func (d *dbStore) SetIndicators(ctx context.Context, guildID, query string, indicators models.Indicators) error {
	return d.update(ctx, guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		return setIndicators(servers, query, indicators)
	})
}

func (d *dbStore) DeleteGuild(ctx context.Context, guildID string) error {
	if _, err := d.pool.Exec(ctx, deleteGuildSQL, guildID); err != nil {
		return fmt.Errorf("failed to delete guild %s: %w", guildID, err)
	}
	return nil
}

func (d *dbStore) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// update rewrites the guild's rows inside a transaction holding a per-guild
// advisory lock, so concurrent writers to the same guild serialize
func (d *dbStore) update(
	ctx context.Context,
	guildID string,
	fn func([]models.MonitoredServer) ([]models.MonitoredServer, error),
) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, lockGuildSQL, guildID); err != nil {
		return fmt.Errorf("failed to lock guild %s: %w", guildID, err)
	}

	servers, err := queryServers(ctx, tx, guildID)
	if err != nil {
		return err
	}

	updated, err := fn(servers)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, deleteGuildSQL, guildID); err != nil {
		return fmt.Errorf("failed to clear guild %s: %w", guildID, err)
	}

	if len(updated) > 0 {
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"monitored_server"}, copyColumns,
			pgx.CopyFromSlice(len(updated), func(i int) ([]any, error) {
				s := updated[i]
				return []any{
					guildID, int32(i), s.Address, string(s.GetPlatform()), s.Nickname, s.Default,
					s.OnlineIndicator, s.OfflineIndicator, s.StatusChannelID, s.PlayersChannelID, s.CategoryID,
				}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to write guild %s: %w", guildID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit guild %s: %w", guildID, err)
	}
	return nil
}

func queryServers(ctx context.Context, q querier, guildID string) ([]models.MonitoredServer, error) {
	rows, err := q.Query(ctx, selectGuildServersSQL, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query servers of guild %s: %w", guildID, err)
	}
	servers, err := pgx.CollectRows(rows, scanServer)
	if err != nil {
		return nil, fmt.Errorf("failed to read servers of guild %s: %w", guildID, err)
	}
	return servers, nil
}

func scanServer(row pgx.CollectableRow) (models.MonitoredServer, error) {
	var (
		s        models.MonitoredServer
		platform string
	)
	err := row.Scan(
		&s.Address, &platform, &s.Nickname, &s.Default, &s.OnlineIndicator, &s.OfflineIndicator,
		&s.StatusChannelID, &s.PlayersChannelID, &s.CategoryID,
	)
	s.Platform = models.Platform(platform)
	return s, err
}
