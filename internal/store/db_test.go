package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/mcstatusbot/statusbot/database"
)

func TestDBStore(t *testing.T) {
	t.Parallel()

	connStr := database.SetupTestDB(t)

	pool, err := pgxpool.New(context.Background(), connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	runStoreSuite(t, func(t *testing.T) Store {
		t.Helper()
		_, err := pool.Exec(context.Background(), "TRUNCATE monitored_server")
		require.NoError(t, err)
		return NewDBStore(pool)
	})
}
