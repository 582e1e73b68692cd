package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "postgres scheme", in: "postgres://u:p@db:5432/statusbot?sslmode=disable", want: "pgx5://u:p@db:5432/statusbot?sslmode=disable"},
		{name: "postgresql scheme", in: "postgresql://u@db/statusbot", want: "pgx5://u@db/statusbot"},
		{name: "already rewritten", in: "pgx5://u@db/statusbot", want: "pgx5://u@db/statusbot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, driverURL(tt.in))
		})
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	t.Parallel()

	err := MigrateDown("postgres://u:p@localhost:1/statusbot", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be positive")
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	connStr := SetupTestDB(t)

	version, dirty, err := GetVersion(connStr)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	// up again is a no-op
	require.NoError(t, MigrateUp(connStr))

	require.NoError(t, MigrateDown(connStr, 1))
	version, _, err = GetVersion(connStr)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	require.NoError(t, MigrateUp(connStr))
}
