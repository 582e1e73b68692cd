package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WatchReloadsExternalChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "servers.yaml")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	fstore := s.(*fileStore)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- fstore.watch(ctx, ready) }()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}

	// a second handle on the same file, as the servers command would open
	editor, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, editor.AddServer(ctx, "guild-1", server("mc.example.com", "hub", false)))

	require.Eventually(t, func() bool {
		servers, err := s.GetServers(ctx, "guild-1")
		return err == nil && len(servers) == 1
	}, 5*time.Second, 20*time.Millisecond)

	// an invalid document keeps the previous records
	tmp := filepath.Join(filepath.Dir(path), "broken.yaml")
	require.NoError(t, os.WriteFile(tmp, []byte("guilds: [\n"), 0600))
	require.NoError(t, os.Rename(tmp, path))
	assert.Never(t, func() bool {
		servers, _ := s.GetServers(ctx, "guild-1")
		return len(servers) != 1
	}, 300*time.Millisecond, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFileStore_WatchIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "servers.yaml")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	fstore := s.(*fileStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	go func() { _ = fstore.watch(ctx, ready) }()
	<-ready

	other, err := NewFileStore(filepath.Join(dir, "other.yaml"))
	require.NoError(t, err)
	require.NoError(t, other.AddServer(ctx, "guild-1", server("mc.example.com", "", false)))

	assert.Never(t, func() bool {
		total, _ := s.TotalServers(ctx)
		return total != 0
	}, 300*time.Millisecond, 20*time.Millisecond)
}
