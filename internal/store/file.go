package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mcstatusbot/statusbot/internal/models"
)

// fileDocument is the on-disk layout of the file store
type fileDocument struct {
	Guilds map[string]fileGuild `yaml:"guilds"`
}

type fileGuild struct {
	Servers []models.MonitoredServer `yaml:"servers"`
}

var errEmptyStoreFile = errors.New("store file is empty")

type fileStore struct {
	path string

	mu     sync.RWMutex
	guilds map[string][]models.MonitoredServer
}

var _ Store = (*fileStore)(nil)

// NewFileStore opens the YAML store at path. A missing file is treated as an
// empty store and created on the first write.
func NewFileStore(path string) (Store, error) {
	if path == "" {
		return nil, errors.New("file store path is required")
	}

	s := &fileStore{
		path:   filepath.Clean(path),
		guilds: make(map[string][]models.MonitoredServer),
	}

	guilds, err := s.load()
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, errEmptyStoreFile) {
		slog.Info("Store file missing or empty, starting empty", "path", s.path)
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	s.guilds = guilds

	slog.Info("Loaded store file", "path", s.path, "guilds", len(s.guilds))
	return s, nil
}

// load reads and validates the store file without touching the in-memory state
func (s *fileStore) load() (map[string][]models.MonitoredServer, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	// editors truncate before writing
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyStoreFile
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", s.path, err)
	}

	guilds := make(map[string][]models.MonitoredServer, len(doc.Guilds))
	for guildID, guild := range doc.Guilds {
		if err := models.ValidateGuildServers(guild.Servers); err != nil {
			return nil, fmt.Errorf("guild %s: %w", guildID, err)
		}
		if len(guild.Servers) > 0 {
			guilds[guildID] = guild.Servers
		}
	}
	return guilds, nil
}

// reload replaces the in-memory state with the file contents. An unreadable
// or invalid file leaves the current state in place.
func (s *fileStore) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guilds, err := s.load()
	if err != nil {
		return err
	}
	s.guilds = guilds
	return nil
}

func (s *fileStore) GuildIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.guilds)), nil
}

func (s *fileStore) GetServers(_ context.Context, guildID string) ([]models.MonitoredServer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.guilds[guildID]), nil
}

func (s *fileStore) GetIndicators(_ context.Context, guildID, address string) (models.Indicators, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indicatorsFor(s.guilds[guildID], address), nil
}

func (s *fileStore) TotalServers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, servers := range s.guilds {
		total += len(servers)
	}
	return total, nil
}

func (s *fileStore) FindServer(_ context.Context, guildID, query string) (*models.MonitoredServer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findServer(s.guilds[guildID], query)
}

func (s *fileStore) DefaultServer(_ context.Context, guildID string) (*models.MonitoredServer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return defaultServer(s.guilds[guildID])
}

func (s *fileStore) AddServer(_ context.Context, guildID string, server models.MonitoredServer) error {
	return s.update(guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		return addServer(servers, server)
	})
}

func (s *fileStore) RemoveServer(_ context.Context, guildID, query string) (*models.MonitoredServer, error) {
	var removed *models.MonitoredServer
	err := s.update(guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		updated, r, err := removeServer(servers, query)
		removed = r
		return updated, err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *fileStore) SetDefault(_ context.Context, guildID, query string) error {
	return s.update(guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		return setDefault(servers, query)
	})
}

func (s *fileStore) SetIndicators(_ context.Context, guildID, query string, indicators models.Indicators) error {
	return s.update(guildID, func(servers []models.MonitoredServer) ([]models.MonitoredServer, error) {
		return setIndicators(servers, query, indicators)
	})
}

func (s *fileStore) DeleteGuild(_ context.Context, guildID string) error {
	return s.update(guildID, func([]models.MonitoredServer) ([]models.MonitoredServer, error) {
		return nil, nil
	})
}

func (*fileStore) Ping(_ context.Context) error {
	return nil
}

// update applies fn to the guild's servers, persists the result and only
// then swaps it into memory
func (s *fileStore) update(
	guildID string,
	fn func([]models.MonitoredServer) ([]models.MonitoredServer, error),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(s.guilds[guildID])
	if err != nil {
		return err
	}

	next := maps.Clone(s.guilds)
	if len(updated) == 0 {
		delete(next, guildID)
	} else {
		next[guildID] = updated
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.guilds = next
	return nil
}

// persist writes the document to a temporary file in the same directory and
// renames it over the store file
func (s *fileStore) persist(guilds map[string][]models.MonitoredServer) error {
	doc := fileDocument{Guilds: make(map[string]fileGuild, len(guilds))}
	for guildID, servers := range guilds {
		doc.Guilds[guildID] = fileGuild{Servers: servers}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".statusbot-store-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temporary store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
