// Package memory provides an in-process display.Platform. It backs the
// dry-run mode of the service and the engine tests.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/models"
)

// Call records one mutation made against the platform
type Call struct {
	Op        string
	GuildID   string
	SurfaceID string
	Name      string
	Visible   bool
	Priority  models.Priority
}

// Source lists the surfaces each guild is expected to hold
type Source func(ctx context.Context) (map[string][]display.Surface, error)

// Platform keeps guilds and their surfaces in memory
type Platform struct {
	source Source

	mu         sync.Mutex
	guilds     map[string]display.Snapshot
	visibility map[string]bool
	failures   map[string]error
	calls      []Call
}

// Option configures the platform
type Option func(*Platform)

// WithSource makes Guilds pick up guilds and surfaces that appear in src
// after the platform was created
func WithSource(src Source) Option {
	return func(p *Platform) {
		p.source = src
	}
}

// New creates an empty platform
func New(opts ...Option) *Platform {
	p := &Platform{
		guilds:     make(map[string]display.Snapshot),
		visibility: make(map[string]bool),
		failures:   make(map[string]error),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh adds the guilds and surfaces of the source that the platform does
// not hold yet. Known surfaces keep their current name and visibility.
func (p *Platform) Refresh(ctx context.Context) error {
	if p.source == nil {
		return nil
	}
	expected, err := p.source(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for guildID, surfaces := range expected {
		snap := p.guilds[guildID]
		if snap == nil {
			snap = make(display.Snapshot)
			p.guilds[guildID] = snap
		}
		for _, s := range surfaces {
			if _, ok := snap[s.ID]; !ok && s.ID != "" {
				snap[s.ID] = s
			}
		}
	}
	return nil
}

// AddGuild registers a guild with the given surfaces
func (p *Platform) AddGuild(guildID string, surfaces ...display.Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := p.guilds[guildID]
	if snap == nil {
		snap = make(display.Snapshot)
		p.guilds[guildID] = snap
	}
	for _, s := range surfaces {
		snap[s.ID] = s
	}
}

// FailSurface makes every mutation of surfaceID return err
func (p *Platform) FailSurface(surfaceID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[surfaceID] = err
}

// Name returns the current name of a surface
func (p *Platform) Name(surfaceID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, snap := range p.guilds {
		if s, ok := snap[surfaceID]; ok {
			return s.Name, true
		}
	}
	return "", false
}

// Visible returns the visibility last set on a surface and whether one was set
func (p *Platform) Visible(surfaceID string) (visible, set bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	visible, set = p.visibility[surfaceID]
	return visible, set
}

// Calls returns a copy of the recorded mutations
func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

// ResetCalls clears the recorded mutations
func (p *Platform) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Guilds implements display.Platform
func (p *Platform) Guilds(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Refresh(ctx); err != nil {
		slog.Warn("Failed to refresh in-memory guilds, using known guilds", "error", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Sorted(maps.Keys(p.guilds)), nil
}

// Surfaces implements display.Platform
func (p *Platform) Surfaces(ctx context.Context, guildID string) (display.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, ok := p.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("unknown guild %s", guildID)
	}
	return maps.Clone(snap), nil
}

// Rename implements display.Platform
func (p *Platform) Rename(ctx context.Context, surfaceID, name string, priority models.Priority) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Op: "rename", SurfaceID: surfaceID, Name: name, Priority: priority})
	if err, ok := p.failures[surfaceID]; ok {
		return err
	}
	for _, snap := range p.guilds {
		if s, ok := snap[surfaceID]; ok {
			s.Name = name
			snap[surfaceID] = s
			return nil
		}
	}
	return &display.MutationError{
		Kind:      display.KindUnknown,
		SurfaceID: surfaceID,
		Err:       fmt.Errorf("unknown surface %s", surfaceID),
	}
}

// SetEveryoneVisibility implements display.Platform
func (p *Platform) SetEveryoneVisibility(ctx context.Context, guildID, surfaceID string, visible bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Op: "visibility", GuildID: guildID, SurfaceID: surfaceID, Visible: visible})
	if err, ok := p.failures[surfaceID]; ok {
		return err
	}
	p.visibility[surfaceID] = visible
	for _, snap := range p.guilds {
		if s, ok := snap[surfaceID]; ok {
			s.EveryoneVisible = &visible
			snap[surfaceID] = s
		}
	}
	return nil
}
