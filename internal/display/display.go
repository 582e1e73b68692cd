// Package display defines the display platform the synchronization engine
// writes to: guilds that contain named channels ("surfaces") which are renamed
// to show server status.
package display

import (
	"context"

	"github.com/mcstatusbot/statusbot/internal/models"
)

// Surface is a named channel in a guild
type Surface struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`

	// EveryoneVisible is whether the @everyone role may view the channel,
	// nil when the channel carries no explicit overwrite for it
	EveryoneVisible *bool `json:"everyoneVisible,omitempty"`
}

// Snapshot maps surface IDs to the surfaces observed in a guild at one moment
type Snapshot map[string]Surface

// Lookup returns the surface with the given ID
func (s Snapshot) Lookup(id string) (Surface, bool) {
	if id == "" {
		return Surface{}, false
	}
	surface, ok := s[id]
	return surface, ok
}

// Platform is the display platform
//
//go:generate mockgen -destination=mocks/mock_platform.go -package=mocks github.com/mcstatusbot/statusbot/internal/display Platform
type Platform interface {
	// Guilds returns the IDs of every guild the bot is a member of
	Guilds(ctx context.Context) ([]string, error)

	// Surfaces returns a snapshot of the channels in a guild
	Surfaces(ctx context.Context, guildID string) (Snapshot, error)

	// Rename sets the name of a surface. The priority is passed along as the
	// audit reason so low priority renames can be told apart.
	Rename(ctx context.Context, surfaceID, name string, priority models.Priority) error

	// SetEveryoneVisibility shows or hides a surface from every member of the guild
	SetEveryoneVisibility(ctx context.Context, guildID, surfaceID string, visible bool) error
}
