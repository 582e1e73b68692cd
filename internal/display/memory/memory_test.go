package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/models"
)

func TestPlatform(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New()
	p.AddGuild("g2")
	p.AddGuild("g1", display.Surface{ID: "c1", Name: "Status: Offline"})

	guilds, err := p.Guilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, guilds)

	require.NoError(t, p.Rename(ctx, "c1", "Status: Online", models.PriorityLow))
	name, ok := p.Name("c1")
	require.True(t, ok)
	assert.Equal(t, "Status: Online", name)

	snap, err := p.Surfaces(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Status: Online", snap["c1"].Name)

	// the snapshot is a copy
	snap["c1"] = display.Surface{ID: "c1", Name: "changed"}
	name, _ = p.Name("c1")
	assert.Equal(t, "Status: Online", name)

	require.NoError(t, p.SetEveryoneVisibility(ctx, "g1", "c1", false))
	visible, set := p.Visible("c1")
	assert.True(t, set)
	assert.False(t, visible)

	assert.Len(t, p.Calls(), 2)
	p.ResetCalls()
	assert.Empty(t, p.Calls())
}

func TestPlatform_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New()
	p.AddGuild("g1", display.Surface{ID: "c1", Name: "old"})
	p.FailSurface("c1", &display.MutationError{Kind: display.KindPermissionDenied, SurfaceID: "c1"})

	err := p.Rename(ctx, "c1", "new", models.PriorityLow)
	assert.ErrorIs(t, err, display.ErrPermissionDenied)
	name, _ := p.Name("c1")
	assert.Equal(t, "old", name)

	err = p.Rename(ctx, "missing", "new", models.PriorityLow)
	assert.Equal(t, display.KindUnknown, display.Classify(err))

	_, err = p.Surfaces(ctx, "unknown")
	assert.Error(t, err)
}

func TestPlatform_VisibilityShowsInSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New()
	p.AddGuild("g1", display.Surface{ID: "c1", Name: "Players: 0"})

	snap, err := p.Surfaces(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, snap["c1"].EveryoneVisible)

	require.NoError(t, p.SetEveryoneVisibility(ctx, "g1", "c1", true))
	require.NoError(t, p.Rename(ctx, "c1", "Players: 1/2", models.PriorityLow))

	snap, err = p.Surfaces(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, snap["c1"].EveryoneVisible)
	assert.True(t, *snap["c1"].EveryoneVisible)
	assert.Equal(t, "Players: 1/2", snap["c1"].Name)
}

func TestPlatform_SourceAddsNewSurfaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	expected := map[string][]display.Surface{
		"g1": {{ID: "c1"}},
	}
	var failing atomic.Bool
	p := New(WithSource(func(context.Context) (map[string][]display.Surface, error) {
		if failing.Load() {
			return nil, errors.New("store unavailable")
		}
		return expected, nil
	}))

	require.NoError(t, p.Refresh(ctx))
	require.NoError(t, p.Rename(ctx, "c1", "Status: Online", models.PriorityLow))

	// a guild and a channel added to the source after startup
	expected = map[string][]display.Surface{
		"g1": {{ID: "c1"}, {ID: "c2"}},
		"g2": {{ID: "c3"}},
	}
	guilds, err := p.Guilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, guilds)

	snap, err := p.Surfaces(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.Equal(t, "Status: Online", snap["c1"].Name, "known surfaces keep their name")

	failing.Store(true)
	require.Error(t, p.Refresh(ctx))
	guilds, err = p.Guilds(ctx)
	require.NoError(t, err, "a failing source falls back to the known guilds")
	assert.Len(t, guilds, 2)
}
