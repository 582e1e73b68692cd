package coordinator

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/mcstatusbot/statusbot/internal/config"
	"github.com/mcstatusbot/statusbot/internal/display"
	displaymocks "github.com/mcstatusbot/statusbot/internal/display/mocks"
	"github.com/mcstatusbot/statusbot/internal/display/memory"
	"github.com/mcstatusbot/statusbot/internal/models"
	storemocks "github.com/mcstatusbot/statusbot/internal/store/mocks"
)

// spyUpdater records the guilds it was asked to update. When block is set
// every call waits on it.
type spyUpdater struct {
	mu     gosync.Mutex
	guilds []string
	calls  atomic.Int64
	block  chan struct{}

	entered chan struct{}
}

func (s *spyUpdater) UpdateGuild(ctx context.Context, guildID string) {
	s.calls.Add(1)
	s.mu.Lock()
	s.guilds = append(s.guilds, guildID)
	s.mu.Unlock()

	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.block != nil {
		<-s.block
	}
}

func (*spyUpdater) UpdateServer(context.Context, string, models.MonitoredServer, display.Snapshot) {}

func (s *spyUpdater) visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.guilds...)
}

func platformWithGuilds(n int) *memory.Platform {
	p := memory.New()
	for i := range n {
		p.AddGuild(fmt.Sprintf("guild-%03d", i))
	}
	return p
}

func TestCalculateInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    int
		min      time.Duration
		budget   int
		buffer   time.Duration
		expected time.Duration
	}{
		{
			name:     "no servers uses minimum",
			total:    0,
			min:      6 * time.Minute,
			budget:   50,
			buffer:   60 * time.Second,
			expected: 6 * time.Minute,
		},
		{
			name:     "large fleet exceeds minimum",
			total:    20000,
			min:      6 * time.Minute,
			budget:   50,
			buffer:   60 * time.Second,
			expected: 7*time.Minute + 40*time.Second,
		},
		{
			name:     "fractional seconds are rounded",
			total:    25,
			min:      0,
			budget:   50,
			buffer:   60 * time.Second,
			expected: 61 * time.Second,
		},
		{
			name:     "zero budget is treated as one request per second",
			total:    30,
			min:      0,
			budget:   0,
			buffer:   0,
			expected: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CalculateInterval(tt.total, tt.min, tt.budget, tt.buffer))
		})
	}
}

func TestRunPass_UpdatesEveryGuild(t *testing.T) {
	t.Parallel()

	updater := &spyUpdater{}
	c := New(updater, platformWithGuilds(3), nil, &config.SyncConfig{})

	require.True(t, c.RunPass(context.Background()))
	assert.ElementsMatch(t, []string{"guild-000", "guild-001", "guild-002"}, updater.visited())

	status := c.Status()
	assert.False(t, status.Running)
	assert.Empty(t, status.CurrentPassID)
	assert.NotEmpty(t, status.LastPassID)
	assert.Equal(t, 3, status.LastGuildCount)
	assert.Equal(t, int64(1), status.PassesRun)
	assert.Zero(t, status.PassesSkipped)
	require.NotNil(t, status.LastStarted)
	require.NotNil(t, status.LastFinished)
	assert.False(t, status.LastFinished.Before(*status.LastStarted))
}

func TestRunPass_NoGuilds(t *testing.T) {
	t.Parallel()

	updater := &spyUpdater{}
	c := New(updater, memory.New(), nil, nil)

	require.True(t, c.RunPass(context.Background()))
	assert.Zero(t, updater.calls.Load())
	assert.Equal(t, 0, c.Status().LastGuildCount)
}

func TestRunPass_GuildListError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	platform := displaymocks.NewMockPlatform(ctrl)
	platform.EXPECT().Guilds(gomock.Any()).Return(nil, errors.New("gateway unavailable"))

	updater := &spyUpdater{}
	c := New(updater, platform, nil, nil)

	require.True(t, c.RunPass(context.Background()))
	assert.Zero(t, updater.calls.Load())
	assert.Equal(t, int64(1), c.Status().PassesRun)
}

func TestRunPass_RespectsConcurrencyCap(t *testing.T) {
	t.Parallel()

	const (
		guilds   = 200
		capacity = 50
	)

	var (
		inFlight atomic.Int64
		maxSeen  atomic.Int64
		visited  atomic.Int64
		release  = make(chan struct{})
		once     gosync.Once
	)

	updater := &funcUpdater{fn: func(string) {
		visited.Add(1)
		n := inFlight.Add(1)
		for {
			seen := maxSeen.Load()
			if n <= seen || maxSeen.CompareAndSwap(seen, n) {
				break
			}
		}
		if n >= capacity {
			once.Do(func() { close(release) })
		}
		<-release
		inFlight.Add(-1)
	}}

	c := New(updater, platformWithGuilds(guilds), nil, &config.SyncConfig{MaxConcurrentGuilds: capacity})

	require.True(t, c.RunPass(context.Background()))
	assert.Equal(t, int64(capacity), maxSeen.Load())
	assert.Equal(t, int64(guilds), visited.Load())
	assert.Equal(t, guilds, c.Status().LastGuildCount)
}

func TestRunPass_SkipsWhilePassRunning(t *testing.T) {
	t.Parallel()

	updater := &spyUpdater{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := New(updater, platformWithGuilds(1), nil, nil)

	first := make(chan bool)
	go func() { first <- c.RunPass(context.Background()) }()

	select {
	case <-updater.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first pass did not start")
	}

	status := c.Status()
	assert.True(t, status.Running)
	assert.NotEmpty(t, status.CurrentPassID)

	assert.False(t, c.RunPass(context.Background()))
	assert.Equal(t, int64(1), c.Status().PassesSkipped)

	close(updater.block)
	assert.True(t, <-first)

	status = c.Status()
	assert.Equal(t, int64(1), status.PassesRun)
	assert.Equal(t, int64(1), status.PassesSkipped)
	assert.Equal(t, int64(1), updater.calls.Load())

	// the next trigger after completion runs normally
	assert.True(t, c.RunPass(context.Background()))
	assert.Equal(t, int64(2), c.Status().PassesRun)
}

func TestRunPass_CancelledContext(t *testing.T) {
	t.Parallel()

	updater := &spyUpdater{}
	c := New(updater, platformWithGuilds(5), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.True(t, c.RunPass(ctx))
	assert.Zero(t, updater.calls.Load())
}

func TestStart_RunsOnTicker(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	st.EXPECT().TotalServers(gomock.Any()).Return(20000, nil)

	fakeClock := clocktesting.NewFakeClock(time.Now())
	updater := &spyUpdater{}
	c := New(updater, platformWithGuilds(2), st, &config.SyncConfig{}, WithClock(fakeClock))

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	require.Eventually(t, fakeClock.HasWaiters, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 7*time.Minute+40*time.Second, c.Status().Interval)
	assert.Zero(t, updater.calls.Load(), "no pass before the first tick")

	fakeClock.Step(7*time.Minute + 40*time.Second)
	require.Eventually(t, func() bool {
		return c.Status().PassesRun == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2), updater.calls.Load())

	require.NoError(t, c.Stop())
	require.NoError(t, <-done)
}

func TestStart_UpdateOnLaunch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	st.EXPECT().TotalServers(gomock.Any()).Return(0, nil)

	fakeClock := clocktesting.NewFakeClock(time.Now())
	updater := &spyUpdater{}
	c := New(updater, platformWithGuilds(1), st,
		&config.SyncConfig{UpdateOnLaunch: true}, WithClock(fakeClock))

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return c.Status().PassesRun == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 6*time.Minute, c.Status().Interval)

	require.NoError(t, c.Stop())
	require.NoError(t, <-done)
}

func TestStart_CountError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	st.EXPECT().TotalServers(gomock.Any()).Return(0, errors.New("connection refused"))

	c := New(&spyUpdater{}, memory.New(), st, nil, WithClock(clocktesting.NewFakeClock(time.Now())))

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count monitored servers")

	// Stop after a failed start returns immediately
	require.NoError(t, c.Stop())
}

func TestStart_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	st.EXPECT().TotalServers(gomock.Any()).Return(0, nil)

	fakeClock := clocktesting.NewFakeClock(time.Now())
	c := New(&spyUpdater{}, memory.New(), st, nil, WithClock(fakeClock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, fakeClock.HasWaiters, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
}

func TestStop_ConcurrentWithStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	st.EXPECT().TotalServers(gomock.Any()).Return(0, nil).AnyTimes()

	c := New(&spyUpdater{}, memory.New(), st, nil, WithClock(clocktesting.NewFakeClock(time.Now())))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	stopped := make(chan error, 1)
	go func() { stopped <- c.Stop() }()
	require.NoError(t, <-stopped)

	// Stop may have run before Start registered its cancel function
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
}

func TestStop_WithoutStart(t *testing.T) {
	t.Parallel()

	c := New(&spyUpdater{}, memory.New(), nil, nil)
	require.NoError(t, c.Stop())
}

type funcUpdater struct {
	fn func(guildID string)
}

func (f *funcUpdater) UpdateGuild(_ context.Context, guildID string) { f.fn(guildID) }

func (*funcUpdater) UpdateServer(context.Context, string, models.MonitoredServer, display.Snapshot) {}
