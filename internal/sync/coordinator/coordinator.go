package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/mcstatusbot/statusbot/internal/config"
	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/otel"
	"github.com/mcstatusbot/statusbot/internal/store"
	"github.com/mcstatusbot/statusbot/internal/sync"
	"github.com/mcstatusbot/statusbot/internal/telemetry"
)

// Coordinator schedules synchronization passes over every guild
type Coordinator interface {
	// Start runs passes on the configured interval.
	// Blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator and waits for a running pass to return
	Stop() error

	// RunPass executes one pass and waits for it. It returns false without
	// doing anything when another pass is still running.
	RunPass(ctx context.Context) bool

	// Status returns a snapshot of the scheduling state
	Status() PassStatus
}

// PassStatus describes the scheduling state of the coordinator
type PassStatus struct {
	Running        bool
	Interval       time.Duration
	CurrentPassID  string
	LastPassID     string
	LastStarted    *time.Time
	LastFinished   *time.Time
	LastDuration   time.Duration
	LastGuildCount int
	PassesRun      int64
	PassesSkipped  int64
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	updater  sync.Updater
	platform display.Platform
	store    store.Store
	config   *config.SyncConfig
	clock    clock.WithTicker

	// Lifecycle management
	done   chan struct{}
	passes gosync.WaitGroup

	running atomic.Bool

	// mu guards cancelFunc and status
	mu         gosync.Mutex
	cancelFunc context.CancelFunc
	status     PassStatus

	syncMetrics *telemetry.SyncMetrics
	tracer      trace.Tracer
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithClock replaces the real clock driving the ticker
func WithClock(clk clock.WithTicker) Option {
	return func(c *defaultCoordinator) {
		c.clock = clk
	}
}

// WithTracer sets the tracer used for pass spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *defaultCoordinator) {
		c.tracer = tracer
	}
}

// New creates a new coordinator with injected dependencies
func New(
	updater sync.Updater,
	platform display.Platform,
	st store.Store,
	cfg *config.SyncConfig,
	opts ...Option,
) Coordinator {
	if cfg == nil {
		cfg = &config.SyncConfig{}
	}
	c := &defaultCoordinator{
		updater:  updater,
		platform: platform,
		store:    st,
		config:   cfg,
		clock:    clock.RealClock{},
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins periodic passes
func (c *defaultCoordinator) Start(ctx context.Context) error {
	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		c.passes.Wait()
		close(c.done)
		slog.Info("Sync coordinator shut down")
	}()

	if delay := c.config.GetStartDelay(); delay > 0 {
		slog.Info("Delaying first sync pass", "delay", delay)
		select {
		case <-c.clock.After(delay):
		case <-coordCtx.Done():
			return nil
		}
	}

	interval, err := c.computeInterval(coordCtx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.status.Interval = interval
	c.mu.Unlock()

	slog.Info("Starting sync coordinator",
		"interval", interval,
		"max_concurrent_guilds", c.config.GetMaxConcurrentGuilds(),
		"update_on_launch", c.config.UpdateOnLaunch,
	)

	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	if c.config.UpdateOnLaunch {
		c.trigger(coordCtx)
	}

	for {
		select {
		case <-ticker.C():
			c.trigger(coordCtx)
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// computeInterval derives the pass interval from the number of monitored servers
func (c *defaultCoordinator) computeInterval(ctx context.Context) (time.Duration, error) {
	total, err := c.store.TotalServers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count monitored servers: %w", err)
	}
	c.syncMetrics.RecordServersTotal(ctx, int64(total))

	return CalculateInterval(
		total,
		c.config.GetMinInterval(),
		c.config.GetRequestBudget(),
		c.config.GetBuffer(),
	), nil
}

// trigger starts a pass in the background
func (c *defaultCoordinator) trigger(ctx context.Context) {
	c.passes.Add(1)
	go func() {
		defer c.passes.Done()
		c.RunPass(ctx)
	}()
}

// RunPass executes one pass unless another is running
func (c *defaultCoordinator) RunPass(ctx context.Context) bool {
	if !c.running.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.status.PassesSkipped++
		current := c.status.CurrentPassID
		c.mu.Unlock()

		slog.Warn("Skipping sync pass, previous pass still running", "pass_id", current)
		c.syncMetrics.RecordPassSkipped(ctx)
		return false
	}
	defer c.running.Store(false)

	passID := uuid.NewString()
	started := c.clock.Now()

	c.mu.Lock()
	c.status.Running = true
	c.status.CurrentPassID = passID
	c.mu.Unlock()

	ctx, span := otel.StartSpan(ctx, c.tracer, "sync.pass",
		trace.WithAttributes(otel.AttrPassID.String(passID)),
	)
	defer span.End()

	guildCount := c.runPass(ctx, passID)
	span.SetAttributes(otel.AttrGuildCount.Int(guildCount))

	finished := c.clock.Now()
	duration := finished.Sub(started)
	c.syncMetrics.RecordPassDuration(ctx, duration, guildCount)

	c.mu.Lock()
	c.status.Running = false
	c.status.CurrentPassID = ""
	c.status.LastPassID = passID
	c.status.LastStarted = &started
	c.status.LastFinished = &finished
	c.status.LastDuration = duration
	c.status.LastGuildCount = guildCount
	c.status.PassesRun++
	c.mu.Unlock()

	slog.Info("Sync pass completed",
		"pass_id", passID,
		"guilds", guildCount,
		"duration", duration,
	)
	return true
}

// runPass updates every guild with at most MaxConcurrentGuilds in flight and
// returns the number of guilds visited
func (c *defaultCoordinator) runPass(ctx context.Context, passID string) int {
	guildIDs, err := c.platform.Guilds(ctx)
	if err != nil {
		slog.Error("Failed to list guilds", "pass_id", passID, "error", err)
		return 0
	}

	slog.Debug("Starting sync pass", "pass_id", passID, "guilds", len(guildIDs))

	var g errgroup.Group
	g.SetLimit(c.config.GetMaxConcurrentGuilds())

	visited := 0
	for _, guildID := range guildIDs {
		if ctx.Err() != nil {
			slog.Info("Sync pass cancelled", "pass_id", passID, "remaining", len(guildIDs)-visited)
			break
		}
		visited++
		g.Go(func() error {
			c.syncMetrics.GuildStarted(ctx)
			defer c.syncMetrics.GuildFinished(ctx)
			c.updater.UpdateGuild(ctx, guildID)
			return nil
		})
	}
	_ = g.Wait()

	return visited
}

// Status returns a copy of the scheduling state
func (c *defaultCoordinator) Status() PassStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}
