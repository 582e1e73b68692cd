package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mcstatusbot/statusbot/internal/api"
	"github.com/mcstatusbot/statusbot/internal/config"
	"github.com/mcstatusbot/statusbot/internal/delegate"
	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/display/discord"
	"github.com/mcstatusbot/statusbot/internal/display/memory"
	"github.com/mcstatusbot/statusbot/internal/httpclient"
	"github.com/mcstatusbot/statusbot/internal/status"
	"github.com/mcstatusbot/statusbot/internal/store"
	"github.com/mcstatusbot/statusbot/internal/sync"
	"github.com/mcstatusbot/statusbot/internal/sync/coordinator"
	"github.com/mcstatusbot/statusbot/internal/telemetry"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 35 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	// instrumentationName names the tracers of the sync engine
	instrumentationName = "github.com/mcstatusbot/statusbot"
)

// StatusBotAppOptions is a function that configures the app builder
type StatusBotAppOptions func(*statusBotAppConfig) error

// statusBotAppConfig collects the builder inputs. Components left nil are
// built from the configuration.
type statusBotAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	store        store.Store
	platform     display.Platform
	statusClient status.Client
	telemetry    *telemetry.Telemetry

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...StatusBotAppOptions) (*statusBotAppConfig, error) {
	cfg := &statusBotAppConfig{
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.address == "" {
		cfg.address = cfg.config.GetHTTPAddress()
	}

	return cfg, nil
}

// NewStatusBotApp builds every component of the service from its configuration
func NewStatusBotApp(ctx context.Context, opts ...StatusBotAppOptions) (*StatusBotApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components := &AppComponents{}

	// Release what was built so far when a later step fails
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			components.close(context.Background())
		}
	}()

	if err := buildTelemetry(ctx, cfg, components); err != nil {
		return nil, fmt.Errorf("failed to build telemetry: %w", err)
	}
	if err := buildStore(ctx, cfg, components); err != nil {
		return nil, fmt.Errorf("failed to build record store: %w", err)
	}
	if err := buildPlatform(ctx, cfg, components); err != nil {
		return nil, fmt.Errorf("failed to build display platform: %w", err)
	}

	statusClient := buildStatusClient(cfg, components)

	if err := buildSyncComponents(cfg, components, statusClient); err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	if cfg.config.DelegateEnabled() {
		components.Reporter = delegate.New(cfg.config.Delegate, components.Platform,
			httpclient.NewDefaultClient(httpclient.DefaultTimeout))
		slog.Info("Delegate reporter enabled", "interval", cfg.config.Delegate.GetInterval())
	}

	httpServer, err := buildHTTPServer(cfg, components, statusClient)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	return &StatusBotApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding http.address
func WithAddress(addr string) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		if addr == "" {
			return errors.New("address cannot be empty")
		}

		host, port, ok := strings.Cut(addr, ":")
		if !ok || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "localhost":
			host = "127.0.0.1"
		case "":
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStore injects a record store (for testing)
func WithStore(st store.Store) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		cfg.store = st
		return nil
	}
}

// WithPlatform injects a display platform (for testing)
func WithPlatform(p display.Platform) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		cfg.platform = p
		return nil
	}
}

// WithStatusClient injects a status provider client (for testing)
func WithStatusClient(c status.Client) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		cfg.statusClient = c
		return nil
	}
}

// WithTelemetry injects telemetry providers
func WithTelemetry(t *telemetry.Telemetry) StatusBotAppOptions {
	return func(cfg *statusBotAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

func buildTelemetry(ctx context.Context, b *statusBotAppConfig, c *AppComponents) error {
	if b.telemetry != nil {
		c.Telemetry = b.telemetry
		return nil
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(b.config.Telemetry))
	if err != nil {
		return err
	}
	c.Telemetry = tel
	return nil
}

// buildStore opens the configured record store
func buildStore(ctx context.Context, b *statusBotAppConfig, c *AppComponents) error {
	if b.store != nil {
		c.Store = b.store
		return nil
	}

	if b.config.GetStorageType() == config.StorageTypeDatabase {
		pool, err := store.NewPool(ctx, b.config.Database)
		if err != nil {
			return err
		}
		c.Pool = pool
	}

	st, err := store.New(b.config, c.Pool)
	if err != nil {
		return err
	}
	c.Store = st
	slog.Info("Record store initialized", "type", b.config.GetStorageType())
	return nil
}

// buildPlatform creates the Discord client, or an in-memory platform seeded
// from the store in dry-run mode
func buildPlatform(ctx context.Context, b *statusBotAppConfig, c *AppComponents) error {
	if b.platform != nil {
		c.Platform = b.platform
		return nil
	}

	if b.config.Discord.DryRun {
		p, err := seedMemoryPlatform(ctx, c.Store)
		if err != nil {
			return err
		}
		c.Platform = p
		slog.Warn("Dry run enabled, channel updates are kept in memory")
		return nil
	}

	if err := b.config.Discord.RequireToken(); err != nil {
		return err
	}

	opts := []discord.Option{discord.WithRateLimit(b.config.Discord.GetRequestsPerSecond())}
	if b.config.Discord.BaseURL != "" {
		opts = append(opts, discord.WithBaseURL(b.config.Discord.BaseURL))
	}
	c.Platform = discord.NewClient(b.config.Discord.Token, opts...)
	return nil
}

// seedMemoryPlatform registers every guild of the store with its channels.
// Guilds and channels added to the store later are picked up at the start of
// the next pass.
func seedMemoryPlatform(ctx context.Context, st store.Store) (*memory.Platform, error) {
	p := memory.New(memory.WithSource(func(ctx context.Context) (map[string][]display.Surface, error) {
		return storeSurfaces(ctx, st)
	}))
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// storeSurfaces lists the channels every monitored server of the store uses
func storeSurfaces(ctx context.Context, st store.Store) (map[string][]display.Surface, error) {
	guildIDs, err := st.GuildIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}

	guilds := make(map[string][]display.Surface, len(guildIDs))
	for _, guildID := range guildIDs {
		servers, err := st.GetServers(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to read guild %s: %w", guildID, err)
		}

		var surfaces []display.Surface
		for _, s := range servers {
			surfaces = append(surfaces,
				display.Surface{ID: s.StatusChannelID, ParentID: s.CategoryID},
				display.Surface{ID: s.PlayersChannelID, ParentID: s.CategoryID},
			)
		}
		guilds[guildID] = surfaces
	}
	return guilds, nil
}

func buildStatusClient(b *statusBotAppConfig, c *AppComponents) status.Client {
	if b.statusClient != nil {
		return b.statusClient
	}
	return status.NewClient(b.config.Provider.Endpoint,
		status.WithHTTPClient(httpclient.NewDefaultClient(b.config.Provider.GetTimeout())),
		status.WithAllowPrivate(b.config.Validation.AllowPrivateIPs),
		status.WithTracer(c.Telemetry.Tracer(instrumentationName)),
	)
}

// buildSyncComponents builds the updater and the coordinator driving it
func buildSyncComponents(b *statusBotAppConfig, c *AppComponents, client status.Client) error {
	slog.Info("Initializing sync components")

	syncMetrics, err := telemetry.NewSyncMetrics(c.Telemetry.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create sync metrics: %w", err)
	}
	tracer := c.Telemetry.Tracer(instrumentationName)

	updater := sync.NewUpdater(c.Store, client, c.Platform,
		sync.WithMetrics(syncMetrics),
		sync.WithTracer(tracer),
	)
	c.SyncCoordinator = coordinator.New(updater, c.Platform, c.Store, &b.config.Sync,
		coordinator.WithSyncMetrics(syncMetrics),
		coordinator.WithTracer(tracer),
	)

	slog.Info("Sync components initialized successfully")
	return nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *statusBotAppConfig, c *AppComponents, client status.Client) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RealIP,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Instrumentation goes first to capture every request
	instrument, err := telemetry.HTTPMiddleware(c.Telemetry.TracerProvider(), c.Telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP instrumentation: %w", err)
	}
	b.middlewares = append([]func(http.Handler) http.Handler{instrument}, b.middlewares...)

	router := api.NewServer(client, c.Store,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(c.Telemetry.MetricsHandler()),
		api.WithSyncStatus(c.SyncCoordinator),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}

// close releases the pool and flushes telemetry
func (c *AppComponents) close(ctx context.Context) {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Telemetry != nil {
		if err := c.Telemetry.Shutdown(ctx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}
}
