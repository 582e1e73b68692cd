// Package config provides configuration loading and management for statusbot.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mcstatusbot/statusbot/internal/telemetry"
)

// EnvPrefix is prepended to every environment variable the service reads
const EnvPrefix = "STATUSBOT"

const (
	defaultProviderTimeout   = 10 * time.Second
	defaultMinInterval       = 6 * time.Minute
	defaultRequestBudget     = 50
	defaultIntervalBuffer    = 60 * time.Second
	defaultMaxConcurrent     = 50
	defaultDelegateInterval  = 15 * time.Minute
	defaultDiscordRate       = 50
	defaultHTTPAddress       = ":8080"
	defaultStoreFilePath     = "./data/servers.yaml"
	defaultSSLMode           = "require"
	defaultConnectMaxElapsed = 2 * time.Minute
)

// StorageType is the backend holding the monitored server records
type StorageType string

const (
	// StorageTypeFile keeps records in a local YAML file
	StorageTypeFile StorageType = "file"

	// StorageTypeDatabase keeps records in PostgreSQL
	StorageTypeDatabase StorageType = "database"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
	env  *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithEnv reads environment overrides from v instead of the process environment
func WithEnv(v *viper.Viper) Option {
	return func(cfg *loaderConfig) error {
		cfg.env = v
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Provider   ProviderConfig    `yaml:"provider"`
	Discord    DiscordConfig     `yaml:"discord"`
	Sync       SyncConfig        `yaml:"sync"`
	Validation ValidationConfig  `yaml:"validation"`
	Store      StoreConfig       `yaml:"store"`
	Database   *DatabaseConfig   `yaml:"database,omitempty"`
	Delegate   *DelegateConfig   `yaml:"delegate,omitempty"`
	Telemetry  *telemetry.Config `yaml:"telemetry,omitempty"`
	HTTP       HTTPConfig        `yaml:"http"`
}

// ProviderConfig locates the status provider
type ProviderConfig struct {
	// Endpoint is the base URL, e.g. "https://ping.example.com"
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single status request (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`
}

// DiscordConfig configures the display platform
type DiscordConfig struct {
	// Token is the bot token. Usually supplied through STATUSBOT_DISCORD_TOKEN.
	Token string `yaml:"token,omitempty"`

	// BaseURL overrides the REST API root
	BaseURL string `yaml:"baseUrl,omitempty"`

	// RequestsPerSecond is the client side request budget
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// DryRun replaces the REST client with an in-memory platform seeded from the store.
	// Servers added while running get their channels on the next pass.
	DryRun bool `yaml:"dryRun,omitempty"`
}

// SyncConfig tunes the synchronization scheduler
type SyncConfig struct {
	// MinInterval is the shortest time between passes
	MinInterval string `yaml:"minInterval,omitempty"`

	// RequestBudget is the number of status requests per second a pass may spend
	RequestBudget int `yaml:"requestBudget,omitempty"`

	// Buffer is added to the time a pass needs at the request budget
	Buffer string `yaml:"buffer,omitempty"`

	// MaxConcurrentGuilds caps the number of guilds updated at once
	MaxConcurrentGuilds int `yaml:"maxConcurrentGuilds,omitempty"`

	// UpdateOnLaunch runs a pass immediately at start
	UpdateOnLaunch bool `yaml:"updateOnLaunch,omitempty"`

	// StartDelay postpones the first pass, staggering instances that share a provider
	StartDelay string `yaml:"startDelay,omitempty"`
}

// ValidationConfig configures host validation
type ValidationConfig struct {
	// AllowPrivateIPs lets non-routable addresses through. Only for self-hosted setups.
	AllowPrivateIPs bool `yaml:"allowPrivateIps,omitempty"`
}

// StoreConfig selects the record store
type StoreConfig struct {
	// Type is "file" or "database"
	Type StorageType `yaml:"type,omitempty"`

	// File configures the file store
	File *FileStoreConfig `yaml:"file,omitempty"`
}

// FileStoreConfig configures the YAML file store
type FileStoreConfig struct {
	Path string `yaml:"path"`
}

// DelegateConfig configures the badge reporter
type DelegateConfig struct {
	// URL is the delegate base URL; the count is posted to {URL}/count/set
	URL string `yaml:"url"`

	// Token authenticates the report. Usually supplied through STATUSBOT_DELEGATE_TOKEN.
	Token string `yaml:"token,omitempty"`

	// Interval between reports (e.g. "15m")
	Interval string `yaml:"interval,omitempty"`
}

// HTTPConfig configures the HTTP API
type HTTPConfig struct {
	// Address to listen on
	Address string `yaml:"address,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// ConnectTimeout bounds the retries made while the database is unreachable at startup
	ConnectTimeout string `yaml:"connectTimeout,omitempty"`

	// password is set from STATUSBOT_DATABASE_PASSWORD
	password string
}

// LoadConfig loads and parses configuration from a YAML file and applies
// environment overrides
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	env := loaderCfg.env
	if env == nil {
		env = NewEnv()
	}
	config.applyEnv(env)

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// NewEnv returns a viper instance bound to the STATUSBOT_ environment variables
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// applyEnv overrides secrets and deployment specific settings from the environment
func (c *Config) applyEnv(v *viper.Viper) {
	if s := v.GetString("discord.token"); s != "" {
		c.Discord.Token = s
	}
	if s := v.GetString("provider.endpoint"); s != "" {
		c.Provider.Endpoint = s
	}
	if v.IsSet("allow_private_ips") {
		c.Validation.AllowPrivateIPs = v.GetBool("allow_private_ips")
	}
	if s := v.GetString("delegate.token"); s != "" {
		if c.Delegate == nil {
			c.Delegate = &DelegateConfig{}
		}
		c.Delegate.Token = s
	}
	if s := v.GetString("delegate.url"); s != "" {
		if c.Delegate == nil {
			c.Delegate = &DelegateConfig{}
		}
		c.Delegate.URL = s
	}
	if c.Database != nil {
		c.Database.password = v.GetString("database.password")
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if c.Provider.Endpoint == "" {
		errs = append(errs, errors.New("provider.endpoint is required"))
	} else if u, err := url.Parse(c.Provider.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("provider.endpoint must be an absolute URL, got %q", c.Provider.Endpoint))
	}

	if c.Discord.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("discord.requestsPerSecond cannot be negative"))
	}

	durations := map[string]string{
		"provider.timeout": c.Provider.Timeout,
		"sync.minInterval": c.Sync.MinInterval,
		"sync.buffer":      c.Sync.Buffer,
		"sync.startDelay":  c.Sync.StartDelay,
	}
	if c.Delegate != nil {
		durations["delegate.interval"] = c.Delegate.Interval
	}
	if c.Database != nil {
		durations["database.connMaxLifetime"] = c.Database.ConnMaxLifetime
		durations["database.connectTimeout"] = c.Database.ConnectTimeout
	}
	for _, key := range slices.Sorted(maps.Keys(durations)) {
		if err := validateDuration(key, durations[key]); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Sync.RequestBudget < 0 {
		errs = append(errs, errors.New("sync.requestBudget cannot be negative"))
	}
	if c.Sync.MaxConcurrentGuilds < 0 {
		errs = append(errs, errors.New("sync.maxConcurrentGuilds cannot be negative"))
	}

	switch c.Store.Type {
	case "", StorageTypeFile:
	case StorageTypeDatabase:
		if c.Database == nil {
			errs = append(errs, errors.New("database configuration is required when store.type is database"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type must be %s or %s, got %q",
			StorageTypeFile, StorageTypeDatabase, c.Store.Type))
	}

	if c.Database != nil {
		if err := c.Database.validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Delegate != nil && c.Delegate.URL != "" {
		if u, err := url.Parse(c.Delegate.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("delegate.url must be an absolute URL, got %q", c.Delegate.URL))
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func validateDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '6m'): %w", key, err)
	}
	if d < 0 {
		return fmt.Errorf("%s cannot be negative", key)
	}
	return nil
}

// parseDuration returns the parsed value or def when value is empty or invalid.
// Values are checked by validate before the getters are used.
func parseDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// GetTimeout returns the status request timeout
func (p *ProviderConfig) GetTimeout() time.Duration {
	return parseDuration(p.Timeout, defaultProviderTimeout)
}

// RequireToken returns an error when the platform needs a token and none is configured.
// Commands that never talk to the platform skip this check.
func (d *DiscordConfig) RequireToken() error {
	if !d.DryRun && d.Token == "" {
		return fmt.Errorf("discord.token is required (or set %s_DISCORD_TOKEN)", EnvPrefix)
	}
	return nil
}

// GetRequestsPerSecond returns the display request budget
func (d *DiscordConfig) GetRequestsPerSecond() float64 {
	if d.RequestsPerSecond == 0 {
		return defaultDiscordRate
	}
	return d.RequestsPerSecond
}

// GetMinInterval returns the shortest time between passes
func (s *SyncConfig) GetMinInterval() time.Duration {
	return parseDuration(s.MinInterval, defaultMinInterval)
}

// GetRequestBudget returns the status requests per second a pass may spend
func (s *SyncConfig) GetRequestBudget() int {
	if s.RequestBudget == 0 {
		return defaultRequestBudget
	}
	return s.RequestBudget
}

// GetBuffer returns the time added to a pass's estimated duration
func (s *SyncConfig) GetBuffer() time.Duration {
	return parseDuration(s.Buffer, defaultIntervalBuffer)
}

// GetMaxConcurrentGuilds returns the guild concurrency cap
func (s *SyncConfig) GetMaxConcurrentGuilds() int {
	if s.MaxConcurrentGuilds == 0 {
		return defaultMaxConcurrent
	}
	return s.MaxConcurrentGuilds
}

// GetStartDelay returns the delay before the first pass
func (s *SyncConfig) GetStartDelay() time.Duration {
	return parseDuration(s.StartDelay, 0)
}

// GetStorageType returns the configured storage type, defaulting to file
func (c *Config) GetStorageType() StorageType {
	if c.Store.Type == "" {
		return StorageTypeFile
	}
	return c.Store.Type
}

// GetFileStorePath returns the path of the YAML record file
func (c *Config) GetFileStorePath() string {
	if c.Store.File == nil || c.Store.File.Path == "" {
		return defaultStoreFilePath
	}
	return c.Store.File.Path
}

// GetHTTPAddress returns the listen address of the HTTP API
func (c *Config) GetHTTPAddress() string {
	if c.HTTP.Address == "" {
		return defaultHTTPAddress
	}
	return c.HTTP.Address
}

// DelegateEnabled reports whether the badge reporter has everything it needs
func (c *Config) DelegateEnabled() bool {
	return c.Delegate != nil && c.Delegate.URL != "" && c.Delegate.Token != ""
}

// GetInterval returns the time between badge reports
func (d *DelegateConfig) GetInterval() time.Duration {
	return parseDuration(d.Interval, defaultDelegateInterval)
}

func (d *DatabaseConfig) validate() error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if d.Port == 0 {
		errs = append(errs, errors.New("database.port is required"))
	}
	if d.User == "" {
		errs = append(errs, errors.New("database.user is required"))
	}
	if d.Database == "" {
		errs = append(errs, errors.New("database.database is required"))
	}
	return errors.Join(errs...)
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. STATUSBOT_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if d.password != "" {
		return d.password, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable", EnvPrefix,
	)
}

// SetPassword sets the password used when neither a password file nor the
// environment variable provides one
func (d *DatabaseConfig) SetPassword(password string) {
	d.password = password
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// GetConnectTimeout returns how long to keep retrying an unreachable database at startup
func (d *DatabaseConfig) GetConnectTimeout() time.Duration {
	return parseDuration(d.ConnectTimeout, defaultConnectMaxElapsed)
}

// GetConnMaxLifetime returns the maximum connection lifetime, zero if unset
func (d *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return parseDuration(d.ConnMaxLifetime, 0)
}
