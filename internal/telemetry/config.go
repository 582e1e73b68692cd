// Package telemetry wires OpenTelemetry tracing and metrics for statusbot:
// provider setup with OTLP and Prometheus exporters, HTTP middleware and the
// sync engine instruments.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/mcstatusbot/statusbot/internal/versions"
)

// Defaults applied by the Config getters
const (
	DefaultServiceName = "statusbot"
	DefaultEndpoint    = "localhost:4318"
	DefaultSampling    = 0.05
)

// Config is the telemetry section of the configuration file. Nothing is
// exported unless Enabled is set along with the tracing or metrics section.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies the process in traces and metric resources
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion defaults to the build version
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the host:port of an OTLP/HTTP collector
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends OTLP over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig configures span export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of sync passes and requests traced, in (0, 1]
	Sampling *float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig configures metric export
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Prometheus serves the metrics on the HTTP API's /metrics endpoint
	Prometheus bool `yaml:"prometheus,omitempty"`

	// SkipOTLP stops pushing metrics to the collector
	SkipOTLP bool `yaml:"skipOtlp,omitempty"`
}

// GetServiceName returns the service name or DefaultServiceName
func (c *Config) GetServiceName() string {
	return valueOr(c.ServiceName, DefaultServiceName)
}

// GetServiceVersion returns the service version or the build version
func (c *Config) GetServiceVersion() string {
	return valueOr(c.ServiceVersion, versions.GetVersionInfo().Version)
}

// GetEndpoint returns the collector endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	return valueOr(c.Endpoint, DefaultEndpoint)
}

// GetInsecure returns the insecure flag
func (c *Config) GetInsecure() bool {
	return c.Insecure
}

// GetSampling returns the sampling ratio or DefaultSampling
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == nil {
		return DefaultSampling
	}
	return *c.Sampling
}

func valueOr(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// Validate checks the enabled sections. A nil or disabled config is valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	return errors.Join(errs...)
}

// Validate checks the sampling ratio of enabled tracing
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled || c.Sampling == nil {
		return nil
	}
	if s := *c.Sampling; s <= 0 || s > 1 {
		return fmt.Errorf("sampling must be greater than 0.0 and at most 1.0, got %f", s)
	}
	return nil
}

// Validate rejects enabled metrics that would have no exporter
func (c *MetricsConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.SkipOTLP && !c.Prometheus {
		return errors.New("skipOtlp requires prometheus to be enabled")
	}
	return nil
}
