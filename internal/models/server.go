// Package models defines the records a guild keeps about the game servers it monitors.
package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Platform identifies the edition of the game a server runs
type Platform string

const (
	// PlatformJava is the Java edition (default)
	PlatformJava Platform = "java"

	// PlatformBedrock is the Bedrock edition
	PlatformBedrock Platform = "bedrock"
)

const (
	// DefaultOnlineIndicator is substituted for "online" when a server has no custom indicator
	DefaultOnlineIndicator = "Online"

	// DefaultOfflineIndicator is substituted for "offline" when a server has no custom indicator
	DefaultOfflineIndicator = "Offline"

	// MaxIndicatorLength is the maximum number of characters in an indicator
	MaxIndicatorLength = 16
)

// ParsePlatform parses a platform name. An empty string yields PlatformJava.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlatformJava:
		return PlatformJava, nil
	case PlatformBedrock:
		return PlatformBedrock, nil
	default:
		return "", fmt.Errorf("unknown platform %q: must be %s or %s", s, PlatformJava, PlatformBedrock)
	}
}

// Indicators are the labels substituted for the words "online" and "offline"
type Indicators struct {
	Online  string `yaml:"online" json:"online"`
	Offline string `yaml:"offline" json:"offline"`
}

// DefaultIndicators returns the indicators used when none are configured
func DefaultIndicators() Indicators {
	return Indicators{Online: DefaultOnlineIndicator, Offline: DefaultOfflineIndicator}
}

// WithDefaults fills empty indicators with the defaults
func (i Indicators) WithDefaults() Indicators {
	if i.Online == "" {
		i.Online = DefaultOnlineIndicator
	}
	if i.Offline == "" {
		i.Offline = DefaultOfflineIndicator
	}
	return i
}

// Validate checks both indicators are non-empty and within MaxIndicatorLength characters
func (i Indicators) Validate() error {
	var errs []error
	for name, value := range map[string]string{"online": i.Online, "offline": i.Offline} {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s indicator cannot be empty", name))
			continue
		}
		if utf8.RuneCountInString(value) > MaxIndicatorLength {
			errs = append(errs, fmt.Errorf("%s indicator must be at most %d characters", name, MaxIndicatorLength))
		}
	}
	return errors.Join(errs...)
}

// MonitoredServer is one server a guild watches, together with the
// channels that display its status
type MonitoredServer struct {
	// Address is the host[:port] of the server
	Address string `yaml:"address" json:"address"`

	// Platform is the game edition, java if empty
	Platform Platform `yaml:"platform,omitempty" json:"platform"`

	// Nickname is an optional alias, unique within the guild
	Nickname string `yaml:"nickname,omitempty" json:"nickname,omitempty"`

	// Default marks the server used when commands do not name one
	Default bool `yaml:"default,omitempty" json:"default"`

	OnlineIndicator  string `yaml:"onlineIndicator,omitempty" json:"onlineIndicator"`
	OfflineIndicator string `yaml:"offlineIndicator,omitempty" json:"offlineIndicator"`

	// StatusChannelID is the display surface showing "Status: ..."
	StatusChannelID string `yaml:"statusChannelId" json:"statusChannelId"`

	// PlayersChannelID is the display surface showing "Players: ..."
	PlayersChannelID string `yaml:"playersChannelId" json:"playersChannelId"`

	// CategoryID is the container holding both channels
	CategoryID string `yaml:"categoryId" json:"categoryId"`
}

// GetPlatform returns the platform, defaulting to java
func (s *MonitoredServer) GetPlatform() Platform {
	if s.Platform == "" {
		return PlatformJava
	}
	return s.Platform
}

// Indicators returns the server's indicators with defaults applied
func (s *MonitoredServer) Indicators() Indicators {
	return Indicators{Online: s.OnlineIndicator, Offline: s.OfflineIndicator}.WithDefaults()
}

// DisplayName returns the nickname if set, otherwise the address
func (s *MonitoredServer) DisplayName() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Address
}

// Matches reports whether query names this server by nickname or address, ignoring case
func (s *MonitoredServer) Matches(query string) bool {
	if query == "" {
		return false
	}
	return strings.EqualFold(s.Nickname, query) || strings.EqualFold(s.Address, query)
}

// ValidateGuildServers checks the invariants a guild's server list must hold:
// unique addresses, unique nicknames disjoint from every address, and exactly
// one default whenever the list is non-empty.
func ValidateGuildServers(servers []MonitoredServer) error {
	if len(servers) == 0 {
		return nil
	}

	addresses := make(map[string]bool, len(servers))
	for _, s := range servers {
		key := strings.ToLower(s.Address)
		if addresses[key] {
			return fmt.Errorf("duplicate server address %q", s.Address)
		}
		addresses[key] = true
	}

	nicknames := make(map[string]bool, len(servers))
	defaults := 0
	for _, s := range servers {
		if s.Default {
			defaults++
		}
		if s.Nickname == "" {
			continue
		}
		key := strings.ToLower(s.Nickname)
		if nicknames[key] {
			return fmt.Errorf("duplicate server nickname %q", s.Nickname)
		}
		if addresses[key] {
			return fmt.Errorf("nickname %q collides with a monitored address", s.Nickname)
		}
		nicknames[key] = true
	}

	if defaults != 1 {
		return fmt.Errorf("expected exactly one default server, found %d", defaults)
	}
	return nil
}

// Priority is a hint passed to external services about how urgently a
// request needs fresh data
type Priority string

const (
	// PriorityHigh is used for interactive checks; the status provider reuses
	// cached results only briefly
	PriorityHigh Priority = "high_priority"

	// PriorityLow is used by the periodic background pass; the status provider
	// may serve longer-lived cached results
	PriorityLow Priority = "low_priority"
)

// CacheTier returns the status provider cache tier for the priority
func (p Priority) CacheTier() string {
	if p == PriorityHigh {
		return "sm"
	}
	return "lg"
}
