// Package labels computes the text and visibility a server's display surfaces
// should show for a given status.
package labels

import (
	"fmt"

	"github.com/mcstatusbot/statusbot/internal/models"
	"github.com/mcstatusbot/statusbot/internal/status"
)

const (
	// StatusPrefix starts every status surface label
	StatusPrefix = "Status: "

	// PlayersPrefix starts every players surface label
	PlayersPrefix = "Players: "

	// ErrorStatus is the status label shown when the status could not be determined
	ErrorStatus = StatusPrefix + "Error"

	// InvalidAddressText is the players label shown for an address that failed validation
	InvalidAddressText = "Invalid Address"

	// MaxNameLength is the longest channel name the display platform accepts
	MaxNameLength = 100
)

// Visibility is the desired visibility of the players surface
type Visibility int

const (
	// VisibilityUnchanged leaves the current visibility alone
	VisibilityUnchanged Visibility = iota

	// VisibilityShown makes the players surface visible to everyone
	VisibilityShown

	// VisibilityHidden hides the players surface from everyone
	VisibilityHidden
)

// String returns the visibility name
func (v Visibility) String() string {
	switch v {
	case VisibilityShown:
		return "shown"
	case VisibilityHidden:
		return "hidden"
	default:
		return "unchanged"
	}
}

// Target is what the two surfaces of a server should display
type Target struct {
	StatusLabel  string
	PlayersLabel string
	Visibility   Visibility
}

// Reconcile derives the target labels. A non-empty errText takes precedence
// over the snapshot, which may then be nil. Labels are not truncated.
func Reconcile(snap *status.Snapshot, errText string, indicators models.Indicators) Target {
	indicators = indicators.WithDefaults()

	if errText != "" || snap == nil {
		return Target{
			StatusLabel:  ErrorStatus,
			PlayersLabel: errText,
			Visibility:   VisibilityUnchanged,
		}
	}

	if snap.Online {
		return Target{
			StatusLabel:  StatusPrefix + indicators.Online,
			PlayersLabel: fmt.Sprintf("%s%d/%d", PlayersPrefix, snap.PlayersOnline, snap.PlayersMax),
			Visibility:   VisibilityShown,
		}
	}

	return Target{
		StatusLabel:  StatusPrefix + indicators.Offline,
		PlayersLabel: PlayersPrefix + "0",
		Visibility:   VisibilityHidden,
	}
}

// Truncate shortens name to at most limit runes
func Truncate(name string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := 0
	for i := range name {
		if runes == limit {
			return name[:i]
		}
		runes++
	}
	return name
}

// Truncated returns the target with both labels cut to MaxNameLength runes
func (t Target) Truncated() Target {
	t.StatusLabel = Truncate(t.StatusLabel, MaxNameLength)
	t.PlayersLabel = Truncate(t.PlayersLabel, MaxNameLength)
	return t
}
