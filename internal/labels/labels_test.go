package labels

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/mcstatusbot/statusbot/internal/models"
	"github.com/mcstatusbot/statusbot/internal/status"
)

func TestReconcile(t *testing.T) {
	t.Parallel()

	custom := models.Indicators{Online: "Up", Offline: "Down"}

	tests := []struct {
		name       string
		snap       *status.Snapshot
		errText    string
		indicators models.Indicators
		want       Target
	}{
		{
			name:       "online with default indicators",
			snap:       &status.Snapshot{Online: true, PlayersOnline: 3, PlayersMax: 20},
			indicators: models.DefaultIndicators(),
			want:       Target{StatusLabel: "Status: Online", PlayersLabel: "Players: 3/20", Visibility: VisibilityShown},
		},
		{
			name:       "online with custom indicators",
			snap:       &status.Snapshot{Online: true, PlayersOnline: 0, PlayersMax: 10},
			indicators: custom,
			want:       Target{StatusLabel: "Status: Up", PlayersLabel: "Players: 0/10", Visibility: VisibilityShown},
		},
		{
			name:       "offline hides the players surface",
			snap:       &status.Snapshot{Online: false},
			indicators: custom,
			want:       Target{StatusLabel: "Status: Down", PlayersLabel: "Players: 0", Visibility: VisibilityHidden},
		},
		{
			name:       "empty indicators fall back to defaults",
			snap:       &status.Snapshot{Online: false},
			indicators: models.Indicators{},
			want:       Target{StatusLabel: "Status: Offline", PlayersLabel: "Players: 0", Visibility: VisibilityHidden},
		},
		{
			name:       "error text wins over snapshot",
			snap:       &status.Snapshot{Online: true, PlayersOnline: 1, PlayersMax: 2},
			errText:    InvalidAddressText,
			indicators: custom,
			want:       Target{StatusLabel: "Status: Error", PlayersLabel: "Invalid Address", Visibility: VisibilityUnchanged},
		},
		{
			name:       "error without snapshot",
			errText:    InvalidAddressText,
			indicators: custom,
			want:       Target{StatusLabel: "Status: Error", PlayersLabel: "Invalid Address", Visibility: VisibilityUnchanged},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Reconcile(tt.snap, tt.errText, tt.indicators))
		})
	}
}

func TestReconcile_DoesNotTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 150)
	target := Reconcile(nil, long, models.DefaultIndicators())
	assert.Equal(t, long, target.PlayersLabel)

	truncated := target.Truncated()
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(truncated.PlayersLabel))
	assert.Equal(t, ErrorStatus, truncated.StatusLabel)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"ascii over limit", "abcdef", 5, "abcde"},
		{"multibyte runes are counted once", "ééééé é", 5, "ééééé"},
		{"zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestVisibility_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unchanged", VisibilityUnchanged.String())
	assert.Equal(t, "shown", VisibilityShown.String())
	assert.Equal(t, "hidden", VisibilityHidden.String())
}
