package status

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Snapshot is the status of a server at the moment it was fetched
type Snapshot struct {
	Online        bool          `json:"online"`
	PlayersOnline int           `json:"playersOnline,omitempty"`
	PlayersMax    int           `json:"playersMax,omitempty"`
	MOTD          string        `json:"motd,omitempty"`
	VersionName   string        `json:"version,omitempty"`
	Latency       time.Duration `json:"-"`
	SamplePlayers []string      `json:"samplePlayers,omitempty"`
	Icon          []byte        `json:"-"`
}

// LatencyMillis returns the latency rounded to whole milliseconds
func (s *Snapshot) LatencyMillis() int64 {
	return s.Latency.Round(time.Millisecond).Milliseconds()
}

// providerResponse is the body returned by the status provider
type providerResponse struct {
	Online  *bool           `json:"online"`
	Players *playersPayload `json:"players,omitempty"`
	MOTD    json.RawMessage `json:"motd,omitempty"`
	Version *struct {
		Name string `json:"name"`
	} `json:"version,omitempty"`
	Icon    string   `json:"icon,omitempty"`
	Latency *float64 `json:"latency,omitempty"`
}

type playersPayload struct {
	Online int               `json:"online"`
	Max    int               `json:"max"`
	Sample []json.RawMessage `json:"sample,omitempty"`
}

// toSnapshot converts a decoded response. measured is used when the provider
// did not report a latency of its own.
func (r *providerResponse) toSnapshot(measured time.Duration) *Snapshot {
	if r.Online == nil || !*r.Online {
		return &Snapshot{Online: false}
	}

	snap := &Snapshot{
		Online:  true,
		MOTD:    decodeMOTD(r.MOTD),
		Latency: measured,
		Icon:    decodeIcon(r.Icon),
	}
	if r.Players != nil {
		snap.PlayersOnline = r.Players.Online
		snap.PlayersMax = r.Players.Max
		snap.SamplePlayers = decodeSample(r.Players.Sample)
	}
	if r.Version != nil {
		snap.VersionName = r.Version.Name
	}
	if r.Latency != nil && *r.Latency >= 0 {
		snap.Latency = time.Duration(*r.Latency * float64(time.Millisecond))
	}
	return snap
}

// decodeMOTD accepts either a plain string or an object carrying a "clean" rendering
func decodeMOTD(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var obj struct {
		Clean string `json:"clean"`
		Raw   string `json:"raw"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Clean != "" {
			return strings.TrimSpace(obj.Clean)
		}
		return strings.TrimSpace(obj.Raw)
	}
	return ""
}

// decodeSample accepts entries that are plain names or objects with a "name" field
func decodeSample(raw []json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil && obj.Name != "" {
			names = append(names, obj.Name)
		}
	}
	return names
}

// decodeIcon decodes a base64 data URI. Malformed icons are dropped.
func decodeIcon(uri string) []byte {
	if uri == "" {
		return nil
	}
	data := uri
	if _, after, found := strings.Cut(uri, ","); found {
		data = after
	}
	icon, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil
	}
	return icon
}
