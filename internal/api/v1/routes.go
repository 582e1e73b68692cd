// Package v1 provides the REST handlers of the statusbot API.
package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mcstatusbot/statusbot/internal/api/common"
	"github.com/mcstatusbot/statusbot/internal/models"
	"github.com/mcstatusbot/statusbot/internal/status"
	"github.com/mcstatusbot/statusbot/internal/store"
	"github.com/mcstatusbot/statusbot/internal/sync/coordinator"
	"github.com/mcstatusbot/statusbot/internal/versions"
)

// StatusSource exposes the scheduling state of the sync coordinator
type StatusSource interface {
	Status() coordinator.PassStatus
}

// StatusResponse is the JSON form of a status snapshot
type StatusResponse struct {
	Address       string   `json:"address"`
	Platform      string   `json:"platform"`
	Online        bool     `json:"online"`
	PlayersOnline int      `json:"playersOnline"`
	PlayersMax    int      `json:"playersMax"`
	MOTD          string   `json:"motd,omitempty"`
	Version       string   `json:"version,omitempty"`
	LatencyMillis int64    `json:"latencyMs,omitempty"`
	SamplePlayers []string `json:"samplePlayers,omitempty"`
}

// ServersResponse lists the servers a guild monitors
type ServersResponse struct {
	GuildID string                   `json:"guildId"`
	Servers []models.MonitoredServer `json:"servers"`
}

// SyncStatusResponse is the JSON form of the coordinator state
type SyncStatusResponse struct {
	Running        bool       `json:"running"`
	Interval       string     `json:"interval"`
	CurrentPassID  string     `json:"currentPassId,omitempty"`
	LastPassID     string     `json:"lastPassId,omitempty"`
	LastStarted    *time.Time `json:"lastStarted,omitempty"`
	LastFinished   *time.Time `json:"lastFinished,omitempty"`
	LastDuration   string     `json:"lastDuration,omitempty"`
	LastGuildCount int        `json:"lastGuildCount"`
	PassesRun      int64      `json:"passesRun"`
	PassesSkipped  int64      `json:"passesSkipped"`
}

// Routes holds the dependencies of the v1 handlers
type Routes struct {
	status status.Client
	store  store.Store
	sync   StatusSource
}

// NewRoutes creates a new Routes instance. sync may be nil when the
// coordinator is not running in this process.
func NewRoutes(client status.Client, st store.Store, sync StatusSource) *Routes {
	return &Routes{
		status: client,
		store:  st,
		sync:   sync,
	}
}

// Router creates the v1 router
func Router(client status.Client, st store.Store, sync StatusSource) http.Handler {
	routes := NewRoutes(client, st, sync)

	r := chi.NewRouter()
	r.Get("/status", routes.getStatus)
	r.Route("/guilds/{guildID}", func(r chi.Router) {
		r.Get("/servers", routes.listServers)
		r.Get("/status", routes.getGuildStatus)
	})
	r.Get("/sync/status", routes.getSyncStatus)

	return r
}

// getStatus handles GET /v1/status?address=&platform=
func (rr *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		common.WriteErrorResponse(w, "address is required", http.StatusBadRequest)
		return
	}

	platform, err := models.ParsePlatform(r.URL.Query().Get("platform"))
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	rr.writeStatus(w, r, address, platform)
}

// listServers handles GET /v1/guilds/{guildID}/servers
func (rr *Routes) listServers(w http.ResponseWriter, r *http.Request) {
	guildID, err := common.IDParam(r, "guildID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	servers, err := rr.store.GetServers(r.Context(), guildID)
	if err != nil {
		slog.Error("Failed to read monitored servers", "guild_id", guildID, "error", err)
		common.WriteErrorResponse(w, "Failed to read monitored servers", http.StatusInternalServerError)
		return
	}
	if servers == nil {
		servers = []models.MonitoredServer{}
	}

	common.WriteJSONResponse(w, ServersResponse{GuildID: guildID, Servers: servers}, http.StatusOK)
}

// getGuildStatus handles GET /v1/guilds/{guildID}/status?server=
//
// The server query matches a nickname or address; without it the guild's
// default server is used.
func (rr *Routes) getGuildStatus(w http.ResponseWriter, r *http.Request) {
	guildID, err := common.IDParam(r, "guildID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var server *models.MonitoredServer
	if query := strings.TrimSpace(r.URL.Query().Get("server")); query != "" {
		server, err = rr.store.FindServer(r.Context(), guildID, query)
	} else {
		server, err = rr.store.DefaultServer(r.Context(), guildID)
	}
	switch {
	case errors.Is(err, store.ErrServerNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Failed to resolve monitored server", "guild_id", guildID, "error", err)
		common.WriteErrorResponse(w, "Failed to resolve monitored server", http.StatusInternalServerError)
		return
	}

	rr.writeStatus(w, r, server.Address, server.GetPlatform())
}

// writeStatus fetches a status at high priority and writes it
func (rr *Routes) writeStatus(w http.ResponseWriter, r *http.Request, address string, platform models.Platform) {
	snap, err := rr.status.Fetch(r.Context(), address, platform, models.PriorityHigh)
	if err != nil {
		var invalid *status.InvalidAddressError
		switch {
		case errors.As(err, &invalid):
			common.WriteReasonResponse(w, "invalid server address", string(invalid.Reason), http.StatusBadRequest)
		case errors.Is(err, status.ErrInvalidAddress):
			common.WriteErrorResponse(w, "invalid server address", http.StatusBadRequest)
		default:
			slog.Warn("Failed to fetch server status", "address", address, "error", err)
			common.WriteErrorResponse(w, "status provider unavailable", http.StatusBadGateway)
		}
		return
	}

	resp := StatusResponse{
		Address:  address,
		Platform: string(platform),
		Online:   snap.Online,
	}
	if snap.Online {
		resp.PlayersOnline = snap.PlayersOnline
		resp.PlayersMax = snap.PlayersMax
		resp.MOTD = snap.MOTD
		resp.Version = snap.VersionName
		resp.LatencyMillis = snap.LatencyMillis()
		resp.SamplePlayers = snap.SamplePlayers
	}

	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// getSyncStatus handles GET /v1/sync/status
func (rr *Routes) getSyncStatus(w http.ResponseWriter, _ *http.Request) {
	if rr.sync == nil {
		common.WriteErrorResponse(w, "sync coordinator is not running", http.StatusServiceUnavailable)
		return
	}

	st := rr.sync.Status()
	resp := SyncStatusResponse{
		Running:        st.Running,
		Interval:       st.Interval.String(),
		CurrentPassID:  st.CurrentPassID,
		LastPassID:     st.LastPassID,
		LastStarted:    st.LastStarted,
		LastFinished:   st.LastFinished,
		LastGuildCount: st.LastGuildCount,
		PassesRun:      st.PassesRun,
		PassesSkipped:  st.PassesSkipped,
	}
	if st.LastFinished != nil {
		resp.LastDuration = st.LastDuration.String()
	}

	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(st store.Store) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(st))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

// readinessHandler reports ready once the record store answers
func readinessHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			common.WriteErrorResponse(w, "record store not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
