// Package discord implements display.Platform on top of the Discord REST API.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"k8s.io/utils/ptr"

	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/httpclient"
	"github.com/mcstatusbot/statusbot/internal/models"
)

const (
	// DefaultBaseURL is the Discord REST API root
	DefaultBaseURL = "https://discord.com/api/v10"

	// DefaultRequestsPerSecond matches the global rate limit of a bot token
	DefaultRequestsPerSecond = 50

	// guildPageSize is the largest page the guild listing returns
	guildPageSize = 200

	// auditReasonHeader carries the mutation priority
	auditReasonHeader = "X-Audit-Log-Reason"
)

// Permission bits used for the @everyone overwrite on the players channel
const (
	permViewChannel int64 = 1 << 10
	permConnect     int64 = 1 << 20
)

// Error codes that mean the bot is not allowed to touch the channel
const (
	codeMissingAccess      = 50001
	codeMissingPermissions = 50013
)

// Client talks to the Discord REST API
type Client struct {
	baseURL    string
	token      string
	httpClient httpclient.Client
	limiter    *rate.Limiter
}

var _ display.Platform = (*Client)(nil)

// Option configures the client
type Option func(*Client)

// WithBaseURL overrides the API root
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(h httpclient.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithRateLimit sets the number of requests per second the client may issue.
// A non-positive value disables client side limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// NewClient creates a client authenticated with a bot token
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.NewDefaultClient(15 * time.Second)
	}
	return c
}

type guildPayload struct {
	ID string `json:"id"`
}

type channelPayload struct {
	ID                   string                    `json:"id"`
	Name                 string                    `json:"name"`
	ParentID             string                    `json:"parent_id"`
	PermissionOverwrites []channelOverwritePayload `json:"permission_overwrites"`
}

type channelOverwritePayload struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type overwritePayload struct {
	Type  int    `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

// Guilds implements display.Platform
func (c *Client) Guilds(ctx context.Context) ([]string, error) {
	var ids []string
	after := ""
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(guildPageSize))
		if after != "" {
			q.Set("after", after)
		}

		resp, err := c.do(ctx, http.MethodGet, "/users/@me/guilds?"+q.Encode(), nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list guilds: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("failed to list guilds: %w", responseError(resp, "/users/@me/guilds"))
		}

		var page []guildPayload
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode guild list: %w", err)
		}
		for _, g := range page {
			ids = append(ids, g.ID)
		}
		if len(page) < guildPageSize {
			return ids, nil
		}
		after = page[len(page)-1].ID
	}
}

// Surfaces implements display.Platform
func (c *Client) Surfaces(ctx context.Context, guildID string) (display.Snapshot, error) {
	path := "/guilds/" + url.PathEscape(guildID) + "/channels"
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of guild %s: %w", guildID, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to list channels of guild %s: %w", guildID, responseError(resp, path))
	}

	var channels []channelPayload
	if err := json.Unmarshal(resp.Body, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels of guild %s: %w", guildID, err)
	}

	snap := make(display.Snapshot, len(channels))
	for _, ch := range channels {
		snap[ch.ID] = display.Surface{
			ID:              ch.ID,
			Name:            ch.Name,
			ParentID:        ch.ParentID,
			EveryoneVisible: everyoneVisible(guildID, ch.PermissionOverwrites),
		}
	}
	return snap, nil
}

// everyoneVisible reads the ViewChannel bit of the @everyone role overwrite.
// Deny wins over allow; without an overwrite setting the bit it returns nil.
func everyoneVisible(guildID string, overwrites []channelOverwritePayload) *bool {
	for _, o := range overwrites {
		if o.ID != guildID || o.Type != 0 {
			continue
		}
		allow, _ := strconv.ParseInt(o.Allow, 10, 64)
		deny, _ := strconv.ParseInt(o.Deny, 10, 64)
		switch {
		case deny&permViewChannel != 0:
			return ptr.To(false)
		case allow&permViewChannel != 0:
			return ptr.To(true)
		}
		return nil
	}
	return nil
}

// Rename implements display.Platform
func (c *Client) Rename(ctx context.Context, surfaceID, name string, priority models.Priority) error {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return &display.MutationError{Kind: display.KindUnknown, SurfaceID: surfaceID, Err: err}
	}

	header := http.Header{}
	if priority != "" {
		header.Set(auditReasonHeader, string(priority))
	}

	return c.mutate(ctx, http.MethodPatch, "/channels/"+url.PathEscape(surfaceID), surfaceID, body, header)
}

// SetEveryoneVisibility implements display.Platform. The @everyone role shares
// the guild's ID. Connecting stays denied either way since status channels
// are not meant to be joined.
func (c *Client) SetEveryoneVisibility(ctx context.Context, guildID, surfaceID string, visible bool) error {
	overwrite := overwritePayload{Type: 0}
	if visible {
		overwrite.Allow = strconv.FormatInt(permViewChannel, 10)
		overwrite.Deny = strconv.FormatInt(permConnect, 10)
	} else {
		overwrite.Allow = "0"
		overwrite.Deny = strconv.FormatInt(permViewChannel|permConnect, 10)
	}

	body, err := json.Marshal(overwrite)
	if err != nil {
		return &display.MutationError{Kind: display.KindUnknown, SurfaceID: surfaceID, Err: err}
	}

	path := "/channels/" + url.PathEscape(surfaceID) + "/permissions/" + url.PathEscape(guildID)
	return c.mutate(ctx, http.MethodPut, path, surfaceID, body, nil)
}

// mutate issues a write and classifies any failure into a *display.MutationError
func (c *Client) mutate(ctx context.Context, method, path, surfaceID string, body []byte, header http.Header) error {
	resp, err := c.do(ctx, method, path, body, header)
	if err != nil {
		return &display.MutationError{Kind: display.KindUnknown, SurfaceID: surfaceID, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}
	return &display.MutationError{
		Kind:      classifyResponse(resp),
		SurfaceID: surfaceID,
		Err:       responseError(resp, path),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, header http.Header) (*httpclient.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if header == nil {
		header = http.Header{}
	}
	header.Set("Authorization", "Bot "+c.token)

	resp, err := c.httpClient.Do(ctx, &httpclient.Request{
		Method: method,
		URL:    c.baseURL + path,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		slog.Debug("Discord rate limit hit",
			"path", path,
			"retry_after", resp.Header.Get("Retry-After"),
			"global", resp.Header.Get("X-RateLimit-Global"))
	}
	return resp, nil
}

func classifyResponse(resp *httpclient.Response) display.Kind {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return display.KindRateLimited
	case http.StatusForbidden:
		return display.KindPermissionDenied
	}

	var payload errorPayload
	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		switch payload.Code {
		case codeMissingAccess, codeMissingPermissions:
			return display.KindPermissionDenied
		}
	}
	return display.KindUnknown
}

func responseError(resp *httpclient.Response, path string) error {
	message := http.StatusText(resp.StatusCode)
	var payload errorPayload
	if err := json.Unmarshal(resp.Body, &payload); err == nil && payload.Message != "" {
		message = fmt.Sprintf("%s (code %d)", payload.Message, payload.Code)
	}
	return httpclient.NewHTTPError(resp.StatusCode, path, message)
}

