// Package delegate reports the number of guilds the bot serves to a badge
// service.
package delegate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/mcstatusbot/statusbot/internal/config"
	"github.com/mcstatusbot/statusbot/internal/display"
	"github.com/mcstatusbot/statusbot/internal/httpclient"
)

// countPath is appended to the delegate URL
const countPath = "/count/set"

type countReport struct {
	Count int    `json:"count"`
	Token string `json:"token"`
}

// Reporter periodically posts the guild count
type Reporter struct {
	url      string
	token    string
	interval time.Duration
	platform display.Platform
	client   httpclient.Client
	clock    clock.WithTicker

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option configures the reporter
type Option func(*Reporter)

// WithClock replaces the real clock driving the ticker
func WithClock(clk clock.WithTicker) Option {
	return func(r *Reporter) {
		r.clock = clk
	}
}

// New creates a reporter. Callers should check Config.DelegateEnabled first.
func New(cfg *config.DelegateConfig, platform display.Platform, client httpclient.Client, opts ...Option) *Reporter {
	r := &Reporter{
		url:      strings.TrimSuffix(cfg.URL, "/") + countPath,
		token:    cfg.Token,
		interval: cfg.GetInterval(),
		platform: platform,
		client:   client,
		clock:    clock.RealClock{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start reports once, then on every interval until ctx is cancelled or Stop is called
func (r *Reporter) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelFunc = cancel
	r.mu.Unlock()
	defer close(r.done)

	slog.Info("Starting delegate reporter", "url", r.url, "interval", r.interval)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.reportAndLog(ctx)
	for {
		select {
		case <-ticker.C():
			r.reportAndLog(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop cancels the reporter and waits for it to exit
func (r *Reporter) Stop() error {
	r.mu.Lock()
	cancel := r.cancelFunc
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-r.done
	}
	return nil
}

func (r *Reporter) reportAndLog(ctx context.Context) {
	count, err := r.Report(ctx)
	if err != nil {
		if httpclient.IsTemporary(err) {
			slog.Warn("Delegate unavailable, will retry on next interval", "error", err)
			return
		}
		slog.Error("Failed to report guild count", "error", err)
		return
	}
	slog.Debug("Reported guild count", "count", count)
}

// Report posts the current guild count once and returns it
func (r *Reporter) Report(ctx context.Context) (int, error) {
	guilds, err := r.platform.Guilds(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list guilds: %w", err)
	}

	body, err := json.Marshal(countReport{Count: len(guilds), Token: r.token})
	if err != nil {
		return 0, fmt.Errorf("failed to encode report: %w", err)
	}

	resp, err := r.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    r.url,
		Body:   body,
	})
	if err != nil {
		return 0, err
	}
	if !resp.IsSuccess() {
		return 0, httpclient.NewHTTPError(resp.StatusCode, r.url, strings.TrimSpace(string(resp.Body)))
	}
	return len(guilds), nil
}
