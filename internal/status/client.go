package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/mcstatusbot/statusbot/internal/httpclient"
	"github.com/mcstatusbot/statusbot/internal/models"
	"github.com/mcstatusbot/statusbot/internal/otel"
	"github.com/mcstatusbot/statusbot/internal/validators"
)

// DefaultTimeout bounds a single status request
const DefaultTimeout = 10 * time.Second

// Client fetches server status
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/mcstatusbot/statusbot/internal/status Client
type Client interface {
	// Fetch returns the status of the server at address. The address is
	// validated first; an invalid address returns an error matching
	// ErrInvalidAddress without any network call. Everything else that goes
	// wrong is returned as a *TransientError.
	Fetch(ctx context.Context, address string, platform models.Platform, priority models.Priority) (*Snapshot, error)
}

// providerClient talks to the status provider over HTTP
type providerClient struct {
	endpoint     string
	httpClient   httpclient.Client
	clock        clock.PassiveClock
	tracer       trace.Tracer
	allowPrivate bool
}

// Option configures the client
type Option func(*providerClient)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c httpclient.Client) Option {
	return func(p *providerClient) {
		p.httpClient = c
	}
}

// WithClock sets the clock used to measure latency
func WithClock(c clock.PassiveClock) Option {
	return func(p *providerClient) {
		p.clock = c
	}
}

// WithAllowPrivate lets private and non-routable IP addresses through host validation
func WithAllowPrivate(allow bool) Option {
	return func(p *providerClient) {
		p.allowPrivate = allow
	}
}

// WithTracer sets the tracer used for fetch spans
func WithTracer(t trace.Tracer) Option {
	return func(p *providerClient) {
		p.tracer = t
	}
}

// NewClient creates a Client for the provider at endpoint
func NewClient(endpoint string, opts ...Option) Client {
	p := &providerClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		clock:    clock.RealClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = httpclient.NewDefaultClient(DefaultTimeout)
	}
	return p
}

// Fetch implements Client
func (p *providerClient) Fetch(
	ctx context.Context,
	address string,
	platform models.Platform,
	priority models.Priority,
) (*Snapshot, error) {
	ctx, span := otel.StartSpan(ctx, p.tracer, "status.fetch",
		trace.WithAttributes(otel.ServerAttributes("",
			models.MonitoredServer{Address: address, Platform: platform})...),
		trace.WithAttributes(otel.AttrPriority.String(string(priority))),
	)
	defer span.End()

	result := validators.ValidateHost(address, validators.WithAllowPrivate(p.allowPrivate))
	if !result.Valid {
		err := &InvalidAddressError{Address: address, Reason: result.Reason}
		otel.RecordError(span, err)
		return nil, err
	}

	reqURL := p.statusURL(address, platform, priority)

	start := p.clock.Now()
	resp, err := p.httpClient.Do(ctx, &httpclient.Request{Method: http.MethodGet, URL: reqURL})
	elapsed := p.clock.Since(start)
	if err != nil {
		return nil, p.transient(span, address, err)
	}
	if !resp.IsSuccess() {
		return nil, p.transient(span, address,
			httpclient.NewHTTPError(resp.StatusCode, reqURL, http.StatusText(resp.StatusCode)))
	}

	snap, err := decodeResponse(resp.Body, elapsed)
	if err != nil {
		return nil, p.transient(span, address, err)
	}

	span.SetAttributes(otel.AttrOnline.Bool(snap.Online))
	slog.Debug("Fetched server status",
		"address", address,
		"online", snap.Online,
		"latency_ms", snap.LatencyMillis())
	return snap, nil
}

func (p *providerClient) transient(span trace.Span, address string, err error) error {
	terr := &TransientError{Address: address, Err: err}
	otel.RecordError(span, terr)
	span.SetAttributes(attribute.Bool("status.transient", true))
	return terr
}

// statusURL builds {endpoint}/status/{tier}/{host}[/{port}][?platform=...]
func (p *providerClient) statusURL(address string, platform models.Platform, priority models.Priority) string {
	host, port, hasPort := strings.Cut(address, ":")

	var b strings.Builder
	b.WriteString(p.endpoint)
	b.WriteString("/status/")
	b.WriteString(priority.CacheTier())
	b.WriteByte('/')
	b.WriteString(url.PathEscape(validators.NormalizeHost(host)))
	if hasPort {
		b.WriteByte('/')
		b.WriteString(port)
	}

	if platform != "" && platform != models.PlatformJava {
		q := url.Values{}
		q.Set("platform", string(platform))
		b.WriteByte('?')
		b.WriteString(q.Encode())
	}
	return b.String()
}

func decodeResponse(body []byte, measured time.Duration) (*Snapshot, error) {
	var raw providerResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	if raw.Online == nil {
		return nil, errors.New("status response is missing the online field")
	}
	return raw.toSnapshot(measured), nil
}
