// Package theoddsapi is a typed client for The Odds API v4. It covers the
// sports, events, odds, scores, participants, and historical-snapshot
// endpoints, returning validated domain objects from pkg/models.
//
// The client is stateless after construction and safe for concurrent use.
// Every call performs exactly one transport round trip; there is no caching,
// retrying, or batching in this layer.
package theoddsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/XavierBriggs/Iris/pkg/contracts"
	"github.com/XavierBriggs/Iris/pkg/models"
)

const (
	defaultBaseURL   = "https://api.the-odds-api.com"
	apiVersion       = "v4"
	defaultUserAgent = "Iris/1.0 (Fortuna Odds SDK)"
	defaultTimeout   = 10 * time.Second
)

// Client is the facade over The Odds API. The only mutable state is the
// last-seen quota counters, guarded by quotaMu.
type Client struct {
	apiKey    string
	transport contracts.Transport

	quota   models.Quota
	quotaMu sync.RWMutex
}

type clientConfig struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	transport contracts.Transport
}

// Option customizes a Client at construction.
type Option func(*clientConfig)

// WithBaseURL overrides the API root, e.g. for a test server.
func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

// WithHTTPTimeout sets the default transport's per-request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = timeout }
}

// WithUserAgent overrides the User-Agent header on the default transport.
func WithUserAgent(userAgent string) Option {
	return func(cfg *clientConfig) { cfg.userAgent = userAgent }
}

// WithTransport replaces the default net/http transport entirely. BaseURL,
// timeout, and user-agent options are then the transport's concern.
func WithTransport(t contracts.Transport) Option {
	return func(cfg *clientConfig) { cfg.transport = t }
}

// NewClient builds a client for the given API key. The key is required; the
// surrounding bootstrap owns any environment fallback.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{Reason: "API key is required"}
	}

	cfg := clientConfig{
		baseURL:   defaultBaseURL,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := cfg.transport
	if transport == nil {
		transport = newHTTPTransport(cfg.baseURL, cfg.timeout, cfg.userAgent)
	}

	return &Client{apiKey: apiKey, transport: transport}, nil
}

// Sports lists the sports the provider covers. opts.All includes
// out-of-season sports.
func (c *Client) Sports(ctx context.Context, opts *SportsOptions) ([]models.Sport, error) {
	q := c.newQuery()
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/sports", apiVersion), q)
	if err != nil {
		return nil, err
	}
	return parseSports(body)
}

// Events lists upcoming (and live) events for a sport, without odds.
func (c *Client) Events(ctx context.Context, sport string, opts *EventsOptions) ([]models.Event, error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	q := c.newQuery()
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/sports/%s/events", apiVersion, url.PathEscape(sport)), q)
	if err != nil {
		return nil, err
	}
	return parseEvents(body)
}

// Odds retrieves events with bookmaker quotes for a sport. sport may also be
// the virtual key "upcoming".
func (c *Client) Odds(ctx context.Context, sport string, opts *OddsOptions) ([]models.Event, error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	q := c.newQuery()
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/sports/%s/odds", apiVersion, url.PathEscape(sport)), q)
	if err != nil {
		return nil, err
	}
	return parseEvents(body)
}

// EventOdds retrieves quotes for one event. The event endpoint also serves
// markets beyond the featured set (player props and alternates).
func (c *Client) EventOdds(ctx context.Context, sport, eventID string, opts *OddsOptions) (*models.Event, error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, &ConfigurationError{Reason: "event ID is required"}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	q := c.newQuery()
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/sports/%s/events/%s/odds", apiVersion, url.PathEscape(sport), url.PathEscape(eventID)), q)
	if err != nil {
		return nil, err
	}
	evt, err := parseEvent(body)
	if err != nil {
		return nil, err
	}
	return &evt, nil
}

// Participants lists the teams (or players, for individual sports) of a sport.
func (c *Client) Participants(ctx context.Context, sport string) ([]models.Participant, error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, fmt.Sprintf("/%s/sports/%s/participants", apiVersion, url.PathEscape(sport)), c.newQuery())
	if err != nil {
		return nil, err
	}
	return parseParticipants(body)
}

// Scores retrieves live and recent games with their score state.
func (c *Client) Scores(ctx context.Context, sport string, opts *ScoresOptions) ([]models.ScoredGame, error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}

	q := c.newQuery()
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/sports/%s/scores", apiVersion, url.PathEscape(sport)), q)
	if err != nil {
		return nil, err
	}
	return parseScoredGames(body)
}

// HistoricalOdds retrieves the odds snapshot closest at or before date.
func (c *Client) HistoricalOdds(ctx context.Context, sport string, date time.Time, opts *OddsOptions) (*models.Snapshot[[]models.Event], error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}
	if err := requireDate(date); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	q := c.newQuery()
	q.add("date", date.UTC().Format(timeLayout))
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/historical/sports/%s/odds", apiVersion, url.PathEscape(sport)), q)
	if err != nil {
		return nil, err
	}
	return parseSnapshot(body, parseEvents)
}

// HistoricalEvents retrieves the event-list snapshot closest at or before date.
func (c *Client) HistoricalEvents(ctx context.Context, sport string, date time.Time, opts *EventsOptions) (*models.Snapshot[[]models.Event], error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}
	if err := requireDate(date); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	q := c.newQuery()
	q.add("date", date.UTC().Format(timeLayout))
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/historical/sports/%s/events", apiVersion, url.PathEscape(sport)), q)
	if err != nil {
		return nil, err
	}
	return parseSnapshot(body, parseEvents)
}

// HistoricalEventOdds retrieves the snapshot of a single event's quotes
// closest at or before date.
func (c *Client) HistoricalEventOdds(ctx context.Context, sport, eventID string, date time.Time, opts *OddsOptions) (*models.Snapshot[models.Event], error) {
	if err := requireSport(sport); err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, &ConfigurationError{Reason: "event ID is required"}
	}
	if err := requireDate(date); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	q := c.newQuery()
	q.add("date", date.UTC().Format(timeLayout))
	opts.query(q)

	body, err := c.get(ctx, fmt.Sprintf("/%s/historical/sports/%s/events/%s/odds", apiVersion, url.PathEscape(sport), url.PathEscape(eventID)), q)
	if err != nil {
		return nil, err
	}
	return parseSnapshot(body, parseEvent)
}

// Quota returns the usage counters from the most recent response that carried
// quota headers. Zero value until the first successful round trip.
func (c *Client) Quota() models.Quota {
	c.quotaMu.RLock()
	defer c.quotaMu.RUnlock()
	return c.quota
}

func (c *Client) newQuery() *queryBuilder {
	q := &queryBuilder{}
	q.add("apiKey", c.apiKey)
	return q
}

// get performs one transport round trip, records quota headers, and hands
// non-2xx responses to the classifier.
func (c *Client) get(ctx context.Context, path string, q *queryBuilder) ([]byte, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, path, q.params, nil)
	if err != nil {
		return nil, fmt.Errorf("theoddsapi: send request: %w", err)
	}

	quota := parseQuota(resp.Header)
	if quota != nil {
		c.quotaMu.Lock()
		c.quota = *quota
		c.quotaMu.Unlock()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classify(resp, quota)
	}
	return resp.Body, nil
}

// parseQuota reads the x-requests-* usage headers when present.
func parseQuota(header http.Header) *models.Quota {
	used := header.Get("X-Requests-Used")
	remaining := header.Get("X-Requests-Remaining")
	last := header.Get("X-Requests-Last")
	if used == "" && remaining == "" && last == "" {
		return nil
	}

	quota := models.Quota{LastUpdated: time.Now().UTC()}
	if v, err := strconv.Atoi(used); err == nil {
		quota.RequestsUsed = v
	}
	if v, err := strconv.Atoi(remaining); err == nil {
		quota.RequestsRemaining = v
	}
	if v, err := strconv.ParseFloat(last, 64); err == nil {
		quota.RequestsLast = v
	}
	return &quota
}

func requireSport(sport string) error {
	if sport == "" {
		return &ConfigurationError{Reason: "sport key is required"}
	}
	return nil
}

func requireDate(date time.Time) error {
	if date.IsZero() {
		return &ConfigurationError{Reason: "historical date is required"}
	}
	return nil
}
