package plex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// DefaultPlexTVURL is the base URL of the plex.tv account directory.
const DefaultPlexTVURL = "https://plex.tv"

// BreakerSettings configures the circuit breaker guarding server requests.
type BreakerSettings struct {
	MaxRequests  uint32        // Requests allowed while half-open
	Interval     time.Duration // Count reset period while closed
	Timeout      time.Duration // Open period before probing again
	MinRequests  uint32        // Requests required before the breaker may trip
	FailureRatio float64       // Failure ratio that opens the breaker
}

// Config holds connection settings for a Client.
type Config struct {
	BaseURL           string
	Token             string
	PlexTVURL         string
	PlexTVToken       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Retries           uint
	RetryDelay        time.Duration
	Breaker           BreakerSettings
	Concurrency       int
}

// Client talks to a Plex Media Server and plex.tv.
type Client struct {
	baseURL     string
	token       string
	plexTVURL   string
	plexTVToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	retries     uint
	retryDelay  time.Duration
	concurrency int
	cache       *Cache
	cacheTTL    time.Duration
	log         *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithCache enables response caching for metadata and children lookups.
func WithCache(cache *Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Plex client.
func NewClient(cfg Config, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "plex")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	plexTVURL := cfg.PlexTVURL
	if plexTVURL == "" {
		plexTVURL = DefaultPlexTVURL
	}
	plexTVToken := cfg.PlexTVToken
	if plexTVToken == "" {
		plexTVToken = cfg.Token
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	c := &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		token:       cfg.Token,
		plexTVURL:   strings.TrimSuffix(plexTVURL, "/"),
		plexTVToken: plexTVToken,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, burst),
		retries:     cfg.Retries,
		retryDelay:  cfg.RetryDelay,
		concurrency: concurrency,
		log:         log,
	}
	c.breaker = newBreaker(cfg.Breaker, log)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(s BreakerSettings, log *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "plex-api",
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				log.Warn("opening circuit breaker", "failures", counts.TotalFailures, "requests", counts.Requests)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		// A missing item is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
}

// getServer performs a GET against the media server.
func (c *Client) getServer(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.get(ctx, c.baseURL+path, query, c.token, "application/json")
}

// getPlexTV performs a GET against plex.tv. The directory only speaks XML.
func (c *Client) getPlexTV(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, c.plexTVURL+path, nil, c.plexTVToken, "application/xml")
}

func (c *Client) get(ctx context.Context, rawURL string, query url.Values, token, accept string) ([]byte, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	return c.breaker.Execute(func() ([]byte, error) {
		return retry.DoWithData(
			func() ([]byte, error) {
				return c.fetch(ctx, rawURL, token, accept)
			},
			retry.Context(ctx),
			retry.Attempts(c.retries+1),
			retry.Delay(c.retryDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(isTransient),
			retry.OnRetry(func(n uint, err error) {
				c.log.Debug("retrying request", "url", rawURL, "attempt", n+1, "error", err)
			}),
		)
	})
}

func (c *Client) fetch(ctx context.Context, rawURL, token, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", token)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("plex request", "url", req.URL.Path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// isTransient reports whether a failed request is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
