// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package s2 is the Semantic Scholar Graph API client: a rate-limited,
// retrying fetcher with a durable response cache, offset/limit pagination
// for author papers and paper citations, author-name disambiguation, and
// an earliest-publication-year resolver.
package s2

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citecontext/internal/cache"
	"github.com/pdiddy/citecontext/pkg/types"
)

// GraphAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var GraphAPIBase = "https://api.semanticscholar.org/graph/v1"

// Backoff bounds for transient failures. The delay starts at
// backoffFloor, doubles per attempt, and never exceeds backoffCeiling.
const (
	backoffFloor   = 1 * time.Second
	backoffCeiling = 60 * time.Second
)

const defaultMaxRetries = 6

// Hooks for tests: sleepFunc waits out a backoff delay, jitterFunc
// returns a value in [0,1) scaling the jitter term.
var (
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
	jitterFunc = rand.Float64
)

// StatusError is a non-retryable upstream client error (4xx other than
// 429), carrying the status and a body snippet for diagnostics.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d fetching %s: %s", e.Code, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// Client talks to the Graph API. It is not safe for concurrent use: the
// earliest-year memo and the sequential throttle assume a single control
// thread, matching the one-request-at-a-time request budget.
type Client struct {
	cfg        types.ClientConfig
	httpClient *http.Client
	cache      *cache.Disk
	limiter    *rate.Limiter
	log        zerolog.Logger

	// earliestMem maps authorId to the resolved earliest year; a nil
	// value means "no known earliest year". Absent key means unresolved.
	earliestMem map[string]*int
}

// NewClient builds a client with a disk cache at cfg.CacheDir and a
// throttle enforcing cfg.MinInterval between network calls.
func NewClient(cfg types.ClientConfig, log zerolog.Logger) (*Client, error) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	diskCache, err := cache.NewDisk(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		cache:       diskCache,
		log:         log,
		earliestMem: make(map[string]*int),
	}
	if cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return c, nil
}

// fingerprint returns the cache key for a fully-resolved URL.
func fingerprint(fullURL string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(fullURL)))
}

// fetchJSON resolves path+params against GraphAPIBase, consults the cache,
// and on a miss issues the GET with throttling and retry. Successful
// responses are written through to the cache. 429 and 5xx retry with
// exponential backoff and jitter, honoring Retry-After; other 4xx fail
// immediately; network errors retry like 5xx.
func (c *Client) fetchJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	fullURL := GraphAPIBase + path
	if encoded := params.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := fingerprint(fullURL)
	if cached, ok := c.cache.Get(key); ok {
		c.log.Debug().Str("url", fullURL).Msg("cache hit")
		return cached, nil
	}

	backoff := backoffFloor
	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, status, header, err := c.doOnce(ctx, fullURL)
		if err != nil {
			if attempt > c.cfg.MaxRetries {
				return nil, fmt.Errorf("network error after %d attempts fetching %s: %w", attempt, fullURL, err)
			}
			c.log.Debug().Str("url", fullURL).Int("attempt", attempt).Err(err).Msg("network error, retrying")
			if serr := sleepFunc(ctx, jittered(backoff)); serr != nil {
				return nil, serr
			}
			backoff = nextBackoff(backoff)
			continue
		}

		switch {
		case status >= 200 && status < 300:
			if !json.Valid(body) {
				return nil, fmt.Errorf("invalid JSON from %s", fullURL)
			}
			if err := c.cache.Set(key, body); err != nil {
				return nil, fmt.Errorf("caching response for %s: %w", fullURL, err)
			}
			return body, nil

		case status == http.StatusTooManyRequests || status >= 500:
			if attempt > c.cfg.MaxRetries {
				return nil, fmt.Errorf("HTTP %d after %d attempts fetching %s", status, attempt, fullURL)
			}
			delay := backoff
			if ra := retryAfter(header); ra > 0 {
				delay = ra
			}
			delay = jittered(delay)
			c.log.Debug().Str("url", fullURL).Int("status", status).Int("attempt", attempt).
				Dur("delay", delay).Msg("transient error, retrying")
			if serr := sleepFunc(ctx, delay); serr != nil {
				return nil, serr
			}
			backoff = nextBackoff(backoff)

		default:
			return nil, &StatusError{Code: status, URL: fullURL, Body: snippet(body)}
		}
	}
}

// doOnce issues a single GET and returns the body, status, and response
// headers (for Retry-After).
func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, int, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, err
	}
	return body, resp.StatusCode, resp.Header, nil
}

// jittered adds up to +20% random jitter and clamps to
// [backoffFloor, backoffCeiling].
func jittered(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * (1.0 + jitterFunc()*0.2))
	if d < backoffFloor {
		d = backoffFloor
	}
	if d > backoffCeiling {
		d = backoffCeiling
	}
	return d
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > backoffCeiling {
		d = backoffCeiling
	}
	return d
}

// retryAfter parses a Retry-After header carrying seconds. HTTP-date
// values are ignored; the exponential delay applies instead.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	raw := h.Get("Retry-After")
	if raw == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func snippet(body []byte) string {
	const maxLen = 200
	s := string(body)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
