// Package api holds the thin clients for the three remote collaborators:
// the Overpass place source, the Wikidata sitelink source and the Wikipedia
// content source. All calls go through one shared Client that paces
// requests and honours robots.txt.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nzgeo/popmatch/internal/model"
)

// Client is the shared HTTP client for all remote sources. Requests are
// sequential; the pacer enforces the minimum delay between consecutive
// calls, which doubles as the rate-limit contract with the upstream APIs.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	pacer      *rate.Limiter
	robots     *RobotsChecker
}

// NewClient creates a Client from the HTTP and batch configuration
func NewClient(cfg model.HTTPConfig, delay time.Duration) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		pacer:     rate.NewLimiter(rate.Every(delay), 1),
	}

	if cfg.CheckRobots {
		c.robots = NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return c
}

// GetJSON performs a paced GET against url and decodes the JSON response
// into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	if c.robots != nil && !c.robots.IsAllowed(ctx, url) {
		return fmt.Errorf("disallowed by robots.txt: %s", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
