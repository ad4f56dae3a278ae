// Package beacon fetches public randomness from a drand-style HTTP service.
//
// The beacon is availability-degradable by design: any fetch failure yields a
// fixed all-zero seed so extraction stays deterministic and available during
// outages, at the documented cost of unpredictability for that run.
package beacon

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// FallbackSeed is the deterministic seed used when the beacon is unreachable.
const FallbackSeed = "0000000000000000000000000000000000000000000000000000000000000000"

const fetchTimeout = 10 * time.Second

// Client fetches randomness values over HTTP.
type Client struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

// New builds a client for the given beacon URL.
func New(url string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client: resty.New().SetTimeout(fetchTimeout),
		url:    url,
		logger: logger,
	}
}

type beaconResponse struct {
	Randomness string `json:"randomness"`
	Signature  string `json:"signature"`
}

// Fetch returns the beacon source URL and its current randomness value.
// The body must carry a "randomness" or "signature" field; on any transport,
// status, or parse failure the all-zero fallback is returned instead.
func (c *Client) Fetch(ctx context.Context) (source, value string) {
	var body beaconResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.url)
	if err != nil {
		c.logger.Warn("beacon fetch failed, using fallback seed", "url", c.url, "error", err)
		return c.url, FallbackSeed
	}
	if resp.IsError() {
		c.logger.Warn("beacon fetch failed, using fallback seed", "url", c.url, "status", resp.StatusCode())
		return c.url, FallbackSeed
	}
	v := body.Randomness
	if v == "" {
		v = body.Signature
	}
	if v == "" {
		c.logger.Warn("beacon response missing randomness, using fallback seed", "url", c.url)
		return c.url, FallbackSeed
	}
	return c.url, v
}
