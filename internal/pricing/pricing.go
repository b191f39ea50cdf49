// Package pricing calls the external flight-pricing HTTP API. Every failure
// mode surfaces as an error; the miner's fulfillment layer decides whether
// to fall back to a synthetic offer.
package pricing

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/config"
	"github.com/skylane-labs/skylane/internal/protocol"
)

// Source is the pricing surface the miner fulfills against.
type Source interface {
	Search(ctx context.Context, q protocol.FlightQuery) ([]RawOffer, error)
}

// Client talks to a Skyscanner-compatible RapidAPI endpoint.
type Client struct {
	http    *retryablehttp.Client
	apiKey  string
	apiHost string
	baseURL string
}

func NewClient(cfg *config.PricingEnvConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = cfg.PricingTimeout
	client.Logger = nil

	return &Client{
		http:    client,
		apiKey:  cfg.PricingAPIKey,
		apiHost: cfg.PricingAPIHost,
		baseURL: fmt.Sprintf("https://%s", cfg.PricingAPIHost),
	}, nil
}

// Configured reports whether an API key is present. Without one the miner
// serves fallback offers only.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search runs a one-way flight search for the given sub-query.
func (c *Client) Search(ctx context.Context, q protocol.FlightQuery) ([]RawOffer, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("pricing api key not configured")
	}

	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("originId", q.OriginID)
	params.Set("destination", q.Destination)
	params.Set("destinationId", q.DestinationID)
	params.Set("date", q.Date)
	params.Set("market", q.Market)
	params.Set("currency", q.Currency)

	endpoint := fmt.Sprintf("%s/flights/one-way/list?%s", c.baseURL, params.Encode())
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("route", q.Origin+"-"+q.Destination).Msg("pricing request failed")
		return nil, fmt.Errorf("pricing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pricing response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pricing status %d: %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal pricing response: %w", err)
	}

	return out.Result.Flights, nil
}
