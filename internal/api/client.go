package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/banshee-data/trajectory.report/internal/httputil"
	"github.com/banshee-data/trajectory.report/internal/store"
)

// Client reads from a running server.
type Client struct {
	BaseURL string
	HTTP    httputil.HTTPClient
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ListFlights fetches /api/flights.
func (c *Client) ListFlights(ctx context.Context) ([]store.Flight, error) {
	var out []store.Flight
	if err := httputil.GetJSON(ctx, c.HTTP, c.BaseURL+"/api/flights", &out); err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return out, nil
}

// Flight fetches /api/flights/{id}.
func (c *Client) Flight(ctx context.Context, id string) (FlightSummary, error) {
	var out FlightSummary
	if err := httputil.GetJSON(ctx, c.HTTP, c.BaseURL+"/api/flights/"+url.PathEscape(id), &out); err != nil {
		return FlightSummary{}, fmt.Errorf("flight %s: %w", id, err)
	}
	return out, nil
}

// Plot fetches a rendered plot. target is "quantity" or "route"; params
// carries flight, kind, quantity, format and title.
func (c *Client) Plot(ctx context.Context, target string, params url.Values) ([]byte, string, error) {
	u := c.BaseURL + "/plots/" + url.PathEscape(target) + "?" + params.Encode()
	body, ct, err := httputil.GetBytes(ctx, c.HTTP, u)
	if err != nil {
		return nil, "", fmt.Errorf("plot %s: %w", target, err)
	}
	return body, ct, nil
}
