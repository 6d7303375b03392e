package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://router.project-osrm.org"
	responseBodyReadLimit int64 = 1024
)

// Client wraps the OSRM routing API used to compute road-network distance
// between the store and a customer address.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the router base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the OSRM client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Route holds the normalized routing result.
type Route struct {
	DistanceMeters float64
}

// DistanceKm converts the road distance to kilometers.
func (r Route) DistanceKm() float64 {
	return r.DistanceMeters / 1000
}

// DrivingRoute returns the road distance between two points. OSRM expects
// lng,lat coordinate order. A response code other than "Ok" or an empty route
// set is a dependency failure.
func (c *Client) DrivingRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*Route, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "osrm client not configured")
	}

	url := fmt.Sprintf(
		"%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		strings.TrimRight(c.baseURL, "/"),
		fromLng, fromLat, toLng, toLat,
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build route request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute route request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "route request failed")
	}

	var apiResp struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode route response")
	}

	if apiResp.Code != "Ok" || len(apiResp.Routes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("route not found (code %q)", apiResp.Code))
	}

	return &Route{DistanceMeters: apiResp.Routes[0].Distance}, nil
}
