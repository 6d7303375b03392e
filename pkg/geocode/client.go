package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/lucasmv/zapflow-backend/pkg/errors"
)

const (
	defaultBaseURL            = "https://cep.awesomeapi.com.br"
	responseBodyReadLimit int64 = 1024
)

// Client wraps the AwesomeAPI CEP lookup used to resolve a Brazilian postal
// code into coordinates and address parts.
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

// WithBaseURL overrides the lookup base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the CEP lookup client.
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

// Result is the normalized CEP lookup payload.
type Result struct {
	CEP      string
	Lat      float64
	Lng      float64
	Street   string
	District string
	City     string
}

// HasCoordinates reports whether the lookup produced a usable location.
func (r *Result) HasCoordinates() bool {
	return r != nil && (r.Lat != 0 || r.Lng != 0)
}

// Lookup resolves a postal code. Non-digit characters are stripped before the
// call; a CEP must have exactly 8 digits.
func (c *Client) Lookup(ctx context.Context, cep string) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured")
	}
	digits := digitsOnly(cep)
	if len(digits) != 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cep must have 8 digits")
	}

	url := fmt.Sprintf("%s/json/%s", strings.TrimRight(c.baseURL, "/"), digits)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cep request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cep request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "cep request failed")
	}

	var apiResp struct {
		CEP      string `json:"cep"`
		Lat      string `json:"lat"`
		Lng      string `json:"lng"`
		Address  string `json:"address"`
		District string `json:"district"`
		City     string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cep response")
	}

	result := &Result{
		CEP:      apiResp.CEP,
		Street:   apiResp.Address,
		District: apiResp.District,
		City:     apiResp.City,
	}
	if lat, err := strconv.ParseFloat(apiResp.Lat, 64); err == nil {
		result.Lat = lat
	}
	if lng, err := strconv.ParseFloat(apiResp.Lng, 64); err == nil {
		result.Lng = lng
	}
	return result, nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
