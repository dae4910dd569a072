// Package baserow is a thin client for the Baserow-style tabular rows API that
// backs every dynamic section of the site. Tables expose three endpoints: rows,
// field metadata, and (for the directory table) configuration rows. All requests
// carry a static token header; there is no per-user auth.
package baserow

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"communityEventsWebsite/internal/models"
)

// RowsResponse is the paginated envelope every rows endpoint returns. Only the
// first page is consumed; Next is carried but never followed.
type RowsResponse struct {
	Count    int              `json:"count"`
	Next     string           `json:"next,omitempty"`
	Previous string           `json:"previous,omitempty"`
	Results  []map[string]any `json:"results"`
}

// APIError is a non-2xx response from the rows service. It is always
// recoverable at the fetch layer: callers fall back to cached data or report
// the section as pending.
type APIError struct {
	URL        string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d (%s)", e.StatusCode, e.URL)
}

// Client issues authenticated requests against the rows service.
type Client struct {
	httpClient *http.Client
	token      string
}

// NewClient builds a client with the given token and request timeout.
func NewClient(token string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: tr},
		token:      token,
	}
}

// GetJSON fetches url and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &APIError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// ListRows fetches a single page of rows from a table's rows endpoint.
func (c *Client) ListRows(ctx context.Context, url string) (*RowsResponse, error) {
	var resp RowsResponse
	if err := c.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFields fetches a table's field metadata. Depending on the table the
// endpoint returns either a bare list or a results envelope, so both shapes
// are accepted.
func (c *Client) ListFields(ctx context.Context, url string) ([]models.FieldDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &APIError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	var fields []models.FieldDescriptor
	if err := json.Unmarshal(body, &fields); err == nil {
		return fields, nil
	}

	var wrapped struct {
		Results []models.FieldDescriptor `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode fields from %s: %w", url, err)
	}
	return wrapped.Results, nil
}
