// Package personio is a minimal client for the Personio v1 REST API,
// covering the resources the extraction streams read. Authentication is
// delegated to an oauth2.TokenSource (see internal/auth).
package personio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public Personio API.
const DefaultBaseURL = "https://api.personio.de/v1"

// requestTimeout bounds a single resource request.
const requestTimeout = 60 * time.Second

// APIError is a non-success response from a resource endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("personio api error: status %d, response was %q", e.Status, e.Body)
}

// Client calls the Personio REST API with bearer authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseTransport sets the transport wrapped by the bearer-injecting
// oauth2.Transport. Defaults to http.DefaultTransport.
func WithBaseTransport(base http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport.(*oauth2.Transport).Base = base
	}
}

// NewClient creates a Client for the given base URL. Every request carries
// a bearer token obtained from ts; token refresh happens inside the token
// source, transparently to the client.
func NewClient(baseURL string, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if ts == nil {
		return nil, fmt.Errorf("missing token source")
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: &oauth2.Transport{Source: ts},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Employees lists one page of employees.
func (c *Client) Employees(ctx context.Context, page Page) ([]Employee, *Metadata, error) {
	var employees []Employee
	meta, err := c.list(ctx, "/company/employees", page, Window{}, &employees)
	if err != nil {
		return nil, nil, err
	}
	return employees, meta, nil
}

// TimeOffs lists one page of absence periods, optionally bounded by window.
func (c *Client) TimeOffs(ctx context.Context, page Page, window Window) ([]TimeOff, *Metadata, error) {
	var timeOffs []TimeOff
	meta, err := c.list(ctx, "/company/time-offs", page, window, &timeOffs)
	if err != nil {
		return nil, nil, err
	}
	return timeOffs, meta, nil
}

// Attendances lists one page of attendance records, optionally bounded by
// window.
func (c *Client) Attendances(ctx context.Context, page Page, window Window) ([]Attendance, *Metadata, error) {
	var attendances []Attendance
	meta, err := c.list(ctx, "/company/attendances", page, window, &attendances)
	if err != nil {
		return nil, nil, err
	}
	return attendances, meta, nil
}

// envelope is Personio's uniform response wrapper.
type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Metadata *Metadata       `json:"metadata"`
}

func (c *Client) list(ctx context.Context, path string, page Page, window Window, out any) (*Metadata, error) {
	query := url.Values{}
	if page.Limit > 0 {
		query.Set("limit", strconv.Itoa(page.Limit))
	}
	if page.Offset > 0 {
		query.Set("offset", strconv.Itoa(page.Offset))
	}
	if window.Start != nil {
		query.Set("start_date", window.Start.Format(time.DateOnly))
	}
	if window.End != nil {
		query.Set("end_date", window.End.Format(time.DateOnly))
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, fmt.Errorf("parsing %s data: %w", path, err)
	}
	return env.Metadata, nil
}
