package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// DefaultEndpoint is Personio's fixed authentication endpoint.
const DefaultEndpoint = "https://api.personio.de/v1/auth"

// exchangeTimeout bounds a single token exchange request.
const exchangeTimeout = 60 * time.Second

// Credentials identify one Personio API client. Immutable for the process
// lifetime.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithHTTPClient sets a custom HTTP client for token exchange requests.
// If not provided, a client with a 60-second timeout is used.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.client = client
	}
}

// WithDefaultExpiration sets the token lifetime used when the exchange
// response carries no expires_in field. Zero means such tokens never expire.
func WithDefaultExpiration(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.defaultExpiration = d
	}
}

// WithClock overrides the time source. Used by tests to simulate expiry.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

// WithEndpoint overrides the authentication endpoint. Used for self-hosted
// gateways and tests.
func WithEndpoint(endpoint string) ProviderOption {
	return func(p *Provider) {
		if endpoint != "" {
			p.endpoint = endpoint
		}
	}
}

// Provider exchanges client credentials for a Personio bearer token and
// caches it until expiry. All token state is owned by the Provider and
// replaced only by a fully successful exchange; a failed exchange leaves
// prior state untouched.
type Provider struct {
	endpoint          string
	creds             Credentials
	defaultExpiration time.Duration
	client            *http.Client
	now               func() time.Time

	// mu serializes the validity check and the exchange, so concurrent
	// callers observing an expired token collapse into one outbound request.
	mu            sync.Mutex
	accessToken   string
	expiresIn     time.Duration // 0 means the token never expires
	lastRefreshed time.Time
}

// Compile-time check to ensure Provider implements oauth2.TokenSource
var _ oauth2.TokenSource = (*Provider)(nil)

// NewProvider creates a Provider for the given credentials. No I/O is
// performed until the first Token or Refresh call.
func NewProvider(creds Credentials, opts ...ProviderOption) (*Provider, error) {
	if creds.ClientID == "" {
		return nil, errors.New("missing client id")
	}
	if creds.ClientSecret == "" {
		return nil, errors.New("missing client secret")
	}

	p := &Provider{
		endpoint: DefaultEndpoint,
		creds:    creds,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: exchangeTimeout}
	}

	return p, nil
}

// Valid reports whether a token is present and not expired.
func (p *Provider) Valid() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validLocked()
}

func (p *Provider) validLocked() bool {
	if p.accessToken == "" {
		return false
	}
	if p.expiresIn <= 0 {
		// No expires_in received and no default configured: the token is
		// treated as if it never expires.
		return true
	}
	return p.now().Before(p.lastRefreshed.Add(p.expiresIn))
}

// Token returns the cached bearer token, refreshing it first when absent or
// expired. Refresh failures surface as *AuthError.
func (p *Provider) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.validLocked() {
		// oauth2.TokenSource.Token() has no context parameter (legacy
		// interface); the HTTP client timeout bounds the exchange.
		if err := p.refreshLocked(context.Background()); err != nil {
			return nil, err
		}
	}

	token := &oauth2.Token{
		AccessToken: p.accessToken,
		TokenType:   "Bearer",
	}
	if p.expiresIn > 0 {
		token.Expiry = p.lastRefreshed.Add(p.expiresIn)
	}
	return token, nil
}

// Refresh forces a token exchange regardless of the cached token's validity.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked(ctx)
}

// tokenResponse models Personio's exchange response. The token is nested at
// data.token; expires_in, when present, sits at the top level.
type tokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
	ExpiresIn *int64 `json:"expires_in"`
}

func (p *Provider) refreshLocked(ctx context.Context) error {
	// Token lifetime is measured from request send time, not response
	// receipt, so the effective window is never longer than expires_in.
	requestTime := p.now()

	form := url.Values{
		"client_id":     {p.creds.ClientID},
		"client_secret": {p.creds.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return &AuthError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return &AuthError{Status: resp.StatusCode, Body: string(body), Err: fmt.Errorf("parsing token response: %w", err)}
	}
	if tr.Data.Token == "" {
		return &AuthError{Status: resp.StatusCode, Body: string(body), Err: errors.New("token response missing data.token")}
	}

	expiresIn := p.defaultExpiration
	if tr.ExpiresIn != nil {
		expiresIn = time.Duration(*tr.ExpiresIn) * time.Second
	}
	if expiresIn <= 0 {
		slog.DebugContext(ctx, "no expires_in in token response and no default expiration configured, token never expires")
	}

	p.accessToken = tr.Data.Token
	p.expiresIn = expiresIn
	p.lastRefreshed = requestTime

	slog.DebugContext(ctx, "token exchange succeeded", "expires_in", expiresIn)
	return nil
}
