package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/pkg/logger"
)

const (
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultTokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

var (
	// ErrTransport marks network failures or non-2xx answers from the provider.
	ErrTransport = errors.New("oauth: provider request failed")
	// ErrDecode marks provider responses that could not be parsed.
	ErrDecode = errors.New("oauth: provider response decode failed")
	// ErrIdentity marks provider identities rejected by Validate.
	ErrIdentity = errors.New("oauth: provider identity rejected")
)

// ProviderTokens is the token-endpoint response. Held only for the duration
// of a single exchange, never persisted.
type ProviderTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	IDToken      string `json:"id_token"`
}

// ProviderIdentity is the tokeninfo-endpoint response. Google returns every
// field as a string; they stay opaque except where Validate compares them.
type ProviderIdentity struct {
	Iss           string `json:"iss"`
	Azp           string `json:"azp"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	AtHash        string `json:"at_hash"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	GivenName     string `json:"given_name"`
	Locale        string `json:"locale"`
	Iat           string `json:"iat"`
	Exp           string `json:"exp"`
}

// Validate checks the provider-asserted fields this service relies on before
// the email may be used as a reconciliation key. The provider must assert
// ownership of the email; an unverified email is not an identity.
func (id *ProviderIdentity) Validate() error {
	if id.Email == "" || !strings.Contains(id.Email, "@") {
		return fmt.Errorf("%w: missing or malformed email", ErrIdentity)
	}
	if id.EmailVerified != "true" {
		return fmt.Errorf("%w: email not verified by provider", ErrIdentity)
	}
	return nil
}

// Client performs the two server-to-server legs of the Google OAuth flow. It
// holds no per-request state; both calls are safe for concurrent use.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	tokeninfoURL string
	http         *http.Client
}

// NewClient builds a client against Google's endpoints. Missing credentials
// are a construction error, not a per-request one.
func NewClient(cfg config.GoogleConfig) (*Client, error) {
	return NewClientWithEndpoints(cfg, defaultTokenURL, defaultTokeninfoURL)
}

// NewClientWithEndpoints is NewClient with provider endpoints supplied by the
// caller. Tests point it at a local fake provider.
func NewClientWithEndpoints(cfg config.GoogleConfig, tokenURL, tokeninfoURL string) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURI == "" {
		return nil, errors.New("oauth: client id, client secret and redirect uri are required")
	}
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		tokenURL:     tokenURL,
		tokeninfoURL: tokeninfoURL,
		http:         &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// ExchangeCode trades an authorization code for provider tokens via a form
// POST to the token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*ProviderTokens, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("grant_type", "authorization_code")
	form.Set("access_type", "offline")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warnf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		return nil, fmt.Errorf("%w: token endpoint returned %d", ErrTransport, resp.StatusCode)
	}

	var tokens ProviderTokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: token response: %v", ErrDecode, err)
	}
	return &tokens, nil
}

// ResolveIdentity introspects an identity token via a GET against the
// tokeninfo endpoint. The provider does the verification; we transport.
func (c *Client) ResolveIdentity(ctx context.Context, idToken string) (*ProviderIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokeninfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warnf("tokeninfo endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		return nil, fmt.Errorf("%w: tokeninfo endpoint returned %d", ErrTransport, resp.StatusCode)
	}

	var identity ProviderIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("%w: tokeninfo response: %v", ErrDecode, err)
	}
	return &identity, nil
}

// PerformLogin composes the two calls: the id_token from the code exchange is
// the input to identity resolution. Whichever step fails, its error is
// returned and no partial identity is ever surfaced.
func (c *Client) PerformLogin(ctx context.Context, code string) (*ProviderIdentity, error) {
	tokens, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.ResolveIdentity(ctx, tokens.IDToken)
}
