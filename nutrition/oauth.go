package nutrition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL = "https://oauth.fatsecret.com/connect/token"
	DefaultBaseURL  = "https://platform.fatsecret.com/rest"
	DefaultScope    = "premier"

	// Tokens are treated as expired this long before FatSecret says they are.
	tokenEarlyExpiry = 5 * time.Minute
	// FatSecret tokens live 24h; used when the token response has no expires_in.
	defaultTokenLifetime = 86400 * time.Second
)

// ErrAuth marks failures to obtain an access token.
var ErrAuth = errors.New("fatsecret auth failed")

type Config struct {
	ClientID     string
	ClientSecret string
	Scope        string
	TokenURL     string
	BaseURL      string
	Region       string
}

// NewTokenSource returns a cached client-credentials token source. Credentials go in the Basic
// auth header and a token is reused until five minutes before it expires.
// ctx is used for token requests; put an *http.Client under oauth2.HTTPClient to override transport.
func NewTokenSource(ctx context.Context, cfg Config) oauth2.TokenSource {
	return newTokenSource(ctx, cfg, time.Now)
}

func newTokenSource(ctx context.Context, cfg Config, now func() time.Time) oauth2.TokenSource {
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{cfg.Scope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	fetch := &tokenFetcher{ctx: ctx, cc: cc, scope: cfg.Scope, now: now}
	return oauth2.ReuseTokenSourceWithExpiry(nil, fetch, tokenEarlyExpiry)
}

type tokenFetcher struct {
	ctx   context.Context
	cc    *clientcredentials.Config
	scope string
	now   func() time.Time
}

func (f *tokenFetcher) Token() (*oauth2.Token, error) {
	tok, err := f.cc.Token(f.ctx)
	if err != nil {
		slog.Error("FATSECRET: token request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = f.now().Add(defaultTokenLifetime)
	}
	slog.Info("FATSECRET: token obtained", "scope", f.scope, "expires_at", tok.Expiry)
	return tok, nil
}

// NewHTTPClient returns an *http.Client that authorizes every request with a bearer token from ts.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}
