package zoho

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/config"
)

// defaultTokenLifetime applies when the token response has no expires_in.
const defaultTokenLifetime = time.Hour

// Authorizer runs the authorization-code and refresh-token grants against
// the accounts server of each data-center location.
type Authorizer struct {
	clientID            string
	clientSecret        string
	redirectURI         string
	accountsURLTemplate string
	httpClient          *http.Client
	recorder            CallRecorder
	now                 func() time.Time
}

var _ storesync.InventoryAuthorizer = (*Authorizer)(nil)

// NewAuthorizer creates an authorizer for the configured OAuth client
func NewAuthorizer(cfg config.InventoryConfig, opts ...Option) *Authorizer {
	o := buildOptions(cfg.Timeout, opts)
	return &Authorizer{
		clientID:            cfg.ClientID,
		clientSecret:        cfg.ClientSecret,
		redirectURI:         cfg.RedirectURI,
		accountsURLTemplate: cfg.AccountsURLTemplate,
		httpClient:          o.httpClient,
		recorder:            o.recorder,
		now:                 time.Now,
	}
}

// AuthCodeURL returns the consent page URL. Scopes are sent comma-joined in
// a single scope parameter and offline access is always requested.
func (a *Authorizer) AuthCodeURL(location, state string, scopes []string) string {
	return a.oauthConfig(location, scopes).AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair
func (a *Authorizer) Exchange(ctx context.Context, location, code string) (grant *storesync.TokenGrant, err error) {
	start := time.Now()
	defer a.record(ctx, "exchange_code", start, &err)

	tok, err := a.oauthConfig(location, nil).Exchange(a.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange authorization code: %w", storesync.ErrRemoteCall, err)
	}
	return a.toGrant(tok), nil
}

// Refresh obtains a new access token with refreshToken
func (a *Authorizer) Refresh(ctx context.Context, location, refreshToken string) (grant *storesync.TokenGrant, err error) {
	start := time.Now()
	defer a.record(ctx, "refresh_token", start, &err)

	src := a.oauthConfig(location, nil).TokenSource(a.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh access token: %w", storesync.ErrRemoteCall, err)
	}
	return a.toGrant(tok), nil
}

func (a *Authorizer) oauthConfig(location string, scopes []string) *oauth2.Config {
	base := strings.TrimRight(expandLocation(a.accountsURLTemplate, location), "/")
	cfg := &oauth2.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		RedirectURL:  a.redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/oauth/v2/auth",
			TokenURL:  base + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if len(scopes) > 0 {
		cfg.Scopes = []string{strings.Join(scopes, ",")}
	}
	return cfg
}

func (a *Authorizer) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

func (a *Authorizer) toGrant(tok *oauth2.Token) *storesync.TokenGrant {
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = a.now().Add(defaultTokenLifetime)
	}
	return &storesync.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

func (a *Authorizer) record(ctx context.Context, op string, start time.Time, err *error) {
	if a.recorder != nil {
		a.recorder.RecordRemoteCall(ctx, ServiceName, op, time.Since(start), *err)
	}
}
