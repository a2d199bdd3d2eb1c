package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// expiryMargin is how long before the reported expiry a cached token is
// considered stale. Refreshing early avoids presenting a token that dies
// mid-request.
const expiryMargin = 5 * time.Minute

// graphScope requests an app-only token covering the permissions granted
// to the application registration.
const graphScope = "https://graph.microsoft.com/.default"

// aadTokenURL is the Azure AD v2 token endpoint for a tenant.
const aadTokenURL = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

// ClientCredentials exchanges app-only client credentials for Graph API
// bearer tokens and caches the result until shortly before expiry.
// It implements TokenSource. Safe for concurrent use.
type ClientCredentials struct {
	logger *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	// exchange performs the actual token request. Tests replace it to
	// avoid hitting Azure AD.
	exchange func(ctx context.Context) (*oauth2.Token, error)

	// now returns the current time. Tests inject a fake clock to drive
	// expiry without sleeping.
	now func() time.Time
}

// NewClientCredentials builds a token source for the given tenant and
// application registration.
func NewClientCredentials(tenantID, clientID, clientSecret string, logger *slog.Logger) *ClientCredentials {
	if logger == nil {
		logger = slog.Default()
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf(aadTokenURL, tenantID),
		Scopes:       []string{graphScope},
	}

	return &ClientCredentials{
		logger:   logger,
		exchange: conf.Token,
		now:      time.Now,
	}
}

// Token returns a cached bearer token, exchanging credentials for a fresh
// one when the cache is empty or within the expiry margin.
func (cc *ClientCredentials) Token(ctx context.Context) (string, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.accessToken != "" && cc.now().Before(cc.expiresAt.Add(-expiryMargin)) {
		return cc.accessToken, nil
	}

	tok, err := cc.exchange(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", ErrAuth, err)
	}

	cc.accessToken = tok.AccessToken
	cc.expiresAt = tok.Expiry

	cc.logger.Debug("acquired access token",
		slog.Time("expires_at", cc.expiresAt),
	)

	return cc.accessToken, nil
}
