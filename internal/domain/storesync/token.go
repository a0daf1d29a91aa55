package storesync

import "time"

// TokenRefreshSkew is how long before expiry an access token is treated as
// stale.
const TokenRefreshSkew = 60 * time.Second

// OAuthToken caches the inventory platform's credentials for one store.
// There is at most one record per store; refreshes overwrite it in place.
type OAuthToken struct {
	ID           int64
	StoreID      int64
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the access token expiry in epoch seconds.
	ExpiresAt int64
	UpdatedAt time.Time
}

// IsStale reports whether the access token must be refreshed before use.
func (t *OAuthToken) IsStale(now time.Time) bool {
	return t.ExpiresAt-int64(TokenRefreshSkew/time.Second) < now.Unix()
}

// Apply overwrites the token pair. An empty refresh token keeps the current
// one, since refresh-token grants usually do not rotate it.
func (t *OAuthToken) Apply(accessToken, refreshToken string, expiresAt time.Time) {
	t.AccessToken = accessToken
	if refreshToken != "" {
		t.RefreshToken = refreshToken
	}
	t.ExpiresAt = expiresAt.Unix()
	t.UpdatedAt = time.Now()
}
