// Package auth provides OAuth2 access tokens for the osu! API.
package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// TokenSource is a source of OAuth2 access tokens. Its methods are safe to
// call concurrently.
type TokenSource interface {
	// Token retrieves a token value. This may trigger an OAuth2 flow.
	// The result is always non-nil if the error is nil.
	Token(ctx context.Context) (*oauth2.Token, error)
	// Refresh forces a refresh of the token if its current value is identical
	// to old in the sense of [Equal]. This may trigger an OAuth2 flow.
	// The result is the refreshed token.
	// The requirement to provide the old token allows Refresh to be called
	// concurrently without flooding refresh requests.
	Refresh(ctx context.Context, old *oauth2.Token) (*oauth2.Token, error)
}

// Equal compares two OAuth2 tokens by access token, refresh token, token type,
// and expiry.
func Equal(a, b *oauth2.Token) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return a.AccessToken == b.AccessToken &&
		a.TokenType == b.TokenType &&
		a.RefreshToken == b.RefreshToken &&
		a.Expiry.Equal(b.Expiry)
}

// Static is a TokenSource which always returns the same token.
// Refreshing it fails.
type Static struct {
	Tok *oauth2.Token
}

// Token returns the static token.
func (s Static) Token(ctx context.Context) (*oauth2.Token, error) {
	return s.Tok, nil
}

// Refresh returns an error.
func (s Static) Refresh(ctx context.Context, old *oauth2.Token) (*oauth2.Token, error) {
	return nil, errStatic
}

var errStatic = errors.New("static token cannot be refreshed")
