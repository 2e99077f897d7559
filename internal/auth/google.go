package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/arefin/newshub/internal/apperror"
)

// GoogleUser is the identity asserted by Google for a signed-in user.
// Only the fields the identity store needs are kept.
type GoogleUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow. Unlike the posted ID-token bridge below, this flow exchanges
// the code server-to-server with the client secret, so the resulting
// identity comes from Google directly and needs no further verification.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a provider from OAuth app credentials.
// callbackURL must match the redirect URI registered with Google exactly.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent-screen URL to redirect the user to.
// The state value is echoed back on the callback and must be checked there.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's Google profile:
// code → access token → userinfo endpoint.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := p.config.Client(ctx, oauthToken)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}
	if gUser.Email == "" {
		return nil, fmt.Errorf("auth: Google returned a user without an email")
	}
	return &gUser, nil
}

// DecodeGoogleIDToken extracts the identity claims from a Google ID token
// posted by the browser after client-side sign-in.
//
// The token's signature is NOT verified here; there is no call to
// Google's certs endpoint, so a well-formed forged token would decode.
// When audience is non-empty the aud claim must match it, which at least
// rejects tokens minted for other applications. Treat the result as a
// hint of identity, not proof; the code-flow provider above is the
// verified path.
func DecodeGoogleIDToken(idToken, audience string) (*GoogleUser, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, apperror.ValidationFailed("token", "invalid token format")
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, apperror.ValidationFailed("token", "invalid token encoding")
	}

	var claims struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Audience string `json:"aud"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, apperror.ValidationFailed("token", "invalid token payload")
	}
	if claims.Email == "" {
		return nil, apperror.ValidationFailed("token", "token has no email claim")
	}
	if audience != "" && claims.Audience != audience {
		return nil, apperror.ValidationFailed("token", "token issued for a different application")
	}

	name := claims.Name
	if name == "" {
		name = strings.SplitN(claims.Email, "@", 2)[0]
	}
	return &GoogleUser{Email: claims.Email, Name: name}, nil
}
