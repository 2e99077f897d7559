// Package auth provides session tokens, password hashing, Google sign-in,
// and the middleware that turns a bearer token into a request actor.
//
// Tokens are HMAC-signed JWTs rather than a reversible concatenation of
// identity fields: the client still treats them as opaque strings, but the
// server refuses anything it did not sign, so client-supplied identity is
// never trusted without verification.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arefin/newshub/internal/model"
)

const (
	issuer = "newshub"

	// roleUser / roleAdmin are the values of the custom "role" claim.
	roleUser  = "user"
	roleAdmin = "admin"

	// admin sessions have no stored identity; the subject is fixed.
	adminSubject = "admin"
)

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must carry enough
// entropy to make forgery impractical; short secrets are rejected outright.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the token payload: the standard registered claims plus the
// username and role needed to rebuild the actor without a store lookup.
type claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateUser issues a session token for a registered user.
func (s *TokenService) GenerateUser(user *model.User) (string, error) {
	return s.sign(claims{
		Username:         user.Username,
		Role:             roleUser,
		RegisteredClaims: s.registered(user.ID),
	})
}

// GenerateAdmin issues a session token for the admin role.
func (s *TokenService) GenerateAdmin() (string, error) {
	return s.sign(claims{
		Role:             roleAdmin,
		RegisteredClaims: s.registered(adminSubject),
	})
}

func (s *TokenService) registered(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		Issuer:    issuer,
	}
}

func (s *TokenService) sign(c claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string and rebuilds the actor it
// encodes. The signature, expiry, issuer, and signing algorithm are all
// checked; anything invalid yields an error and no actor.
func (s *TokenService) Validate(tokenStr string) (model.Actor, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Anonymous, fmt.Errorf("auth: token expired")
		}
		return model.Anonymous, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return model.Anonymous, fmt.Errorf("auth: invalid token claims")
	}

	switch c.Role {
	case roleAdmin:
		return model.Actor{Role: model.RoleAdmin}, nil
	case roleUser:
		if c.Subject == "" {
			return model.Anonymous, fmt.Errorf("auth: token has no subject")
		}
		return model.Actor{Role: model.RoleUser, ID: c.Subject, Username: c.Username}, nil
	default:
		return model.Anonymous, fmt.Errorf("auth: unknown role %q", c.Role)
	}
}
