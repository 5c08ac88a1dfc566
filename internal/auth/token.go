// Package auth provides token issuance/verification and password hashing.
//
// TOKEN MODEL:
// Tokens are stateless JWTs — the server keeps no session table. A token is
// a signed claim set {subject: username, expires_at} and possession of a
// structurally valid, unexpired, correctly-signed token is the sole
// authorization proof for protected endpoints. There is no revocation list:
// a token stays valid for its whole window regardless of later account
// changes.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"alice_01","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server verifies the signature with just the shared secret — no DB
// lookup, no I/O. Verification is a pure function of the token string and
// the current time.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer is embedded in every token and checked on verification, so tokens
// minted by other apps sharing a secret by accident are still rejected.
const issuer = "datavault"

// TokenService issues and verifies signed bearer tokens.
//
// It holds the HMAC secret and the validity window, both injected at
// construction (no package-level state — parallel test instances each get
// their own service with their own secret).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
// The secret must be at least 16 characters; the config layer enforces the
// same bound at startup, this check guards direct constructions in tests.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured validity window. Handlers use it to report
// expires_in (in whole seconds) alongside the token.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. jwt.RegisteredClaims carries the standard
// fields; the username travels in "sub" (Subject), the standard claim for
// identifying who the token belongs to.
type claims struct {
	jwt.RegisteredClaims
}

// Issue mints a signed token for the given username.
//
// The expiry is an absolute timestamp, now + TTL. (The documented window is
// 60 minutes by default; the TTL is configuration, not a constant, so tests
// can issue short-lived tokens without clock tricks.)
func (s *TokenService) Issue(username string) (string, error) {
	return s.IssueWithDuration(username, s.ttl)
}

// IssueWithDuration mints a token with a custom validity window. Used by
// tests to produce already-expired tokens; production code goes through
// Issue.
func (s *TokenService) IssueWithDuration(username string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string, returning the username from
// the subject claim.
//
// Checks performed (by the jwt library, configured below):
//   - signature is valid for our secret
//   - algorithm is HS256 (jwt.WithValidMethods blocks algorithm-confusion
//     attacks, e.g. a token claiming "none")
//   - issuer matches
//   - an expiry claim is present and in the future
//
// Every failure mode collapses into a single opaque error. Callers must not
// distinguish "expired" from "tampered" in responses — protected endpoints
// turn any failure into INVALID_TOKEN.
func (s *TokenService) Verify(tokenStr string) (string, error) {
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
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", errors.New("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}

	return c.Subject, nil
}
