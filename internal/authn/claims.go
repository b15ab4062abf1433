// Package authn issues and parses the bearer tokens described in §3
// "Auth claims": {sub, space_id, exp}, 30-day lifetime, HMAC-signed.
// Grounded in the teacher's internal/auth/jwt.go, stripped of the
// upstream-RS256/JWKS/WorkOS path — this spec has no external identity
// provider, so only the HS256 backend-token path survives (see
// DESIGN.md for the dropped-dependency justification).
package authn

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the 30-day lifetime mandated by §3.
const TokenLifetime = 30 * 24 * time.Hour

// Claims mirrors the wire shape from the original Rust AuthClaims struct.
type Claims struct {
	Sub     string `json:"sub"`
	SpaceID string `json:"space_id"`
	jwt.RegisteredClaims
}

// Issuer issues and parses HMAC-signed claims with a single shared
// secret, the same AppState.jwt_secret role the original server gives
// its configuration.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

func (i *Issuer) Issue(userID, spaceID string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Sub:     userID,
		SpaceID: spaceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Parse validates the token's signature and expiry and returns the
// embedded (user_id, space_id). It does not look up membership or role —
// that is the Context resolver's job, done fresh from the Store on every
// request (§4.1) so revocation takes effect without waiting for the
// token to expire.
func (i *Issuer) Parse(tokenString string) (userID, spaceID string, err error) {
	if tokenString == "" {
		return "", "", errors.New("token is empty")
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", "", errors.New("invalid token")
	}
	if claims.Sub == "" || claims.SpaceID == "" {
		return "", "", errors.New("missing sub or space_id claim")
	}
	return claims.Sub, claims.SpaceID, nil
}
