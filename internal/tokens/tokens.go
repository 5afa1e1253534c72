package tokens

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/groupchat/groupchat/internal/models"
)

var (
	// ErrMalformed covers unparseable tokens, bad signatures and wrong
	// signing methods.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired is returned for structurally valid tokens past their expiry.
	ErrExpired = errors.New("token expired")
)

// Claims is the JWT payload. The identity travels under a "user" object.
type Claims struct {
	User models.Identity `json:"user"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 session tokens with a fixed TTL. It does
// not consult the blacklist; that is the auth gate's job.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer. ttl defaults to one hour when non-positive.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the fixed token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue creates a signed token encoding the identity. Tokens cannot be
// renewed, only reissued via a fresh login.
func (i *Issuer) Issue(id models.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		User: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded identity.
func (i *Issuer) Verify(raw string) (models.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, ErrExpired
		}
		return models.Identity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims.User, nil
}

// RemainingTTL decodes the token payload (no signature check) and returns the
// time left until its exp claim. Suitable only for sizing blacklist entries.
func RemainingTTL(raw string) (time.Duration, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		if b, err = base64.StdEncoding.DecodeString(parts[1]); err != nil {
			return 0, err
		}
	}
	var payload struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return 0, err
	}
	if payload.Exp == 0 {
		return 0, fmt.Errorf("exp claim not present")
	}
	return time.Until(time.Unix(payload.Exp, 0)), nil
}
