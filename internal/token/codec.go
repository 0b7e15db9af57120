package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidPayload = errors.New("token payload missing subject or role")
	ErrExpired        = errors.New("token expired")
	ErrBadSignature   = errors.New("token signature invalid")
	ErrMalformed      = errors.New("token malformed")
)

// Payload is the identity embedded in every signed token. Immutable once
// signed.
type Payload struct {
	UserID uuid.UUID
	Role   string
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies access and refresh tokens. The two kinds are
// signed with independent secrets so leaking one does not compromise the
// other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a short-lived access token for p.
func (c *Codec) IssueAccess(p Payload) (string, time.Time, error) {
	return c.issue(p, c.accessSecret, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for p.
func (c *Codec) IssueRefresh(p Payload) (string, time.Time, error) {
	return c.issue(p, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(p Payload, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if p.UserID == uuid.Nil || p.Role == "" {
		return "", time.Time{}, ErrInvalidPayload
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	cl := &claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccess checks signature and expiry of an access token and returns the
// embedded payload. Expected failures come back as ErrExpired,
// ErrBadSignature or ErrMalformed.
func (c *Codec) VerifyAccess(tokenStr string) (*Payload, error) {
	return verify(tokenStr, c.accessSecret)
}

// VerifyRefresh is VerifyAccess for refresh tokens.
func (c *Codec) VerifyRefresh(tokenStr string) (*Payload, error) {
	return verify(tokenStr, c.refreshSecret)
}

func verify(tokenStr string, secret []byte) (*Payload, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, classify(tokenStr, err)
	}

	cl, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	userID, err := uuid.Parse(cl.Subject)
	if err != nil || cl.Role == "" {
		return nil, ErrInvalidPayload
	}
	return &Payload{UserID: userID, Role: cl.Role}, nil
}

// classify maps jwt parser errors onto the codec's failure taxonomy. Expiry
// takes precedence over everything else: an expired token reports ErrExpired
// even when its signature is also wrong, which the parser alone cannot tell
// us because it stops at the signature check.
func classify(tokenStr string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if expiredUnverified(tokenStr) {
			return ErrExpired
		}
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}

func expiredUnverified(tokenStr string) bool {
	cl := &claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, cl); err != nil {
		return false
	}
	return cl.ExpiresAt != nil && cl.ExpiresAt.Before(time.Now())
}
