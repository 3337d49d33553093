package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 2 * time.Hour

// Claims is the identity a session token asserts. Handlers read it from the
// request context; the account row is not re-fetched.
type Claims struct {
	AccountID   string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// Sessions signs and parses HS256 session tokens.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type SessionsOption func(*Sessions)

// WithClock overrides time.Now for both issuing and validation.
func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

func NewSessions(key []byte, ttl time.Duration, opts ...SessionsOption) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &Sessions{key: key, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue returns a signed token for acc and its expiry.
func (s *Sessions) Issue(acc *domain.Account) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		AccountID:   acc.ID,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature, algorithm and expiry. Every failure is reported
// as domain.ErrSessionInvalid.
func (s *Sessions) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err)
	}
	if claims.AccountID == "" || claims.Subject != claims.AccountID {
		return nil, domain.ErrSessionInvalid
	}
	return claims, nil
}
