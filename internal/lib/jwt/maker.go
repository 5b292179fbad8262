package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/contacts-api/internal/apperr"
)

// TTLs время жизни токенов по назначению.
type TTLs struct {
	Access       time.Duration
	Refresh      time.Duration
	Confirmation time.Duration
}

// Maker подписывает и проверяет токены общим секретом.
type Maker struct {
	secret []byte
	method jwt.SigningMethod
	ttls   TTLs
	now    func() time.Time
}

// Option настраивает Maker.
type Option func(*Maker)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(m *Maker) { m.now = now }
}

// NewMaker создаёт Maker. Допустимы алгоритмы HS256, HS384 и HS512.
func NewMaker(secret, algorithm string, ttls TTLs, opts ...Option) (*Maker, error) {
	const op = "jwt.NewMaker"
	if secret == "" {
		return nil, fmt.Errorf("%s: empty secret", op)
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported algorithm %q", op, algorithm)
	}
	m := &Maker{
		secret: []byte(secret),
		method: method,
		ttls:   ttls,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue выпускает токен для subject с заданной областью и временем жизни.
func (m *Maker) Issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	const op = "jwt.Issue"
	now := m.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// IssueAccess выпускает access-токен.
func (m *Maker) IssueAccess(subject string) (string, error) {
	return m.Issue(subject, ScopeAccess, m.ttls.Access)
}

// IssueRefresh выпускает refresh-токен.
func (m *Maker) IssueRefresh(subject string) (string, error) {
	return m.Issue(subject, ScopeRefresh, m.ttls.Refresh)
}

// IssueConfirmation выпускает токен подтверждения почты.
func (m *Maker) IssueConfirmation(subject string) (string, error) {
	return m.Issue(subject, ScopeConfirmation, m.ttls.Confirmation)
}

// Decode проверяет подпись, срок и область токена и возвращает subject.
//
// Ошибки: apperr.ErrTokenExpired для просроченного токена,
// apperr.ErrInvalidScope для чужой области, apperr.ErrTokenInvalid для остального.
func (m *Maker) Decode(token string, expected Scope) (string, error) {
	const op = "jwt.Decode"
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, apperr.ErrTokenExpired)
		}
		return "", fmt.Errorf("%s: %w: %v", op, apperr.ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("%s: %w", op, apperr.ErrTokenInvalid)
	}
	if claims.Scope != expected {
		return "", fmt.Errorf("%s: %w", op, apperr.ErrInvalidScope)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%s: %w: empty subject", op, apperr.ErrTokenInvalid)
	}
	return claims.Subject, nil
}
