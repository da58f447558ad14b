package token

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
)

// Manager issues and validates access tokens signed with the service-wide secret.
type Manager struct {
	signer  Signer
	issuer  string
	revoked RevokedTokenStore
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRevokedTokenStore(store RevokedTokenStore) ManagerOption {
	return func(m *Manager) {
		m.revoked = store
	}
}

func New(signer Signer, issuer string, options ...ManagerOption) (*Manager, error) {
	if signer == nil {
		return nil, errors.New("[token.New] signer is required")
	}
	if issuer == "" {
		return nil, errors.New("[token.New] issuer is required")
	}

	m := &Manager{
		signer: signer,
		issuer: issuer,
	}
	for _, opt := range options {
		opt(m)
	}

	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	if m.revoked == nil {
		m.revoked = NewInMemoryRevokedTokenStore(m.nowFunc)
	}
	return m, nil
}

func (m *Manager) Issuer() string {
	return m.issuer
}

// CreateAccessToken signs claims with iss, iat, exp and jti added. The
// caller's map is left untouched.
func (m *Manager) CreateAccessToken(claims jwt.MapClaims, ttl time.Duration) (string, time.Time, error) {
	now := m.nowFunc()
	expiresAt := now.Add(ttl)

	c := make(jwt.MapClaims, len(claims)+4)
	maps.Copy(c, claims)
	c["iss"] = m.issuer
	c["iat"] = now.Unix()
	c["exp"] = expiresAt.Unix()
	c["jti"] = uuid.New().String()

	signed, err := m.signer.Sign(c)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("[token.Manager.CreateAccessToken] %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies an access token and returns its claims. An expired token
// yields ErrTokenExpired, any other failure ErrTokenInvalid.
func (m *Manager) Parse(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, autherrors.WithCause(autherrors.ErrTokenExpired, err)
	}
	if err != nil {
		return nil, autherrors.WithCause(autherrors.ErrTokenInvalid, err)
	}
	return claims, nil
}

// RemainingLifetime reads exp without verifying the token. It returns false
// when exp is missing or already passed.
func (m *Manager) RemainingLifetime(raw string) (time.Duration, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return 0, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}
	remaining := exp.Sub(m.nowFunc())
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// Revoke adds raw to the revoked list for its remaining lifetime, or for
// fallback when that cannot be read.
func (m *Manager) Revoke(ctx context.Context, raw string, fallback time.Duration) error {
	ttl, ok := m.RemainingLifetime(raw)
	if !ok {
		ttl = fallback
	}
	if ttl <= 0 {
		return nil
	}
	if err := m.revoked.Revoke(ctx, raw, ttl); err != nil {
		return fmt.Errorf("[token.Manager.Revoke] %w", err)
	}
	return nil
}

func (m *Manager) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return m.revoked.IsRevoked(ctx, raw)
}
