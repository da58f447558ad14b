package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-exchange/clients"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/jrsteele09/go-auth-exchange/users"
	"github.com/rs/zerolog/log"
)

// revokeFallbackTTL covers access tokens whose exp cannot be read.
const revokeFallbackTTL = time.Hour

// TokenExchanger is where every login path ends: it turns an authenticated
// client and user into an access and refresh token pair.
type TokenExchanger struct {
	users     users.Repo
	clients   clients.Repo
	codes     *CodeIssuer
	tokens    *token.Manager
	refresh   *refresh.Manager
	payload   PayloadProvider
	reader    CodeReader
	usedCodes token.UsedCodeGuard
	nowFunc   func() time.Time
}

func (te *TokenExchanger) IssueDirect(ctx context.Context, client *clients.Client, user *users.User, device DeviceInfo) (*TokenPair, error) {
	return te.CreateAccessTokenPair(ctx, PayloadForUser(client.ClientID, user), client, device)
}

// ExchangeCode redeems an authorization code for a token pair.
func (te *TokenExchanger) ExchangeCode(ctx context.Context, clientID, code string, device DeviceInfo) (*TokenPair, error) {
	pair, err := te.exchangeCode(ctx, clientID, code, device)
	return pair, sanitize("ExchangeCode", err)
}

func (te *TokenExchanger) exchangeCode(ctx context.Context, clientID, code string, device DeviceInfo) (*TokenPair, error) {
	if clientID == "" || code == "" {
		return nil, autherrors.ErrInvalidCredentials
	}

	code, err := te.reader(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("read code: %w", err)
	}

	client, err := te.clients.Get(ctx, clientID)
	if errors.Is(err, clients.ErrNotFound) {
		return nil, autherrors.ErrClientInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	verified, err := te.codes.Verify(code, client)
	if err != nil {
		return nil, err
	}

	if te.usedCodes != nil {
		ttl := max(verified.ExpiresAt.Sub(te.nowFunc()), time.Second)
		first, err := te.usedCodes.MarkUsed(ctx, verified.ID, ttl)
		if err != nil {
			return nil, fmt.Errorf("mark code used: %w", err)
		}
		if !first {
			log.Warn().Str("client_id", clientID).Str("jti", verified.ID).Msg("authorization code replayed")
			return nil, autherrors.ErrInvalidCredentials
		}
	}

	return te.CreateAccessTokenPair(ctx, verified.Payload, client, device)
}

// CreateAccessTokenPair signs an access token, stores a refresh record next
// to it and returns both.
func (te *TokenExchanger) CreateAccessTokenPair(ctx context.Context, payload CodePayload, client *clients.Client, device DeviceInfo) (*TokenPair, error) {
	pair, err := te.createAccessTokenPair(ctx, payload, client, device)
	return pair, sanitize("CreateAccessTokenPair", err)
}

func (te *TokenExchanger) createAccessTokenPair(ctx context.Context, payload CodePayload, client *clients.Client, device DeviceInfo) (*TokenPair, error) {
	user, err := te.resolveUser(ctx, payload)
	if err != nil {
		return nil, err
	}

	te.recordLogin(ctx, user.ID)

	claims, err := te.payload(ctx, user, client, device)
	if err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}

	accessToken, expiresAt, err := te.tokens.CreateAccessToken(claims, client.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	refreshToken, err := te.refresh.Create(ctx, &refresh.Record{
		ClientID:             client.ClientID,
		UserID:               user.ID,
		Username:             user.Username,
		AccessToken:          accessToken,
		ExternalAuthToken:    user.ExternalAuthToken,
		ExternalRefreshToken: user.ExternalRefreshToken,
	}, client.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expires:      expiresAt.UnixMilli(),
	}, nil
}

// Refresh rotates a refresh token. The old record is taken atomically so a
// token can be rotated at most once, and its access token is revoked even
// when the rotation then fails.
func (te *TokenExchanger) Refresh(ctx context.Context, refreshToken string, device DeviceInfo) (*TokenPair, error) {
	pair, err := te.rotate(ctx, refreshToken, device)
	return pair, sanitize("Refresh", err)
}

func (te *TokenExchanger) rotate(ctx context.Context, refreshToken string, device DeviceInfo) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, autherrors.ErrTokenExpired
	}

	rec, err := te.refresh.Take(ctx, refreshToken)
	if errors.Is(err, refresh.ErrNotFound) {
		return nil, autherrors.ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("take refresh record: %w", err)
	}

	// The record is gone once taken, so its access token goes with it before
	// anything else can fail.
	if rec.AccessToken != "" {
		if err := te.tokens.Revoke(ctx, rec.AccessToken, revokeFallbackTTL); err != nil {
			return nil, err
		}
	}

	client, err := te.clients.Get(ctx, rec.ClientID)
	if errors.Is(err, clients.ErrNotFound) {
		return nil, autherrors.ErrClientInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	return te.createAccessTokenPair(ctx, PayloadForUserID(rec.ClientID, rec.UserID), client, device)
}

func (te *TokenExchanger) resolveUser(ctx context.Context, payload CodePayload) (*users.User, error) {
	switch payload.Subject {
	case SubjectUser:
		if payload.User != nil {
			return payload.User, nil
		}
	case SubjectUserID:
		if payload.UserID == "" {
			break
		}
		user, err := te.users.GetByID(ctx, payload.UserID)
		if errors.Is(err, users.ErrNotFound) {
			return nil, autherrors.ErrUserDoesNotExist
		}
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		return user, nil
	}
	return nil, autherrors.ErrUserDoesNotExist
}

// recordLogin is bookkeeping only. Failures are logged and swallowed.
func (te *TokenExchanger) recordLogin(ctx context.Context, userID string) {
	first, err := te.users.FirstTimeUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("first login check failed")
		return
	}
	if err := te.users.UpdateLastLogin(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("update last login failed")
		return
	}
	log.Debug().Str("user_id", userID).Bool("first_login", first).Msg("login recorded")
}
