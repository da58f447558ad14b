package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-exchange/clients"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/jrsteele09/go-auth-exchange/users"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users   users.Repo   // Repository for user data
	Clients clients.Repo // Repository for registered clients
	Tenants tenants.Repo // Repository for user tenant memberships
}

// Service wires the authentication components together.
type Service struct {
	Clients   *ClientAuthenticator
	Users     *UserAuthenticator
	Codes     *CodeIssuer
	Tokens    *TokenExchanger
	Federated *FederatedBridge
	Passwords *PasswordResetFlow

	tokens *token.Manager
}

type serviceOptions struct {
	nowTime   func() time.Time
	payload   PayloadProvider
	writer    CodeWriter
	reader    CodeReader
	usedCodes token.UsedCodeGuard
	providers []IdentityProvider
}

// ServiceOption defines a function type to modify the Service construction.
type ServiceOption func(*serviceOptions)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		o.nowTime = nowFunc
	}
}

func WithPayloadProvider(p PayloadProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.payload = p
	}
}

func WithCodeWriter(w CodeWriter) ServiceOption {
	return func(o *serviceOptions) {
		o.writer = w
	}
}

func WithCodeReader(r CodeReader) ServiceOption {
	return func(o *serviceOptions) {
		o.reader = r
	}
}

// WithUsedCodeGuard makes authorization codes single use.
func WithUsedCodeGuard(g token.UsedCodeGuard) ServiceOption {
	return func(o *serviceOptions) {
		o.usedCodes = g
	}
}

func WithIdentityProviders(providers ...IdentityProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.providers = append(o.providers, providers...)
	}
}

func NewService(
	repos Repos,
	tokens *token.Manager,
	refreshTokens *refresh.Manager,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Clients == nil {
		return nil, errors.New("[NewService] Clients repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[NewService] Tenants repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if refreshTokens == nil {
		return nil, errors.New("[NewService] refresh token manager is required")
	}

	o := serviceOptions{
		nowTime: time.Now,
		payload: DefaultPayloadProvider,
		writer:  passThroughCode,
		reader:  passThroughCode,
	}
	for _, opt := range options {
		opt(&o)
	}

	clientAuth, err := NewClientAuthenticator(repos.Clients)
	if err != nil {
		return nil, err
	}
	userAuth, err := NewUserAuthenticator(repos.Users, repos.Tenants)
	if err != nil {
		return nil, err
	}
	codes, err := NewCodeIssuer(tokens.Issuer(), o.nowTime)
	if err != nil {
		return nil, err
	}

	providers := make(map[string]IdentityProvider, len(o.providers))
	for _, p := range o.providers {
		providers[p.Name()] = p
	}

	return &Service{
		Clients: clientAuth,
		Users:   userAuth,
		Codes:   codes,
		Tokens: &TokenExchanger{
			users:     repos.Users,
			clients:   repos.Clients,
			codes:     codes,
			tokens:    tokens,
			refresh:   refreshTokens,
			payload:   o.payload,
			reader:    o.reader,
			usedCodes: o.usedCodes,
			nowFunc:   o.nowTime,
		},
		Federated: &FederatedBridge{
			clients:   repos.Clients,
			users:     userAuth,
			codes:     codes,
			writer:    o.writer,
			providers: providers,
		},
		Passwords: &PasswordResetFlow{
			users:   repos.Users,
			tenants: repos.Tenants,
			tokens:  tokens,
			refresh: refreshTokens,
		},
		tokens: tokens,
	}, nil
}

// Login authenticates a local user for an already verified client and
// returns an authorization code.
func (s *Service) Login(ctx context.Context, client *clients.Client, username, password string) (string, error) {
	user, err := s.Users.Authenticate(ctx, username, password)
	if err != nil {
		return "", sanitize("Login", err)
	}
	if err := s.Users.CheckActive(ctx, user, MsgUserNotActive); err != nil {
		return "", sanitize("Login", err)
	}
	code, err := s.Codes.Issue(PayloadForUserID(client.ClientID, user.ID), client)
	return code, sanitize("Login", err)
}

// LoginToken is the resource-owner password grant: it skips the code and
// returns a token pair directly.
func (s *Service) LoginToken(ctx context.Context, client *clients.Client, username, password string, device DeviceInfo) (*TokenPair, error) {
	user, err := s.Users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, sanitize("LoginToken", err)
	}
	if err := s.Users.CheckClientAssociation(user, client); err != nil {
		return nil, err
	}
	if err := s.Users.CheckActive(ctx, user, MsgSignUpInProcess); err != nil {
		return nil, sanitize("LoginToken", err)
	}
	return s.Tokens.IssueDirect(ctx, client, user, device)
}

// CurrentUser validates a bearer access token and returns who it belongs to.
func (s *Service) CurrentUser(ctx context.Context, bearer string) (*AuthUser, error) {
	if bearer == "" {
		return nil, autherrors.ErrTokenMissing
	}

	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, bearer)
	if err != nil {
		return nil, sanitize("CurrentUser", fmt.Errorf("check revoked: %w", err))
	}
	if revoked {
		return nil, autherrors.ErrTokenInvalid
	}

	au, err := authUserFromClaims(claims)
	if err != nil || (au.ID == "" && au.Username == "") {
		return nil, autherrors.ErrTokenInvalid
	}
	return au, nil
}
