// Package federated drives the OAuth2 authorization-code round trip against an
// external identity provider and resolves the signed-in identity from its
// userinfo endpoint.
package federated

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-exchange/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleName   = "google"
	KeycloakName = "keycloak"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Identity is what the provider told us about the user.
type Identity struct {
	Subject      string
	Email        string
	Username     string
	Name         string
	AccessToken  string
	RefreshToken string
}

type Config struct {
	Name         string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
	AuthOptions  []oauth2.AuthCodeOption
}

type Provider struct {
	name     string
	oauth    *oauth2.Config
	oidc     *oidc.Provider
	authOpts []oauth2.AuthCodeOption
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Name == "" {
		return nil, errors.New("[federated.New] name is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("[federated.New] %s client id and secret are required", cfg.Name)
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.UserInfoURL == "" {
		return nil, fmt.Errorf("[federated.New] %s endpoints are required", cfg.Name)
	}

	oidcProvider := (&oidc.ProviderConfig{
		AuthURL:     cfg.AuthURL,
		TokenURL:    cfg.TokenURL,
		UserInfoURL: cfg.UserInfoURL,
	}).NewProvider(ctx)

	return &Provider{
		name: cfg.Name,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       cfg.Scopes,
		},
		oidc:     oidcProvider,
		authOpts: cfg.AuthOptions,
	}, nil
}

// NewGoogle requests profile and email with offline access so a refresh
// token is returned. Unset endpoints default to Google's.
func NewGoogle(ctx context.Context, s config.ProviderSettings) (*Provider, error) {
	return New(ctx, Config{
		Name:         GoogleName,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		CallbackURL:  s.CallbackURL,
		AuthURL:      orDefault(s.AuthURL, google.Endpoint.AuthURL),
		TokenURL:     orDefault(s.TokenURL, google.Endpoint.TokenURL),
		UserInfoURL:  orDefault(s.UserInfoURL, googleUserInfoURL),
		Scopes:       []string{"profile", "email"},
		AuthOptions:  []oauth2.AuthCodeOption{oauth2.AccessTypeOffline},
	})
}

func NewKeycloak(ctx context.Context, s config.ProviderSettings) (*Provider, error) {
	return New(ctx, Config{
		Name:         KeycloakName,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		CallbackURL:  s.CallbackURL,
		AuthURL:      s.AuthURL,
		TokenURL:     s.TokenURL,
		UserInfoURL:  s.UserInfoURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	})
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, p.authOpts...)
}

// Exchange trades the callback code for provider tokens, then asks the
// userinfo endpoint who they belong to.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, fmt.Errorf("[%s] missing authorization code", p.name)
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[%s] exchange code: %w", p.name, err)
	}

	info, err := p.oidc.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, fmt.Errorf("[%s] fetch userinfo: %w", p.name, err)
	}

	var profile struct {
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
	}
	if err := info.Claims(&profile); err != nil {
		return nil, fmt.Errorf("[%s] decode userinfo: %w", p.name, err)
	}

	return &Identity{
		Subject:      info.Subject,
		Email:        info.Email,
		Username:     orDefault(profile.PreferredUsername, info.Email),
		Name:         profile.Name,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
