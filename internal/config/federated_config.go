package config

import "strings"

// ProviderSettings is the resolved configuration of one external identity provider.
type ProviderSettings struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// Enabled reports whether the provider has been configured.
func (p ProviderSettings) Enabled() bool {
	return p.ClientID != ""
}

type FederatedConfig interface {
	GetGoogle() ProviderSettings
	GetKeycloak() ProviderSettings
}

type Federated struct {
	GoogleAuthURL      string `env:"GOOGLE_AUTH_URL"`
	GoogleTokenURL     string `env:"GOOGLE_AUTH_TOKEN_URL"`
	GoogleUserInfoURL  string `env:"GOOGLE_AUTH_USERINFO_URL"`
	GoogleClientID     string `env:"GOOGLE_AUTH_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_AUTH_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_AUTH_CALLBACK_URL"`

	KeycloakHost         string `env:"KEYCLOAK_HOST"`
	KeycloakRealm        string `env:"KEYCLOAK_REALM"`
	KeycloakClientID     string `env:"KEYCLOAK_CLIENT_ID"`
	KeycloakClientSecret string `env:"KEYCLOAK_CLIENT_SECRET"`
	KeycloakCallbackURL  string `env:"KEYCLOAK_CALLBACK_URL"`
}

var _ FederatedConfig = Federated{}

// GetGoogle leaves empty endpoints for the provider package to default.
func (f Federated) GetGoogle() ProviderSettings {
	return ProviderSettings{
		ClientID:     f.GoogleClientID,
		ClientSecret: f.GoogleClientSecret,
		CallbackURL:  f.GoogleCallbackURL,
		AuthURL:      f.GoogleAuthURL,
		TokenURL:     f.GoogleTokenURL,
		UserInfoURL:  f.GoogleUserInfoURL,
	}
}

// GetKeycloak derives the endpoints from host and realm. Without both the
// endpoints stay empty and the provider refuses to start.
func (f Federated) GetKeycloak() ProviderSettings {
	settings := ProviderSettings{
		ClientID:     f.KeycloakClientID,
		ClientSecret: f.KeycloakClientSecret,
		CallbackURL:  f.KeycloakCallbackURL,
	}
	if strings.TrimSpace(f.KeycloakHost) == "" || strings.TrimSpace(f.KeycloakRealm) == "" {
		return settings
	}
	base := KeycloakRealmURL(f.KeycloakHost, f.KeycloakRealm)
	settings.AuthURL = base + "/auth"
	settings.TokenURL = base + "/token"
	settings.UserInfoURL = base + "/userinfo"
	return settings
}

// KeycloakRealmURL returns the openid-connect base of a realm.
func KeycloakRealmURL(host, realm string) string {
	return strings.TrimRight(host, "/") + "/auth/realms/" + realm + "/protocol/openid-connect"
}
