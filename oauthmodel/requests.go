package oauthmodel

import "github.com/jrsteele09/go-auth-exchange/auth"

// LoginRequest is the body of /auth/login and /auth/login-token.
type LoginRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// ClientAuthRequest carries client credentials on their own, e.g. in the
// form posted to the federated login routes.
type ClientAuthRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type AuthTokenRequest struct {
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

type AuthRefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ResetPasswordRequest is the body of /auth/change-password. When OldPassword
// is empty the password is replaced without checking the current one.
type ResetPasswordRequest struct {
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	OldPassword  string `json:"oldPassword,omitempty"`
}

func (r ResetPasswordRequest) ToReset() auth.ResetRequest {
	return auth.ResetRequest{
		RefreshToken: r.RefreshToken,
		Username:     r.Username,
		Password:     r.Password,
		OldPassword:  r.OldPassword,
	}
}
