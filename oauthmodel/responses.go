package oauthmodel

import "github.com/jrsteele09/go-auth-exchange/auth"

// TokenResponse is returned by every endpoint that issues a token pair.
// Expires is the access token expiry in epoch milliseconds.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Expires      int64  `json:"expires"`
}

func NewTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Expires:      pair.Expires,
	}
}

type CodeResponse struct {
	Code string `json:"code"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}
