package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-exchange/clients"
	"github.com/jrsteele09/go-auth-exchange/users"
)

// DeviceInfo is recorded for traceability only. It is never an identity factor.
type DeviceInfo struct {
	DeviceID  string `json:"deviceId,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// AuthUser is the identity carried in access token claims.
type AuthUser struct {
	ID         string      `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email,omitempty"`
	FirstName  string      `json:"firstName,omitempty"`
	LastName   string      `json:"lastName,omitempty"`
	TenantID   string      `json:"tenantId,omitempty"`
	ClientID   string      `json:"clientId,omitempty"`
	DeviceInfo *DeviceInfo `json:"deviceInfo,omitempty"`
}

// TokenPair is returned by every token-issuing path. Expires is an absolute
// epoch timestamp in milliseconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Expires      int64  `json:"expires"`
}

// CodeSubject says which half of a CodePayload is populated.
type CodeSubject int

const (
	SubjectUserID CodeSubject = iota
	SubjectUser
)

// CodePayload binds a client to either a user id or a fully resolved user.
type CodePayload struct {
	ClientID string
	Subject  CodeSubject
	UserID   string
	User     *users.User
}

func PayloadForUserID(clientID, userID string) CodePayload {
	return CodePayload{ClientID: clientID, Subject: SubjectUserID, UserID: userID}
}

func PayloadForUser(clientID string, user *users.User) CodePayload {
	return CodePayload{ClientID: clientID, Subject: SubjectUser, User: user}
}

// CodeWriter transforms a freshly issued code before it leaves the service.
type CodeWriter func(ctx context.Context, code string) (string, error)

// CodeReader undoes whatever the CodeWriter did.
type CodeReader func(ctx context.Context, code string) (string, error)

func passThroughCode(_ context.Context, code string) (string, error) {
	return code, nil
}

// PayloadProvider builds the claims of an access token. Registered claims
// (iss, iat, exp, jti) are added afterwards and override anything returned.
type PayloadProvider func(ctx context.Context, user *users.User, client *clients.Client, device DeviceInfo) (jwt.MapClaims, error)

// DefaultPayloadProvider puts an AuthUser into the token.
func DefaultPayloadProvider(_ context.Context, user *users.User, client *clients.Client, device DeviceInfo) (jwt.MapClaims, error) {
	au := AuthUser{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		TenantID:   user.DefaultTenantID,
		ClientID:   client.ClientID,
		DeviceInfo: &device,
	}
	data, err := json.Marshal(au)
	if err != nil {
		return nil, fmt.Errorf("marshal auth user: %w", err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal auth user claims: %w", err)
	}
	return claims, nil
}

func authUserFromClaims(claims jwt.MapClaims) (*AuthUser, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return nil, err
	}
	au := &AuthUser{}
	if err := json.Unmarshal(data, au); err != nil {
		return nil, err
	}
	return au, nil
}
