package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-exchange/clients"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/users"
)

// codeClaims is the body of an authorization code. Exactly one of UserID and
// User is set.
type codeClaims struct {
	ClientID string      `json:"clientId"`
	UserID   string      `json:"userId,omitempty"`
	User     *users.User `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// VerifiedCode is a code that passed signature, audience, issuer and expiry checks.
type VerifiedCode struct {
	Payload   CodePayload
	ID        string
	ExpiresAt time.Time
}

// CodeIssuer mints authorization codes signed with the requesting client's
// own secret, so a code for one client cannot be redeemed by another.
type CodeIssuer struct {
	issuer  string
	nowFunc func() time.Time
}

func NewCodeIssuer(issuer string, now func() time.Time) (*CodeIssuer, error) {
	if issuer == "" {
		return nil, errors.New("[NewCodeIssuer] issuer is required")
	}
	if now == nil {
		now = time.Now
	}
	return &CodeIssuer{issuer: issuer, nowFunc: now}, nil
}

func (ci *CodeIssuer) Issue(payload CodePayload, client *clients.Client) (string, error) {
	now := ci.nowFunc()
	claims := codeClaims{
		ClientID: payload.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ci.issuer,
			Audience:  jwt.ClaimStrings{client.ClientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(client.AuthCodeTTL())),
			ID:        uuid.New().String(),
		},
	}

	switch payload.Subject {
	case SubjectUser:
		if payload.User == nil {
			return "", errors.New("[CodeIssuer.Issue] user payload without user")
		}
		claims.User = payload.User
	case SubjectUserID:
		if payload.UserID == "" {
			return "", errors.New("[CodeIssuer.Issue] user id payload without id")
		}
		claims.UserID = payload.UserID
	default:
		return "", fmt.Errorf("[CodeIssuer.Issue] unknown code subject %d", payload.Subject)
	}

	code, err := token.NewHMACSigner(client.SigningSecret()).Sign(claims)
	if err != nil {
		return "", fmt.Errorf("[CodeIssuer.Issue] %w", err)
	}
	return code, nil
}

// Verify checks a code against the client it claims to be for. An expired
// code yields CodeExpired, every other failure InvalidCredentials.
func (ci *CodeIssuer) Verify(raw string, client *clients.Client) (*VerifiedCode, error) {
	signer := token.NewHMACSigner(client.SigningSecret())
	claims := &codeClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, signer.GetVerificationKey,
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithAudience(client.ClientID),
		jwt.WithIssuer(ci.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ci.nowFunc),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, autherrors.WithCause(autherrors.ErrCodeExpired, err)
	}
	if err != nil {
		return nil, autherrors.WithCause(autherrors.ErrInvalidCredentials, err)
	}
	if claims.ClientID != client.ClientID {
		return nil, autherrors.ErrInvalidCredentials
	}

	vc := &VerifiedCode{ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
	switch {
	case claims.User != nil:
		vc.Payload = PayloadForUser(claims.ClientID, claims.User)
	case claims.UserID != "":
		vc.Payload = PayloadForUserID(claims.ClientID, claims.UserID)
	default:
		return nil, autherrors.ErrInvalidCredentials
	}
	return vc, nil
}
