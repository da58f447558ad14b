package clients

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Client is a registered application allowed to obtain codes and tokens.
// Expirations are held in seconds, as stored.
type Client struct {
	ID                     string `json:"id"`
	ClientID               string `json:"clientId"`
	Secret                 string `json:"-"`
	RedirectURL            string `json:"redirectUrl,omitempty"`
	AuthCodeExpiration     int    `json:"authCodeExpiration"`
	AccessTokenExpiration  int    `json:"accessTokenExpiration"`
	RefreshTokenExpiration int    `json:"refreshTokenExpiration"`
}

func (c *Client) AuthCodeTTL() time.Duration {
	return time.Duration(c.AuthCodeExpiration) * time.Second
}

func (c *Client) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiration) * time.Second
}

func (c *Client) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiration) * time.Second
}

// VerifySecret compares a presented secret against the stored one. Stored
// bcrypt hashes are checked with bcrypt, plain values in constant time.
func (c *Client) VerifySecret(secret string) bool {
	if secret == "" || c.Secret == "" {
		return false
	}
	if isBcryptHash(c.Secret) {
		return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}

// SigningSecret is the key authorization codes for this client are signed with.
// It is the stored value, so a bcrypt-hashed secret signs with the hash and the
// client cannot verify its codes with the plaintext.
func (c *Client) SigningSecret() []byte {
	return []byte(c.Secret)
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
