package users

import (
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID                   string     `json:"id,omitempty"`
	Username             string     `json:"username,omitempty"`
	Email                string     `json:"email,omitempty"`
	FirstName            string     `json:"firstName,omitempty"`
	LastName             string     `json:"lastName,omitempty"`
	DefaultTenantID      string     `json:"defaultTenantId,omitempty"`
	AuthClientIDs        []string   `json:"authClientIds,omitempty"`
	PasswordHash         string     `json:"-"` // never serialize
	LastLogin            *time.Time `json:"lastLogin,omitempty"`
	ExternalAuthToken    string     `json:"externalAuthToken,omitempty"`
	ExternalRefreshToken string     `json:"externalRefreshToken,omitempty"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return CheckPasswordHash(password, u.PasswordHash)
}

// HasClient reports whether the user may sign in through the given client.
func (u *User) HasClient(clientID string) bool {
	return slices.Contains(u.AuthClientIDs, clientID)
}
