package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-auth-exchange/clients"
	"github.com/jrsteele09/go-auth-exchange/federated"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	"github.com/jrsteele09/go-auth-exchange/users"
)

const (
	MsgUserNotActive   = "User not active yet"
	MsgSignUpInProcess = "Your Sign-Up request is in process"
)

type UserAuthenticator struct {
	users   users.Repo
	tenants tenants.Repo
}

func NewUserAuthenticator(userRepo users.Repo, tenantRepo tenants.Repo) (*UserAuthenticator, error) {
	if userRepo == nil {
		return nil, errors.New("[NewUserAuthenticator] Users repo is required")
	}
	if tenantRepo == nil {
		return nil, errors.New("[NewUserAuthenticator] Tenants repo is required")
	}
	return &UserAuthenticator{users: userRepo, tenants: tenantRepo}, nil
}

// Authenticate checks a local username and password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (ua *UserAuthenticator) Authenticate(ctx context.Context, username, password string) (*users.User, error) {
	if username == "" || password == "" {
		return nil, autherrors.ErrInvalidCredentials
	}

	user, err := ua.users.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, autherrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("[UserAuthenticator.Authenticate] %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, autherrors.ErrInvalidCredentials
	}
	return user, nil
}

// CheckActive rejects users whose membership is still REGISTERED. A user with
// no membership at all is let through.
func (ua *UserAuthenticator) CheckActive(ctx context.Context, user *users.User, message string) error {
	ut, err := ua.tenants.GetByUser(ctx, user.ID)
	if errors.Is(err, tenants.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[UserAuthenticator.CheckActive] %w", err)
	}
	if ut.Status == tenants.StatusRegistered {
		return autherrors.WithMessage(autherrors.ErrUserNotActive, message)
	}
	return nil
}

func (ua *UserAuthenticator) CheckClientAssociation(user *users.User, client *clients.Client) error {
	if len(user.AuthClientIDs) == 0 {
		return autherrors.ErrClientUserMissing
	}
	if !user.HasClient(client.ClientID) {
		return autherrors.ErrClientInvalid
	}
	return nil
}

// ResolveFederated maps a provider identity onto a local user, by email first
// and then by username. The provider's tokens ride along on the user.
func (ua *UserAuthenticator) ResolveFederated(ctx context.Context, id *federated.Identity) (*users.User, error) {
	if id == nil {
		return nil, autherrors.ErrInvalidCredentials
	}

	user, err := ua.lookupFederated(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ua.CheckActive(ctx, user, MsgUserNotActive); err != nil {
		return nil, err
	}

	user.ExternalAuthToken = id.AccessToken
	user.ExternalRefreshToken = id.RefreshToken
	return user, nil
}

func (ua *UserAuthenticator) lookupFederated(ctx context.Context, id *federated.Identity) (*users.User, error) {
	if id.Email != "" {
		user, err := ua.users.GetByEmail(ctx, id.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("[UserAuthenticator.ResolveFederated] %w", err)
		}
	}
	if id.Username != "" {
		user, err := ua.users.GetByUsername(ctx, id.Username)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("[UserAuthenticator.ResolveFederated] %w", err)
		}
	}
	return nil, autherrors.ErrInvalidCredentials
}
