package auth

import (
	"context"
	"errors"
	"fmt"

	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/jrsteele09/go-auth-exchange/users"
)

type ResetRequest struct {
	RefreshToken string
	Username     string
	Password     string
	OldPassword  string
}

// PasswordResetFlow changes a password from inside a live session and then
// ends that session.
type PasswordResetFlow struct {
	users   users.Repo
	tenants tenants.Repo
	tokens  *token.Manager
	refresh *refresh.Manager
}

// Reset runs its checks in order and stops at the first failure. On success
// the bearer token is revoked and the refresh record deleted.
func (pr *PasswordResetFlow) Reset(ctx context.Context, bearer string, req ResetRequest, current *AuthUser) error {
	return sanitize("PasswordResetFlow.Reset", pr.reset(ctx, bearer, req, current))
}

func (pr *PasswordResetFlow) reset(ctx context.Context, bearer string, req ResetRequest, current *AuthUser) error {
	if bearer == "" || req.RefreshToken == "" {
		return autherrors.ErrTokenMissing
	}
	if current == nil {
		return autherrors.ErrTokenInvalid
	}

	rec, err := pr.refresh.Get(ctx, req.RefreshToken)
	if errors.Is(err, refresh.ErrNotFound) {
		return autherrors.ErrTokenExpired
	}
	if err != nil {
		return fmt.Errorf("get refresh record: %w", err)
	}

	if rec.AccessToken != bearer {
		return autherrors.ErrTokenInvalid
	}
	if rec.Username != req.Username || current.Username != req.Username {
		return autherrors.ErrNotAllowedAccess
	}
	if req.Password == "" {
		return autherrors.ErrPasswordInvalid
	}

	var updated *users.User
	if req.OldPassword != "" {
		updated, err = pr.users.UpdatePassword(ctx, req.Username, req.OldPassword, req.Password)
	} else {
		updated, err = pr.users.ChangePassword(ctx, req.Username, req.Password)
	}
	if errors.Is(err, users.ErrPasswordMismatch) {
		return autherrors.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if updated == nil {
		return autherrors.ErrUnableToSetPassword
	}

	ut, err := pr.tenants.Get(ctx, updated.ID, current.TenantID)
	if errors.Is(err, tenants.ErrNotFound) {
		return autherrors.ErrUserInactive
	}
	if err != nil {
		return fmt.Errorf("get user tenant: %w", err)
	}
	if ut.Status < tenants.StatusActive {
		if err := pr.tenants.SetStatus(ctx, updated.ID, current.TenantID, tenants.StatusActive); err != nil {
			return fmt.Errorf("activate user tenant: %w", err)
		}
	}

	// A token that can no longer be parsed for exp has already expired, so no
	// fallback lifetime is needed.
	if err := pr.tokens.Revoke(ctx, bearer, 0); err != nil {
		return err
	}
	if err := pr.refresh.Delete(ctx, req.RefreshToken); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}
