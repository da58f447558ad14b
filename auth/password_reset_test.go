package auth_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-auth-exchange/auth"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/jrsteele09/go-auth-exchange/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-exchange/users/repofake"
	"github.com/stretchr/testify/require"
)

// noopPasswordRepo reports that nothing was updated.
type noopPasswordRepo struct {
	*fakeuserrepo.FakeUserRepo
}

func (r noopPasswordRepo) ChangePassword(context.Context, string, string) (*users.User, error) {
	return nil, nil
}

type resetSession struct {
	pair    *auth.TokenPair
	current *auth.AuthUser
}

func (f *testFixture) openSession(t *testing.T) resetSession {
	t.Helper()
	client, err := f.clientRepo.Get(f.ctx, testClientID)
	require.NoError(t, err)
	pair := f.loginPair(t, client)
	current, err := f.service.CurrentUser(f.ctx, pair.AccessToken)
	require.NoError(t, err)
	return resetSession{pair: pair, current: current}
}

func (s resetSession) request(password string) auth.ResetRequest {
	return auth.ResetRequest{RefreshToken: s.pair.RefreshToken, Username: testUsername, Password: password}
}

func TestPasswordReset_Validation(t *testing.T) {
	f := setupTestFixture(t)
	f.setupDefaults(t)
	s := f.openSession(t)
	other := f.openSession(t)

	strangerUser := *s.current
	strangerUser.Username = "someone-else"

	tests := []struct {
		name    string
		bearer  string
		req     auth.ResetRequest
		current *auth.AuthUser
		wantErr error
	}{
		{"missing bearer", "", s.request("new"), s.current, autherrors.ErrTokenMissing},
		{"missing refresh token", s.pair.AccessToken, auth.ResetRequest{Username: testUsername, Password: "new"}, s.current, autherrors.ErrTokenMissing},
		{"unknown refresh token", s.pair.AccessToken, auth.ResetRequest{RefreshToken: "nope", Username: testUsername, Password: "new"}, s.current, autherrors.ErrTokenExpired},
		{"bearer from another session", other.pair.AccessToken, s.request("new"), s.current, autherrors.ErrTokenInvalid},
		{"requested username mismatch", s.pair.AccessToken, auth.ResetRequest{RefreshToken: s.pair.RefreshToken, Username: "someone-else", Password: "new"}, s.current, autherrors.ErrNotAllowedAccess},
		{"caller username mismatch", s.pair.AccessToken, s.request("new"), &strangerUser, autherrors.ErrNotAllowedAccess},
		{"empty password", s.pair.AccessToken, s.request(""), s.current, autherrors.ErrPasswordInvalid},
		{"wrong old password", s.pair.AccessToken, auth.ResetRequest{RefreshToken: s.pair.RefreshToken, Username: testUsername, Password: "new", OldPassword: "wrong"}, s.current, autherrors.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.Passwords.Reset(f.ctx, tt.bearer, tt.req, tt.current)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// None of the failures consumed the session.
	_, err := f.refresh.Get(f.ctx, s.pair.RefreshToken)
	require.NoError(t, err)
}

func TestPasswordReset_MissingMembership(t *testing.T) {
	f := setupTestFixture(t)
	f.setupDefaults(t)
	s := f.openSession(t)

	elsewhere := *s.current
	elsewhere.TenantID = "tenant-2"

	err := f.service.Passwords.Reset(f.ctx, s.pair.AccessToken, s.request("new-password"), &elsewhere)
	require.ErrorIs(t, err, autherrors.ErrUserInactive)
}

func TestPasswordReset_NothingUpdated(t *testing.T) {
	f := setupTestFixture(t)
	f.setupDefaults(t)
	s := f.openSession(t)

	service, err := auth.NewService(
		auth.Repos{Users: noopPasswordRepo{f.userRepo}, Clients: f.clientRepo, Tenants: f.tenantsRepo},
		f.tokens, f.refresh,
	)
	require.NoError(t, err)

	err = service.Passwords.Reset(f.ctx, s.pair.AccessToken, s.request("new-password"), s.current)
	require.ErrorIs(t, err, autherrors.ErrUnableToSetPassword)
	require.Equal(t, 422, autherrors.StatusCode(err))
}

func TestPasswordReset_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.setupDefaults(t)
	s := f.openSession(t)

	require.NoError(t, f.tenantsRepo.SetStatus(f.ctx, testUserID, testTenantID, tenants.StatusRegistered))

	req := s.request("new-password")
	req.OldPassword = testUserPassword
	require.NoError(t, f.service.Passwords.Reset(f.ctx, s.pair.AccessToken, req, s.current))

	ut, err := f.tenantsRepo.Get(f.ctx, testUserID, testTenantID)
	require.NoError(t, err)
	require.Equal(t, tenants.StatusActive, ut.Status)

	_, err = f.refresh.Get(f.ctx, s.pair.RefreshToken)
	require.ErrorIs(t, err, refresh.ErrNotFound)

	_, err = f.service.CurrentUser(f.ctx, s.pair.AccessToken)
	require.ErrorIs(t, err, autherrors.ErrTokenInvalid)

	_, err = f.service.Users.Authenticate(f.ctx, testUsername, testUserPassword)
	require.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	_, err = f.service.Users.Authenticate(f.ctx, testUsername, "new-password")
	require.NoError(t, err)
}

func TestPasswordReset_PrivilegedChange(t *testing.T) {
	f := setupTestFixture(t)
	f.setupDefaults(t)
	s := f.openSession(t)

	require.NoError(t, f.service.Passwords.Reset(f.ctx, s.pair.AccessToken, s.request("new-password"), s.current))

	ut, err := f.tenantsRepo.Get(f.ctx, testUserID, testTenantID)
	require.NoError(t, err)
	require.Equal(t, tenants.StatusActive, ut.Status)

	_, err = f.service.Users.Authenticate(f.ctx, testUsername, "new-password")
	require.NoError(t, err)
}
