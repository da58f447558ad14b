package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-exchange/auth"
	autherrors "github.com/jrsteele09/go-auth-exchange/internal/errors"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	"github.com/stretchr/testify/require"
)

func TestNewService_Validation(t *testing.T) {
	f := setupTestFixture(t)

	_, err := auth.NewService(auth.Repos{Clients: f.clientRepo, Tenants: f.tenantsRepo}, f.tokens, f.refresh)
	require.ErrorContains(t, err, "Users repo is required")

	_, err = auth.NewService(auth.Repos{Users: f.userRepo, Tenants: f.tenantsRepo}, f.tokens, f.refresh)
	require.ErrorContains(t, err, "Clients repo is required")

	_, err = auth.NewService(auth.Repos{Users: f.userRepo, Clients: f.clientRepo}, f.tokens, f.refresh)
	require.ErrorContains(t, err, "Tenants repo is required")

	repos := auth.Repos{Users: f.userRepo, Clients: f.clientRepo, Tenants: f.tenantsRepo}
	_, err = auth.NewService(repos, nil, f.refresh)
	require.ErrorContains(t, err, "token manager is required")

	_, err = auth.NewService(repos, f.tokens, nil)
	require.ErrorContains(t, err, "refresh token manager is required")
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	client, _ := f.setupDefaults(t)

	code, err := f.service.Login(f.ctx, client, testUsername, testUserPassword)
	require.NoError(t, err)

	verified, err := f.service.Codes.Verify(code, client)
	require.NoError(t, err)
	require.Equal(t, testUserID, verified.Payload.UserID)

	_, err = f.service.Login(f.ctx, client, testUsername, "wrong")
	require.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
}

func TestLogin_RegisteredUser(t *testing.T) {
	f := setupTestFixture(t)
	client := f.createTestClient(t, defaultTestClient())
	u := defaultTestUser()
	u.Status = tenants.StatusRegistered
	f.createTestUser(t, u)

	_, err := f.service.Login(f.ctx, client, testUsername, testUserPassword)
	require.ErrorIs(t, err, autherrors.ErrUserNotActive)
	require.Equal(t, auth.MsgUserNotActive, err.Error())
}

func TestLoginToken(t *testing.T) {
	f := setupTestFixture(t)
	client, _ := f.setupDefaults(t)

	pair, err := f.service.LoginToken(f.ctx, client, testUsername, testUserPassword, auth.DeviceInfo{UserAgent: "curl"})
	require.NoError(t, err)
	require.Equal(t, f.clock.Now().Add(time.Hour).UnixMilli(), pair.Expires)
}

func TestLoginToken_Gates(t *testing.T) {
	f := setupTestFixture(t)
	client := f.createTestClient(t, defaultTestClient())

	noClients := defaultTestUser()
	noClients.ClientIDs = nil
	f.createTestUser(t, noClients)

	_, err := f.service.LoginToken(f.ctx, client, testUsername, testUserPassword, auth.DeviceInfo{})
	require.ErrorIs(t, err, autherrors.ErrClientUserMissing)

	otherClient := defaultTestUser()
	otherClient.ID, otherClient.Username, otherClient.Email = "user-2", "other", "other@example.com"
	otherClient.ClientIDs = []string{"client-b"}
	f.createTestUser(t, otherClient)

	_, err = f.service.LoginToken(f.ctx, client, "other", testUserPassword, auth.DeviceInfo{})
	require.ErrorIs(t, err, autherrors.ErrClientInvalid)

	registered := defaultTestUser()
	registered.ID, registered.Username, registered.Email = "user-3", "pending", "pending@example.com"
	registered.Status = tenants.StatusRegistered
	f.createTestUser(t, registered)

	_, err = f.service.LoginToken(f.ctx, client, "pending", testUserPassword, auth.DeviceInfo{})
	require.ErrorIs(t, err, autherrors.ErrUserNotActive)
	require.Equal(t, auth.MsgSignUpInProcess, err.Error())
}

func TestCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	client, _ := f.setupDefaults(t)
	pair := f.loginPair(t, client)

	me, err := f.service.CurrentUser(f.ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testUserID, me.ID)
	require.Equal(t, testUsername, me.Username)
	require.Equal(t, testTenantID, me.TenantID)
	require.Equal(t, "test-agent", me.DeviceInfo.UserAgent)

	_, err = f.service.CurrentUser(f.ctx, "")
	require.ErrorIs(t, err, autherrors.ErrTokenMissing)

	_, err = f.service.CurrentUser(f.ctx, "garbage")
	require.ErrorIs(t, err, autherrors.ErrTokenInvalid)

	f.clock.Advance(2 * time.Hour)
	_, err = f.service.CurrentUser(f.ctx, pair.AccessToken)
	require.ErrorIs(t, err, autherrors.ErrTokenExpired)
}

// TestRoundTrip walks login, code exchange and rotation for a single user.
func TestRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	client, _ := f.setupDefaults(t)

	code, err := f.service.Login(f.ctx, client, testUsername, testUserPassword)
	require.NoError(t, err)

	pair, err := f.service.Tokens.ExchangeCode(f.ctx, testClientID, code, auth.DeviceInfo{})
	require.NoError(t, err)
	require.Equal(t, f.clock.Now().Add(3600*time.Second).UnixMilli(), pair.Expires)

	rotated, err := f.service.Tokens.Refresh(f.ctx, pair.RefreshToken, auth.DeviceInfo{})
	require.NoError(t, err)

	me, err := f.service.CurrentUser(f.ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testUserID, me.ID)

	_, err = f.service.CurrentUser(f.ctx, pair.AccessToken)
	require.ErrorIs(t, err, autherrors.ErrTokenInvalid)

	_, err = f.service.Tokens.Refresh(f.ctx, pair.RefreshToken, auth.DeviceInfo{})
	require.ErrorIs(t, err, autherrors.ErrTokenExpired)
}
