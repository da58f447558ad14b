package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-exchange/auth"
	"github.com/jrsteele09/go-auth-exchange/clients"
	fakeclientrepo "github.com/jrsteele09/go-auth-exchange/clients/fakerepo"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	tenantrepofakes "github.com/jrsteele09/go-auth-exchange/tenants/repofakes"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/jrsteele09/go-auth-exchange/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-exchange/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	secretStr        = "1234"
	issuer           = "com.testissuer"
	testClientID     = "test-client-1"
	testClientSecret = "test-secret-1"
	testTenantID     = "tenant-1"
	testUserID       = "user-1"
	testUsername     = "jdoe"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
	testRedirectURL  = "http://localhost:3000/callback"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testFixture holds all test dependencies
type testFixture struct {
	ctx          context.Context
	clock        *clock
	userRepo     *fakeuserrepo.FakeUserRepo
	clientRepo   *fakeclientrepo.FakeClientRepo
	tenantsRepo  *tenantrepofakes.FakeTenantRepo
	refreshStore *refresh.InMemoryStore
	usedCodes    *token.InMemoryUsedCodeGuard
	tokens       *token.Manager
	refresh      *refresh.Manager
	service      *auth.Service
}

// testUser represents a test user with common fields
type testUser struct {
	ID           string
	Username     string
	Email        string
	Password     string
	TenantID     string
	Status       tenants.UserStatus
	ClientIDs    []string
	NoMembership bool
}

// testClient represents a test client
type testClient struct {
	ID                     string
	Secret                 string
	RedirectURL            string
	AuthCodeExpiration     int
	AccessTokenExpiration  int
	RefreshTokenExpiration int
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	clk := &clock{now: time.Now()}
	ur := fakeuserrepo.NewFakeUserRepo()
	cr := fakeclientrepo.NewFakeClientRepo()
	tr := tenantrepofakes.NewFakeTenantRepo()
	rs := refresh.NewInMemoryStore(clk.Now)
	guard := token.NewInMemoryUsedCodeGuard(clk.Now)

	tm, err := token.New(token.NewHMACSigner([]byte(secretStr)), issuer,
		token.WithNowFunc(clk.Now),
		token.WithRevokedTokenStore(token.NewInMemoryRevokedTokenStore(clk.Now)),
	)
	require.NoError(t, err)

	rm, err := refresh.NewManager(rs)
	require.NoError(t, err)

	opts := append([]auth.ServiceOption{
		auth.WithNowTime(clk.Now),
		auth.WithUsedCodeGuard(guard),
	}, options...)

	service, err := auth.NewService(auth.Repos{Users: ur, Clients: cr, Tenants: tr}, tm, rm, opts...)
	require.NoError(t, err)

	return &testFixture{
		ctx:          context.Background(),
		clock:        clk,
		userRepo:     ur,
		clientRepo:   cr,
		tenantsRepo:  tr,
		refreshStore: rs,
		usedCodes:    guard,
		tokens:       tm,
		refresh:      rm,
		service:      service,
	}
}

func defaultTestUser() testUser {
	return testUser{
		ID:        testUserID,
		Username:  testUsername,
		Email:     testUserEmail,
		Password:  testUserPassword,
		TenantID:  testTenantID,
		Status:    tenants.StatusActive,
		ClientIDs: []string{testClientID},
	}
}

func defaultTestClient() testClient {
	return testClient{
		ID:          testClientID,
		Secret:      testClientSecret,
		RedirectURL: testRedirectURL,
	}
}

// createTestUser creates and stores a test user and its tenant membership
func (f *testFixture) createTestUser(t *testing.T, user testUser) *users.User {
	t.Helper()

	passwordHash, err := users.HashPassword(user.Password)
	require.NoError(t, err)

	u := &users.User{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		DefaultTenantID: user.TenantID,
		AuthClientIDs:   user.ClientIDs,
		PasswordHash:    passwordHash,
	}
	require.NoError(t, f.userRepo.Upsert(f.ctx, u))

	if !user.NoMembership {
		require.NoError(t, f.tenantsRepo.Upsert(f.ctx, &tenants.UserTenant{
			UserID:   u.ID,
			TenantID: user.TenantID,
			Status:   user.Status,
		}))
	}
	return u
}

// createTestClient creates and stores a test client
func (f *testFixture) createTestClient(t *testing.T, client testClient) *clients.Client {
	t.Helper()

	c := &clients.Client{
		ClientID:               client.ID,
		Secret:                 client.Secret,
		RedirectURL:            client.RedirectURL,
		AuthCodeExpiration:     orDefault(client.AuthCodeExpiration, 60),
		AccessTokenExpiration:  orDefault(client.AccessTokenExpiration, 3600),
		RefreshTokenExpiration: orDefault(client.RefreshTokenExpiration, 86400),
	}
	require.NoError(t, f.clientRepo.Upsert(f.ctx, c))
	return c
}

// setupDefaults creates the default client and user.
func (f *testFixture) setupDefaults(t *testing.T) (*clients.Client, *users.User) {
	t.Helper()
	return f.createTestClient(t, defaultTestClient()), f.createTestUser(t, defaultTestUser())
}

// loginPair runs the password grant for the default user.
func (f *testFixture) loginPair(t *testing.T, client *clients.Client) *auth.TokenPair {
	t.Helper()
	pair, err := f.service.LoginToken(f.ctx, client, testUsername, testUserPassword, auth.DeviceInfo{UserAgent: "test-agent"})
	require.NoError(t, err)
	return pair
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
