package pgrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/go-auth-exchange/users"
	"github.com/jrsteele09/go-auth-exchange/users/pgrepo"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "username", "email", "first_name", "last_name", "default_tenant_id", "auth_client_ids", "password_hash"}

type UserRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    *pgrepo.UserRepo
	ctx     context.Context
	oldHash string
}

func (s *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = pgrepo.New(mock)
	s.ctx = context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.oldHash = string(hash)
}

func (s *UserRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func (s *UserRepoTestSuite) userRow() *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow("u1", "jdoe", "jdoe@example.com", "John", "Doe", "t1", []string{"c1", "c2"}, s.oldHash)
}

func (s *UserRepoTestSuite) TestGetByUsername_Success() {
	s.mock.ExpectQuery(`WHERE u.username = \$1`).
		WithArgs("jdoe").
		WillReturnRows(s.userRow())

	u, err := s.repo.GetByUsername(s.ctx, "jdoe")
	s.Require().NoError(err)
	assert.Equal(s.T(), "u1", u.ID)
	assert.Equal(s.T(), "t1", u.DefaultTenantID)
	assert.True(s.T(), u.HasClient("c2"))
	assert.True(s.T(), u.CheckPassword("old-password"))
}

func (s *UserRepoTestSuite) TestGetByEmail_NotFound() {
	s.mock.ExpectQuery(`WHERE lower\(u.email\) = lower\(\$1\)`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	u, err := s.repo.GetByEmail(s.ctx, "nobody@example.com")
	assert.ErrorIs(s.T(), err, users.ErrNotFound)
	assert.Nil(s.T(), u)
}

func (s *UserRepoTestSuite) TestGetByID_DatabaseError() {
	s.mock.ExpectQuery(`WHERE u.id = \$1`).
		WithArgs("u1").
		WillReturnError(errors.New("database connection failed"))

	_, err := s.repo.GetByID(s.ctx, "u1")
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "database connection failed")
}

func (s *UserRepoTestSuite) TestFirstTimeUser() {
	s.mock.ExpectQuery(`SELECT last_login IS NULL FROM users`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"first"}).AddRow(true))

	first, err := s.repo.FirstTimeUser(s.ctx, "u1")
	s.Require().NoError(err)
	assert.True(s.T(), first)
}

func (s *UserRepoTestSuite) TestUpdateLastLogin_NoRows() {
	s.mock.ExpectExec(`UPDATE users SET last_login = now\(\)`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(s.T(), s.repo.UpdateLastLogin(s.ctx, "missing"), users.ErrNotFound)
}

func (s *UserRepoTestSuite) TestUpdatePassword_Success() {
	s.mock.ExpectQuery(`WHERE u.username = \$1`).
		WithArgs("jdoe").
		WillReturnRows(s.userRow())
	s.mock.ExpectExec(`UPDATE user_credentials SET password_hash`).
		WithArgs(pgxmock.AnyArg(), "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	u, err := s.repo.UpdatePassword(s.ctx, "jdoe", "old-password", "new-password")
	s.Require().NoError(err)
	s.Require().NotNil(u)
	assert.True(s.T(), u.CheckPassword("new-password"))
}

func (s *UserRepoTestSuite) TestUpdatePassword_Mismatch() {
	s.mock.ExpectQuery(`WHERE u.username = \$1`).
		WithArgs("jdoe").
		WillReturnRows(s.userRow())

	u, err := s.repo.UpdatePassword(s.ctx, "jdoe", "wrong", "new-password")
	assert.ErrorIs(s.T(), err, users.ErrPasswordMismatch)
	assert.Nil(s.T(), u)
}

func (s *UserRepoTestSuite) TestChangePassword_NoCredentialsRow() {
	s.mock.ExpectQuery(`WHERE u.username = \$1`).
		WithArgs("jdoe").
		WillReturnRows(s.userRow())
	s.mock.ExpectExec(`UPDATE user_credentials SET password_hash`).
		WithArgs(pgxmock.AnyArg(), "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	u, err := s.repo.ChangePassword(s.ctx, "jdoe", "new-password")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), u)
}

func (s *UserRepoTestSuite) TestChangePassword_UnknownUser() {
	s.mock.ExpectQuery(`WHERE u.username = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	u, err := s.repo.ChangePassword(s.ctx, "ghost", "new-password")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), u)
}

func (s *UserRepoTestSuite) TestUpsert_WithCredentials() {
	u := &users.User{ID: "u1", Username: "jdoe", Email: "jdoe@example.com", AuthClientIDs: []string{"c1"}, PasswordHash: s.oldHash}
	s.mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "jdoe", "jdoe@example.com", "", "", "", []string{"c1"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`INSERT INTO user_credentials`).
		WithArgs("u1", s.oldHash).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(s.T(), s.repo.Upsert(s.ctx, u))
}
