package pgrepo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/go-auth-exchange/tenants"
	"github.com/jrsteele09/go-auth-exchange/tenants/pgrepo"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var tenantColumns = []string{"id", "user_id", "tenant_id", "status"}

type TenantRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *pgrepo.TenantRepo
	ctx  context.Context
}

func (s *TenantRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = pgrepo.New(mock)
	s.ctx = context.Background()
}

func (s *TenantRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestTenantRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TenantRepoTestSuite))
}

func (s *TenantRepoTestSuite) TestGetByUser() {
	s.mock.ExpectQuery(`FROM user_tenants WHERE user_id = \$1 ORDER BY`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(tenantColumns).AddRow("m1", "u1", "t1", "REGISTERED"))

	ut, err := s.repo.GetByUser(s.ctx, "u1")
	s.Require().NoError(err)
	assert.Equal(s.T(), "t1", ut.TenantID)
	assert.Equal(s.T(), tenants.StatusRegistered, ut.Status)
}

func (s *TenantRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectQuery(`WHERE user_id = \$1 AND tenant_id = \$2`).
		WithArgs("u1", "t2").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.repo.Get(s.ctx, "u1", "t2")
	assert.ErrorIs(s.T(), err, tenants.ErrNotFound)
}

func (s *TenantRepoTestSuite) TestGet_UnknownStatus() {
	s.mock.ExpectQuery(`WHERE user_id = \$1 AND tenant_id = \$2`).
		WithArgs("u1", "t1").
		WillReturnRows(pgxmock.NewRows(tenantColumns).AddRow("m1", "u1", "t1", "SUSPENDED"))

	_, err := s.repo.Get(s.ctx, "u1", "t1")
	assert.ErrorContains(s.T(), err, "unknown status")
}

func (s *TenantRepoTestSuite) TestSetStatus() {
	s.mock.ExpectExec(`UPDATE user_tenants SET status`).
		WithArgs("ACTIVE", "u1", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(s.T(), s.repo.SetStatus(s.ctx, "u1", "t1", tenants.StatusActive))
}

func (s *TenantRepoTestSuite) TestSetStatus_NotFound() {
	s.mock.ExpectExec(`UPDATE user_tenants SET status`).
		WithArgs("ACTIVE", "u1", "t9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(s.T(), s.repo.SetStatus(s.ctx, "u1", "t9", tenants.StatusActive), tenants.ErrNotFound)
}
