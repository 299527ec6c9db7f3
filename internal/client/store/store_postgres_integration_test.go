//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/testutil/containers"
)

type PostgresClientStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *Postgres
}

func TestPostgresClientStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresClientStoreSuite))
}

func (s *PostgresClientStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresClientStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "audit_events", "documents", "clients"))
}

func (s *PostgresClientStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	birth := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	client := &models.ClientProfile{
		ID: id.NewClientID(), PersonType: id.PersonTypeIndividual,
		Name: "José", LastName: "Pérez", RFC: "PEGJ800101AB1", CURP: "PEGJ800101HDFRRS09",
		BirthDate: &birth,
		Address:   models.Address{Street: "Insurgentes", ExteriorNumber: "1", PostalCode: "03100"},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Create(ctx, client))

	found, err := s.store.FindByRFC(ctx, "PEGJ800101AB1")
	s.Require().NoError(err)
	s.Equal(client.ID, found.ID)
	s.Equal(client.Address, found.Address)
	s.Require().NotNil(found.BirthDate)
	s.True(birth.Equal(*found.BirthDate))
	s.Nil(found.IncorporationDate)
}

func (s *PostgresClientStoreSuite) TestDuplicateRFC() {
	ctx := context.Background()
	a := &models.ClientProfile{ID: id.NewClientID(), PersonType: id.PersonTypeLegalEntity, RFC: "ACM010101AB1", CreatedAt: time.Now()}
	b := &models.ClientProfile{ID: id.NewClientID(), PersonType: id.PersonTypeLegalEntity, RFC: "ACM010101AB1", CreatedAt: time.Now()}
	s.Require().NoError(s.store.Create(ctx, a))
	s.ErrorIs(s.store.Create(ctx, b), sentinel.ErrConflict)
}

func (s *PostgresClientStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewClientID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
