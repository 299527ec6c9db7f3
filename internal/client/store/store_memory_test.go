package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

type ClientStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestClientStoreSuite(t *testing.T) {
	suite.Run(t, new(ClientStoreSuite))
}

func (s *ClientStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ClientStoreSuite) newClient(rfc id.RFC) *models.ClientProfile {
	return &models.ClientProfile{
		ID:         id.NewClientID(),
		PersonType: id.PersonTypeIndividual,
		Name:       "José",
		LastName:   "Pérez",
		RFC:        rfc,
		CreatedAt:  time.Now(),
	}
}

func (s *ClientStoreSuite) TestLookups() {
	s.Run("finds by id and rfc after creation", func() {
		client := s.newClient("PEGJ800101AB1")
		s.Require().NoError(s.store.Create(s.ctx, client))

		byID, err := s.store.FindByID(s.ctx, client.ID)
		s.Require().NoError(err)
		s.Equal(client.Name, byID.Name)

		byRFC, err := s.store.FindByRFC(s.ctx, "PEGJ800101AB1")
		s.Require().NoError(err)
		s.Equal(client.ID, byRFC.ID)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewClientID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown rfc", func() {
		_, err := s.store.FindByRFC(s.ctx, "XAXX010101000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ClientStoreSuite) TestDuplicateRFCConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newClient("LOHM800101CD2")))
	err := s.store.Create(s.ctx, s.newClient("LOHM800101CD2"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *ClientStoreSuite) TestReturnsCopies() {
	client := s.newClient("")
	s.Require().NoError(s.store.Create(s.ctx, client))

	found, err := s.store.FindByID(s.ctx, client.ID)
	s.Require().NoError(err)
	found.Name = "mutated"

	again, err := s.store.FindByID(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Equal("José", again.Name)
}

func (s *ClientStoreSuite) TestSeedDemoClients() {
	created := SeedDemoClients(s.ctx, s.store, time.Now())
	s.Len(created, 3)
	for _, c := range created {
		s.NoError(c.Validate())
	}

	again := SeedDemoClients(s.ctx, s.store, time.Now())
	s.Empty(again, "seeding twice skips existing RFCs")
}
