package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	clientmodels "onboarding/internal/client/models"
	clientstore "onboarding/internal/client/store"
	"onboarding/internal/completeness/engine"
	"onboarding/internal/document/catalog"
	"onboarding/internal/document/models"
	docstore "onboarding/internal/document/store"
	"onboarding/internal/reportcache"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit/publisher"
	auditmemory "onboarding/pkg/platform/audit/store/memory"
	"onboarding/pkg/requestcontext"
)

type CompletenessServiceSuite struct {
	suite.Suite
	now       time.Time
	clients   *clientstore.InMemory
	documents *docstore.InMemory
	memo      *reportcache.InMemory
	auditLog  *publisher.Publisher
	service   *Service
	client    clientmodels.ClientProfile
}

func TestCompletenessServiceSuite(t *testing.T) {
	suite.Run(t, new(CompletenessServiceSuite))
}

func (s *CompletenessServiceSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	s.clients = clientstore.NewInMemory()
	seeded := clientstore.SeedDemoClients(context.Background(), s.clients, s.now)
	s.Require().NotEmpty(seeded)
	s.client = seeded[0]
	s.Require().Equal(id.PersonTypeIndividual, s.client.PersonType)

	s.documents = docstore.NewInMemory()
	s.memo = reportcache.NewInMemory(time.Hour)
	s.auditLog = publisher.NewPublisher(auditmemory.NewInMemoryStore())
	s.service = New(s.clients, s.documents, catalog.MustDefault(),
		WithMemo(s.memo),
		WithAuditPublisher(s.auditLog),
	)
}

func (s *CompletenessServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *CompletenessServiceSuite) save(typeID id.DocumentTypeID, status models.Status, documentDate time.Time) {
	def, err := catalog.MustDefault().FindByID(context.Background(), typeID)
	s.Require().NoError(err)
	r, err := models.NewDocumentRecord(models.NewDocumentParams{
		ID:            id.NewDocumentID(),
		ClientID:      s.client.ID,
		Type:          *def,
		DocumentDate:  documentDate,
		FileReference: "uploads/" + string(typeID) + ".pdf",
		Now:           s.now,
	})
	s.Require().NoError(err)
	r.Status = status
	s.Require().NoError(s.documents.Save(context.Background(), *r))
}

func (s *CompletenessServiceSuite) TestEvaluate() {
	s.Run("no documents yields the profile share only", func() {
		report, err := s.service.Evaluate(s.ctx(), s.client.ID)
		s.Require().NoError(err)
		s.Equal(60, report.Percentage)
		s.Equal(4, report.RequiredTotal)
		s.False(report.CanProceed)
		s.Equal(engine.ActionUploadPending, report.NextAction)
	})

	s.Run("accepted required documents complete the file", func() {
		recent := s.now.AddDate(0, 0, -5)
		for _, typeID := range []id.DocumentTypeID{"identificacion_oficial", "curp", "constancia_situacion_fiscal", "comprobante_domicilio"} {
			s.save(typeID, models.StatusAccepted, recent)
		}
		report, err := s.service.Evaluate(s.ctx(), s.client.ID)
		s.Require().NoError(err)
		s.Equal(100, report.Percentage)
		s.True(report.CanProceed)
		s.Equal(engine.ActionReadyForReview, report.NextAction)
	})

	s.Run("emits an audit event per computed report", func() {
		events, err := s.auditLog.List(context.Background(), s.client.ID)
		s.Require().NoError(err)
		s.Len(events, 2)
		s.Equal("completeness_evaluated", events[0].Action)
	})
}

func (s *CompletenessServiceSuite) TestEvaluateMemo() {
	s.Run("identical inputs hit the memo", func() {
		first, err := s.service.Evaluate(s.ctx(), s.client.ID)
		s.Require().NoError(err)
		second, err := s.service.Evaluate(s.ctx(), s.client.ID)
		s.Require().NoError(err)
		s.Equal(first.Percentage, second.Percentage)
		s.Equal(1, s.memo.Len())

		events, err := s.auditLog.List(context.Background(), s.client.ID)
		s.Require().NoError(err)
		s.Len(events, 1, "memo hit must not recompute")
	})

	s.Run("a new document changes the key", func() {
		s.save("curp", models.StatusAccepted, s.now.AddDate(-1, 0, 0))
		_, err := s.service.Evaluate(s.ctx(), s.client.ID)
		s.Require().NoError(err)
		s.Equal(2, s.memo.Len())
	})

	s.Run("a new day changes the key", func() {
		next := requestcontext.WithTime(context.Background(), s.now.AddDate(0, 0, 1))
		report, err := s.service.Evaluate(next, s.client.ID)
		s.Require().NoError(err)
		s.Equal(3, s.memo.Len())
		s.Equal(s.now.AddDate(0, 0, 1), report.EvaluatedAt)
	})
}

func (s *CompletenessServiceSuite) TestEvaluateErrors() {
	s.Run("unknown client is not found", func() {
		_, err := s.service.Evaluate(s.ctx(), id.NewClientID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failures are internal", func() {
		svc := New(s.clients, failingDocuments{}, catalog.MustDefault())
		_, err := svc.Evaluate(s.ctx(), s.client.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *CompletenessServiceSuite) TestEvaluateReturningClient() {
	s.Run("unknown rfc is not found", func() {
		_, err := s.service.EvaluateReturningClient(s.ctx(), id.RFC("XAXX010101000"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("no documents can be reused", func() {
		result, err := s.service.EvaluateReturningClient(s.ctx(), s.client.RFC)
		s.Require().NoError(err)
		s.Equal(s.client.ID, result.ClientID)
		s.True(result.CanReuse)
		s.Empty(result.ToRefresh)
	})

	s.Run("expired and rejected types must be refreshed", func() {
		s.save("comprobante_domicilio", models.StatusAccepted, s.now.AddDate(0, 0, -120))
		s.save("constancia_situacion_fiscal", models.StatusRejected, s.now.AddDate(0, 0, -3))
		s.save("curp", models.StatusAccepted, s.now.AddDate(-2, 0, 0))

		result, err := s.service.EvaluateReturningClient(s.ctx(), s.client.RFC)
		s.Require().NoError(err)
		s.False(result.CanReuse)
		s.ElementsMatch([]id.DocumentTypeID{"comprobante_domicilio", "constancia_situacion_fiscal"}, result.ToRefresh)
	})
}

type failingDocuments struct{}

func (failingDocuments) ListCurrentByClient(context.Context, id.ClientID) ([]models.DocumentRecord, error) {
	return nil, errors.New("connection reset")
}
