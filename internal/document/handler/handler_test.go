package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"onboarding/internal/document/catalog"
	"onboarding/internal/document/handler/mocks"
	"onboarding/internal/document/models"
	"onboarding/internal/document/service"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/document-mocks.go -package=mocks Service,TypeLister
type DocumentHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	types   *mocks.MockTypeLister
	router  chi.Router
}

func TestDocumentHandlerSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlerSuite))
}

func (s *DocumentHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.types = mocks.NewMockTypeLister(ctrl)
	h := New(s.service, s.types, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterReviewer(s.router)
	h.RegisterAdmin(s.router)
}

func (s *DocumentHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), method, path, body))
}

func (s *DocumentHandlerSuite) TestRegisterDocument() {
	clientID := id.NewClientID()
	path := "/clients/" + clientID.String() + "/documents"

	s.Run("parses the date layouts and forwards", func() {
		s.service.EXPECT().Register(gomock.Any(), service.RegisterInput{
			ClientID:      clientID,
			TypeID:        "comprobante_domicilio",
			DocumentDate:  time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
			FileReference: "uploads/cfe.pdf",
		}).Return(&models.DocumentRecord{ID: id.NewDocumentID(), ClientID: clientID, Status: models.StatusPending}, nil)

		w := s.do(http.MethodPost, path, map[string]string{
			"type_id":        "comprobante_domicilio",
			"document_date":  "15/05/2025",
			"file_reference": " uploads/cfe.pdf ",
		})
		s.Equal(http.StatusCreated, w.Code, w.Body.String())
	})

	s.Run("rejects an unparseable date", func() {
		w := s.do(http.MethodPost, path, map[string]string{
			"type_id":        "curp",
			"document_date":  "May 15th",
			"file_reference": "uploads/curp.pdf",
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("maps service validation errors to 400", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "document date cannot be in the future"))
		w := s.do(http.MethodPost, path, map[string]string{
			"type_id":        "curp",
			"document_date":  "2025-05-15",
			"file_reference": "uploads/curp.pdf",
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *DocumentHandlerSuite) TestReview() {
	documentID := id.NewDocumentID()
	path := "/documents/" + documentID.String() + "/review"

	s.Run("rejection needs a comment", func() {
		w := s.do(http.MethodPost, path, map[string]string{"decision": "reject"})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("conflict on an already reviewed document", func() {
		s.service.EXPECT().Review(gomock.Any(), service.ReviewInput{
			DocumentID: documentID,
			Decision:   service.DecisionAccept,
		}).Return(nil, dErrors.New(dErrors.CodeConflict, "document is rejected and cannot become accepted"))
		w := s.do(http.MethodPost, path, map[string]string{"decision": "ACCEPT"})
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *DocumentHandlerSuite) TestListTypes() {
	s.types.EXPECT().ListApplicable(gomock.Any(), id.PersonTypeLegalEntity).Return(catalog.Default()[:2], nil)

	w := s.do(http.MethodGet, "/document-types?person_type=PM", nil)
	testutil.AssertStatusOK(s.T(), w)
	resp := testutil.UnmarshalResponse[TypesResponse](s.T(), w)
	s.Equal("PM", resp.PersonType)
	s.Len(resp.DocumentTypes, 2)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/document-types?person_type=ZZ", nil).Code)
}

func (s *DocumentHandlerSuite) TestListCurrent() {
	clientID := id.NewClientID()
	days := 12
	s.service.EXPECT().ListCurrent(gomock.Any(), clientID).Return([]service.CurrentDocument{{
		DocumentRecord:      models.DocumentRecord{ID: id.NewDocumentID(), ClientID: clientID, TypeID: "comprobante_domicilio", Status: models.StatusAccepted},
		ValidNow:            true,
		DaysUntilExpiration: &days,
	}}, nil)

	w := s.do(http.MethodGet, "/clients/"+clientID.String()+"/documents", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	docs := resp["documents"].([]any)
	s.Require().Len(docs, 1)
	doc := docs[0].(map[string]any)
	s.Equal(true, doc["valid_now"])
	s.Equal(float64(12), doc["days_until_expiration"])
	s.Equal("accepted", doc["status"])
}

func (s *DocumentHandlerSuite) TestSweep() {
	s.service.EXPECT().Sweep(gomock.Any()).Return(&service.SweepResult{}, nil)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/admin/sweep", nil).Code)
}
