package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	clientmodels "onboarding/internal/client/models"
	"onboarding/internal/document/catalog"
	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func individual() clientmodels.ClientProfile {
	birth := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	return clientmodels.ClientProfile{
		ID:             id.NewClientID(),
		PersonType:     id.PersonTypeIndividual,
		Name:           "José",
		LastName:       "Pérez",
		SecondLastName: "García",
		RFC:            "PEGJ800101AB1",
		CURP:           "PEGJ800101HDFRRS09",
		BirthDate:      &birth,
		Address: clientmodels.Address{
			Street: "Av. Insurgentes Sur", ExteriorNumber: "1234", Neighborhood: "Del Valle",
			Municipality: "Benito Juárez", State: "Ciudad de México", PostalCode: "03100",
		},
	}
}

func company() clientmodels.ClientProfile {
	incorporated := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	p := individual()
	p.PersonType = id.PersonTypeLegalEntity
	p.Name, p.LastName, p.SecondLastName, p.CURP, p.BirthDate = "", "", "", "", nil
	p.LegalName = "Acme Soluciones SA de CV"
	p.RFC = "ASO010101EF3"
	p.IncorporationDate = &incorporated
	return p
}

const documentAddress = "AV INSURGENTES SUR 1234, COL. DEL VALLE, BENITO JUAREZ, CIUDAD DE MEXICO, C.P. 03100"

// matchingFields is what a clean analyzer read of an individual's document returns.
func matchingFields() map[string]any {
	return map[string]any{
		FieldFullName:   "JOSE PEREZ GARCIA",
		FieldHolderName: "JOSE PEREZ GARCIA",
		FieldRFC:        "PEGJ800101AB1",
		FieldCURP:       "PEGJ800101HDFRRS09",
		FieldBirthDate:  "01/01/1980",
		FieldAddress:    documentAddress,
		FieldPostalCode: "03100",
	}
}

func definition(t *testing.T, typeID id.DocumentTypeID) models.DocumentTypeDefinition {
	t.Helper()
	for _, d := range catalog.Default() {
		if d.ID == typeID {
			return d
		}
	}
	t.Fatalf("unknown type %s", typeID)
	return models.DocumentTypeDefinition{}
}

func input(t *testing.T, typeID id.DocumentTypeID, fields map[string]any) DocumentInput {
	t.Helper()
	return DocumentInput{
		Record:    models.DocumentRecord{ID: id.NewDocumentID(), TypeID: typeID, Status: models.StatusAccepted},
		Type:      definition(t, typeID),
		Extracted: models.ExtractedFieldSet{IsValid: true, Confidence: 0.97, Fields: fields},
	}
}

func individualInputs(t *testing.T) []DocumentInput {
	return []DocumentInput{
		input(t, "identificacion_oficial", matchingFields()),
		input(t, "curp", matchingFields()),
		input(t, "constancia_situacion_fiscal", matchingFields()),
		input(t, "comprobante_domicilio", matchingFields()),
	}
}

func TestValidateAgainstClient(t *testing.T) {
	profile := individual()

	t.Run("accent-only differences coincide", func(t *testing.T) {
		result, err := ValidateAgainstClient(profile, definition(t, "curp"), models.ExtractedFieldSet{
			IsValid: true,
			Fields:  map[string]any{FieldFullName: "JOSE PEREZ GARCIA", FieldCURP: "pegj800101hdfrrs09", FieldBirthDate: "1980-01-01"},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Discrepancies)
		require.Len(t, result.Fields, 3)
		for _, f := range result.Fields {
			assert.Equal(t, OutcomeMatch, f.Outcome, f.Field)
		}
	})

	t.Run("single character rfc difference is high", func(t *testing.T) {
		fields := matchingFields()
		fields[FieldRFC] = "PEGJ800101AB2"
		result, err := ValidateAgainstClient(profile, definition(t, "constancia_situacion_fiscal"), models.ExtractedFieldSet{IsValid: true, Fields: fields})
		require.NoError(t, err)
		require.Len(t, result.Discrepancies, 1)
		d := result.Discrepancies[0]
		assert.Equal(t, FieldRFC, d.Field)
		assert.Equal(t, SeverityHigh, d.Severity)
		assert.True(t, d.RequiresReview)
		assert.Equal(t, "PEGJ800101AB2", d.DocumentValue)
	})

	t.Run("different name is high", func(t *testing.T) {
		fields := matchingFields()
		fields[FieldFullName] = "JUAN PEREZ GARCIA"
		result, err := ValidateAgainstClient(profile, definition(t, "identificacion_oficial"), models.ExtractedFieldSet{IsValid: true, Fields: fields})
		require.NoError(t, err)
		require.Len(t, result.Discrepancies, 1)
		assert.Equal(t, SeverityHigh, result.Discrepancies[0].Severity)
	})

	t.Run("address below threshold is medium never high", func(t *testing.T) {
		fields := matchingFields()
		fields[FieldAddress] = "Calle Madero 15, Centro, Puebla"
		result, err := ValidateAgainstClient(profile, definition(t, "comprobante_domicilio"), models.ExtractedFieldSet{IsValid: true, Fields: fields})
		require.NoError(t, err)
		require.Len(t, result.Discrepancies, 1)
		assert.Equal(t, FieldAddress, result.Discrepancies[0].Field)
		assert.Equal(t, SeverityMedium, result.Discrepancies[0].Severity)
		assert.True(t, result.Discrepancies[0].RequiresReview)
	})

	t.Run("missing document field is low and needs no review", func(t *testing.T) {
		fields := matchingFields()
		delete(fields, FieldPostalCode)
		result, err := ValidateAgainstClient(profile, definition(t, "comprobante_domicilio"), models.ExtractedFieldSet{IsValid: true, Fields: fields})
		require.NoError(t, err)
		require.Len(t, result.Discrepancies, 1)
		assert.Equal(t, SeverityLow, result.Discrepancies[0].Severity)
		assert.False(t, result.Discrepancies[0].RequiresReview)
	})

	t.Run("undeclared client fields are skipped", func(t *testing.T) {
		p := individual()
		p.CURP = ""
		result, err := ValidateAgainstClient(p, definition(t, "identificacion_oficial"), models.ExtractedFieldSet{IsValid: true, Fields: matchingFields()})
		require.NoError(t, err)
		assert.Len(t, result.Fields, 3)
		for _, f := range result.Fields {
			assert.NotEqual(t, FieldCURP, f.Field)
		}
	})

	t.Run("non-string field is a validation error", func(t *testing.T) {
		fields := matchingFields()
		fields[FieldPostalCode] = 3100
		_, err := ValidateAgainstClient(profile, definition(t, "comprobante_domicilio"), models.ExtractedFieldSet{Fields: fields})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("category without comparator has no fields", func(t *testing.T) {
		result, err := ValidateAgainstClient(company(), definition(t, "poder_notarial"), models.ExtractedFieldSet{IsValid: true})
		require.NoError(t, err)
		assert.Empty(t, result.Fields)
		assert.Empty(t, result.Discrepancies)
	})

	t.Run("legal entity tax registration compares the legal name", func(t *testing.T) {
		result, err := ValidateAgainstClient(company(), definition(t, "constancia_situacion_fiscal"), models.ExtractedFieldSet{
			IsValid: true,
			Fields: map[string]any{
				FieldRFC:        "ASO010101EF3",
				FieldLegalName:  "ACME SOLUCIONES SA DE CV",
				FieldAddress:    documentAddress,
				FieldPostalCode: "03100",
			},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Discrepancies)
		var compared []string
		for _, f := range result.Fields {
			compared = append(compared, f.Field)
		}
		assert.ElementsMatch(t, []string{FieldRFC, FieldLegalName, FieldAddress, FieldPostalCode}, compared)
	})
}

func TestComputeCoherenceScore(t *testing.T) {
	t.Run("no fields scores zero", func(t *testing.T) {
		assert.Equal(t, 0, ComputeCoherenceScore(nil))
	})

	t.Run("penalties apply to the matched share", func(t *testing.T) {
		results := []DocumentResult{{
			Fields: []FieldResult{
				{Outcome: OutcomeMatch}, {Outcome: OutcomeMatch}, {Outcome: OutcomeMatch}, {Outcome: OutcomeMismatch},
			},
			Discrepancies: []Discrepancy{{Severity: SeverityLow}},
		}}
		assert.Equal(t, 70, ComputeCoherenceScore(results))
	})

	t.Run("clamped at zero", func(t *testing.T) {
		results := []DocumentResult{{
			Fields:        []FieldResult{{Outcome: OutcomeMismatch}, {Outcome: OutcomeMismatch}},
			Discrepancies: []Discrepancy{{Severity: SeverityHigh}, {Severity: SeverityHigh}},
		}}
		assert.Equal(t, 0, ComputeCoherenceScore(results))
	})

	t.Run("rounds to nearest", func(t *testing.T) {
		results := []DocumentResult{{
			Fields:        []FieldResult{{Outcome: OutcomeMatch}, {Outcome: OutcomeMatch}, {Outcome: OutcomeMismatch}},
			Discrepancies: []Discrepancy{{Severity: SeverityMedium}},
		}}
		// 66.67 - 10
		assert.Equal(t, 57, ComputeCoherenceScore(results))
	})
}

type CoherenceScenarioSuite struct {
	suite.Suite
	profile clientmodels.ClientProfile
}

func TestCoherenceScenarioSuite(t *testing.T) {
	suite.Run(t, new(CoherenceScenarioSuite))
}

func (s *CoherenceScenarioSuite) SetupTest() {
	s.profile = individual()
}

func (s *CoherenceScenarioSuite) alertTypes(r Report) []AlertType {
	var out []AlertType
	for _, a := range r.Alerts {
		out = append(out, a.Type)
	}
	return out
}

func (s *CoherenceScenarioSuite) TestAllDocumentsMatch() {
	report, err := Evaluate(s.profile, individualInputs(s.T()), now)
	s.Require().NoError(err)

	s.Equal(100, report.Score)
	s.True(report.IsCoherent)
	s.Empty(report.Discrepancies)
	s.Empty(report.Alerts)
	s.Len(report.PerDocument, 4)
	s.Equal([]string{"No discrepancies found; documents are coherent with the declared profile."}, report.Recommendations)
}

func (s *CoherenceScenarioSuite) TestSingleTaxIDMismatch() {
	inputs := individualInputs(s.T())
	inputs[2].Extracted.Fields[FieldRFC] = "PEGJ800101AB9"

	report, err := Evaluate(s.profile, inputs, now)
	s.Require().NoError(err)

	s.Require().Len(report.Discrepancies, 1)
	s.Equal(SeverityHigh, report.Discrepancies[0].Severity)
	s.Equal(inputs[2].Record.ID, report.Discrepancies[0].DocumentID)
	// 12 of 13 fields match: 92.3 - 20.
	s.Equal(72, report.Score)
	s.LessOrEqual(report.Score, 100-PenaltyHigh)
	s.False(report.IsCoherent)
	s.Equal([]AlertType{AlertDataInconsistency}, s.alertTypes(report))
	s.Equal("Resolve immediately the discrepancies in: rfc.", report.Recommendations[0])
}

func (s *CoherenceScenarioSuite) TestThreeHighDiscrepanciesEscalate() {
	inputs := individualInputs(s.T())
	inputs[0].Extracted.Fields[FieldCURP] = "PEGJ800101HDFRRS01"
	inputs[1].Extracted.Fields[FieldBirthDate] = "02/01/1980"
	inputs[2].Extracted.Fields[FieldRFC] = "PEGJ800101AB9"

	report, err := Evaluate(s.profile, inputs, now)
	s.Require().NoError(err)

	types := s.alertTypes(report)
	s.Contains(types, AlertDataInconsistency)
	s.Contains(types, AlertPossibleFraud)
	s.False(report.IsCoherent)
	s.Equal("Escalate the file for manual fraud review.", report.Recommendations[0])
}

func (s *CoherenceScenarioSuite) TestAddressDriftIsMedium() {
	inputs := individualInputs(s.T())
	inputs[3].Extracted.Fields[FieldAddress] = "Calle Madero 15, Centro, Puebla"

	report, err := Evaluate(s.profile, inputs, now)
	s.Require().NoError(err)
	s.Require().Len(report.Discrepancies, 1)
	s.Equal(SeverityMedium, report.Discrepancies[0].Severity)
	// 12 of 13 fields match: 92.3 - 10.
	s.Equal(82, report.Score)
	s.True(report.IsCoherent)
	s.Empty(report.Alerts)
	s.Equal([]string{"Confirm with the client: address."}, report.Recommendations)
}

func (s *CoherenceScenarioSuite) TestPostalCodeDriftIsMedium() {
	inputs := individualInputs(s.T())
	inputs[3].Extracted.Fields[FieldAddress] = "AV INSURGENTES SUR 1234, COL. DEL VALLE, BENITO JUAREZ, CIUDAD DE MEXICO, C.P. 03104"
	inputs[3].Extracted.Fields[FieldPostalCode] = "03104"

	report, err := Evaluate(s.profile, inputs, now)
	s.Require().NoError(err)
	s.Require().Len(report.Discrepancies, 1)
	s.Equal(FieldPostalCode, report.Discrepancies[0].Field)
	s.Equal(SeverityMedium, report.Discrepancies[0].Severity)
	s.Zero(countSeverity(report.Discrepancies, SeverityHigh))
	s.Equal(82, report.Score)
	s.True(report.IsCoherent)
	s.Empty(report.Alerts)
}

func (s *CoherenceScenarioSuite) TestInvalidDocumentAlert() {
	inputs := individualInputs(s.T())
	inputs[1].Extracted.IsValid = false

	report, err := Evaluate(s.profile, inputs, now)
	s.Require().NoError(err)
	s.Require().Len(report.Alerts, 1)
	s.Equal(AlertInvalidDocument, report.Alerts[0].Type)
	s.Require().NotNil(report.Alerts[0].DocumentID)
	s.Equal(inputs[1].Record.ID, *report.Alerts[0].DocumentID)
	s.True(report.IsCoherent, "analyzer validity does not change the score")
}

func (s *CoherenceScenarioSuite) TestMissingMandatoryCategories() {
	s.Run("legal entity with only proof of address", func() {
		report, err := Evaluate(company(), []DocumentInput{input(s.T(), "comprobante_domicilio", matchingFields())}, now)
		s.Require().NoError(err)

		var missing []models.Category
		for _, a := range report.Alerts {
			if a.Type == AlertMissingInformation {
				missing = append(missing, a.Category)
			}
		}
		s.ElementsMatch([]models.Category{models.CategoryIncorporation, models.CategoryTaxRegistration}, missing)
		s.Contains(report.Recommendations, personTypeReminders[id.PersonTypeLegalEntity])
	})

	s.Run("no documents at all", func() {
		report, err := Evaluate(s.profile, nil, now)
		s.Require().NoError(err)
		s.Equal(0, report.Score)
		s.False(report.IsCoherent)
		s.Len(report.Alerts, 3)
		s.NotNil(report.PerDocument)
	})
}

func (s *CoherenceScenarioSuite) TestDiscrepanciesOrderedBySeverity() {
	inputs := individualInputs(s.T())
	inputs[3].Extracted.Fields[FieldAddress] = "Calle Madero 15, Centro, Puebla"
	delete(inputs[3].Extracted.Fields, FieldPostalCode)
	inputs[2].Extracted.Fields[FieldRFC] = "PEGJ800101AB9"

	report, err := Evaluate(s.profile, inputs, now)
	s.Require().NoError(err)
	s.Require().Len(report.Discrepancies, 3)
	s.Equal(SeverityHigh, report.Discrepancies[0].Severity)
	s.Equal(SeverityMedium, report.Discrepancies[1].Severity)
	s.Equal(SeverityLow, report.Discrepancies[2].Severity)
}

func (s *CoherenceScenarioSuite) TestValidationErrorAbortsEvaluation() {
	inputs := individualInputs(s.T())
	inputs[0].Extracted.Fields[FieldFullName] = []string{"JOSE"}
	_, err := Evaluate(s.profile, inputs, now)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
