package catalog

import (
	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
)

var (
	individuals = []id.PersonType{id.PersonTypeIndividual, id.PersonTypeIndividualBusiness}
	everyone    = []id.PersonType{id.PersonTypeIndividual, id.PersonTypeIndividualBusiness, id.PersonTypeLegalEntity}
	companies   = []id.PersonType{id.PersonTypeLegalEntity}
)

// Default is the Mexican onboarding catalog used when no file is configured.
func Default() []models.DocumentTypeDefinition {
	return []models.DocumentTypeDefinition{
		{
			ID:           "identificacion_oficial",
			Name:         "Identificación oficial (INE / pasaporte)",
			Category:     models.CategoryIdentity,
			AppliesTo:    individuals,
			ValidityDays: models.Days(3650),
		},
		{
			ID:        "curp",
			Name:      "CURP",
			Category:  models.CategoryNationalID,
			AppliesTo: individuals,
		},
		{
			ID:           "constancia_situacion_fiscal",
			Name:         "Constancia de situación fiscal",
			Category:     models.CategoryTaxRegistration,
			AppliesTo:    everyone,
			ValidityDays: models.Days(90),
		},
		{
			ID:           "comprobante_domicilio",
			Name:         "Comprobante de domicilio",
			Category:     models.CategoryProofOfAddress,
			AppliesTo:    everyone,
			ValidityDays: models.Days(90),
		},
		{
			ID:        "acta_constitutiva",
			Name:      "Acta constitutiva",
			Category:  models.CategoryIncorporation,
			AppliesTo: companies,
		},
		{
			ID:           "comprobante_ingresos",
			Name:         "Comprobante de ingresos",
			Category:     models.CategoryIncomeProof,
			AppliesTo:    individuals,
			ValidityDays: models.Days(90),
			Optional:     true,
		},
		{
			ID:           "estado_cuenta",
			Name:         "Estado de cuenta bancario",
			Category:     models.CategoryBankStatement,
			AppliesTo:    everyone,
			ValidityDays: models.Days(90),
			Optional:     true,
		},
		{
			ID:        "poder_notarial",
			Name:      "Poder notarial del representante legal",
			Category:  models.CategoryOther,
			AppliesTo: companies,
			Optional:  true,
		},
	}
}
