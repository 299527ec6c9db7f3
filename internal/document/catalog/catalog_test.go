package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
)

func ids(defs []models.DocumentTypeDefinition) []id.DocumentTypeID {
	out := make([]id.DocumentTypeID, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func TestDefaultCatalog_ListApplicable(t *testing.T) {
	ctx := context.Background()
	c := MustDefault()

	pf, err := c.ListApplicable(ctx, id.PersonTypeIndividual)
	require.NoError(t, err)
	assert.Equal(t, []id.DocumentTypeID{
		"identificacion_oficial", "curp", "constancia_situacion_fiscal",
		"comprobante_domicilio", "comprobante_ingresos", "estado_cuenta",
	}, ids(pf))

	pm, err := c.ListApplicable(ctx, id.PersonTypeLegalEntity)
	require.NoError(t, err)
	assert.Equal(t, []id.DocumentTypeID{
		"constancia_situacion_fiscal", "comprobante_domicilio",
		"acta_constitutiva", "estado_cuenta", "poder_notarial",
	}, ids(pm))
}

func TestCatalog_FindByID(t *testing.T) {
	ctx := context.Background()
	c := MustDefault()

	def, err := c.FindByID(ctx, "curp")
	require.NoError(t, err)
	assert.True(t, def.NeverExpires())
	assert.Equal(t, models.CategoryNationalID, def.Category)

	_, err = c.FindByID(ctx, "pasaporte_marciano")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCatalog_ReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	c := MustDefault()

	def, err := c.FindByID(ctx, "comprobante_domicilio")
	require.NoError(t, err)
	*def.ValidityDays = 1
	def.AppliesTo[0] = id.PersonTypeLegalEntity

	again, err := c.FindByID(ctx, "comprobante_domicilio")
	require.NoError(t, err)
	assert.Equal(t, 90, *again.ValidityDays)
	assert.Equal(t, id.PersonTypeIndividual, again.AppliesTo[0])
}

func TestCatalog_RejectsInvalidDefinitions(t *testing.T) {
	dup := Default()
	dup = append(dup, dup[0])
	_, err := New(dup...)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	negative := Default()
	negative[0].ValidityDays = models.Days(-5)
	_, err = New(negative...)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCatalog_Replace(t *testing.T) {
	ctx := context.Background()
	c := MustDefault()

	require.NoError(t, c.Replace([]models.DocumentTypeDefinition{{
		ID: "curp", Name: "CURP", Category: models.CategoryNationalID,
		AppliesTo: []id.PersonType{id.PersonTypeIndividual},
	}}))

	all := c.All()
	require.Len(t, all, 1)
	pm, err := c.ListApplicable(ctx, id.PersonTypeLegalEntity)
	require.NoError(t, err)
	assert.Empty(t, pm)
}
