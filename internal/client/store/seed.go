package store

import (
	"context"
	"time"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
)

// Creator is satisfied by both client stores.
type Creator interface {
	Create(ctx context.Context, c *models.ClientProfile) error
}

// SeedDemoClients registers one client per person type for local runs.
// Existing clients (same RFC) are left as they are.
func SeedDemoClients(ctx context.Context, store Creator, now time.Time) []models.ClientProfile {
	birth := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	incorporated := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	address := models.Address{
		Street: "Av. Insurgentes Sur", ExteriorNumber: "1234", Neighborhood: "Del Valle",
		Municipality: "Benito Juárez", State: "Ciudad de México", PostalCode: "03100",
	}

	demo := []models.ClientProfile{
		{
			ID: id.NewClientID(), PersonType: id.PersonTypeIndividual,
			Name: "José", LastName: "Pérez", SecondLastName: "García",
			RFC: "PEGJ800101AB1", CURP: "PEGJ800101HDFRRS09", BirthDate: &birth,
			Address: address, Email: "jose.perez@example.com", CreatedAt: now,
		},
		{
			ID: id.NewClientID(), PersonType: id.PersonTypeIndividualBusiness,
			Name: "María", LastName: "López", SecondLastName: "Hernández",
			RFC: "LOHM800101CD2", CURP: "LOHM800101MDFPRR05", BirthDate: &birth,
			Address: address, Email: "maria.lopez@example.com", CreatedAt: now,
		},
		{
			ID: id.NewClientID(), PersonType: id.PersonTypeLegalEntity,
			LegalName: "Acme Soluciones SA de CV", RFC: "ASO010101EF3",
			IncorporationDate: &incorporated, Address: address,
			Email: "legal@acme.example.com", CreatedAt: now,
		},
	}

	var created []models.ClientProfile
	for i := range demo {
		if err := store.Create(ctx, &demo[i]); err == nil {
			created = append(created, demo[i])
		}
	}
	return created
}
