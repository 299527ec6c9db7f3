package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
	txcontext "onboarding/pkg/platform/tx"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Postgres persists client profiles in the clients table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const selectClients = `
	SELECT id, person_type, name, last_name, second_last_name, legal_name,
	       rfc, curp, birth_date, incorporation_date,
	       street, exterior_number, interior_number, neighborhood,
	       municipality, state, postal_code, email, phone, created_at
	FROM clients
`

func (s *Postgres) Create(ctx context.Context, c *models.ClientProfile) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO clients (
			id, person_type, name, last_name, second_last_name, legal_name,
			rfc, curp, birth_date, incorporation_date,
			street, exterior_number, interior_number, neighborhood,
			municipality, state, postal_code, email, phone, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		uuid.UUID(c.ID), string(c.PersonType), c.Name, c.LastName, c.SecondLastName, c.LegalName,
		string(c.RFC), string(c.CURP), nullTime(c.BirthDate), nullTime(c.IncorporationDate),
		c.Address.Street, c.Address.ExteriorNumber, c.Address.InteriorNumber, c.Address.Neighborhood,
		c.Address.Municipality, c.Address.State, c.Address.PostalCode, c.Email, c.Phone, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, clientID id.ClientID) (*models.ClientProfile, error) {
	return s.findOne(ctx, selectClients+` WHERE id = $1`, uuid.UUID(clientID))
}

func (s *Postgres) FindByRFC(ctx context.Context, rfc id.RFC) (*models.ClientProfile, error) {
	return s.findOne(ctx, selectClients+` WHERE rfc = $1`, string(rfc))
}

func (s *Postgres) findOne(ctx context.Context, query string, arg any) (*models.ClientProfile, error) {
	var (
		c                 models.ClientProfile
		clientID          uuid.UUID
		personType        string
		rfc, curp         string
		birth, incorpDate sql.NullTime
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(
		&clientID, &personType, &c.Name, &c.LastName, &c.SecondLastName, &c.LegalName,
		&rfc, &curp, &birth, &incorpDate,
		&c.Address.Street, &c.Address.ExteriorNumber, &c.Address.InteriorNumber, &c.Address.Neighborhood,
		&c.Address.Municipality, &c.Address.State, &c.Address.PostalCode, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	c.ID = id.ClientID(clientID)
	c.PersonType = id.PersonType(personType)
	c.RFC = id.RFC(rfc)
	c.CURP = id.CURP(curp)
	c.BirthDate = fromNullTime(birth)
	c.IncorporationDate = fromNullTime(incorpDate)
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
