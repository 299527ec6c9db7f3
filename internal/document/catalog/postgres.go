package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
	txcontext "onboarding/pkg/platform/tx"
)

// PostgresStore persists the registry in the document_types table so
// administrators can change it without a deploy.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectDocumentTypes = `
	SELECT id, name, category, array_to_string(applies_to, ','), validity_days, optional
	FROM document_types
`

func (s *PostgresStore) ListApplicable(ctx context.Context, pt id.PersonType) ([]models.DocumentTypeDefinition, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		selectDocumentTypes+` WHERE $1 = ANY(applies_to) ORDER BY position, id`, string(pt))
	if err != nil {
		return nil, fmt.Errorf("query document types: %w", err)
	}
	defer rows.Close()

	var defs []models.DocumentTypeDefinition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document types: %w", err)
	}
	return defs, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentTypeDefinition, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, selectDocumentTypes+` WHERE id = $1`, string(typeID))
	d, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Upsert writes the definitions in order; the slice position becomes the
// listing order. Runs in one transaction.
func (s *PostgresStore) Upsert(ctx context.Context, defs []models.DocumentTypeDefinition) error {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Executor(ctx, s.db)
		for i, d := range defs {
			appliesTo := make([]string, len(d.AppliesTo))
			for j, pt := range d.AppliesTo {
				appliesTo[j] = string(pt)
			}
			var validity sql.NullInt32
			if d.ValidityDays != nil {
				validity = sql.NullInt32{Int32: int32(*d.ValidityDays), Valid: true}
			}
			_, err := exec.ExecContext(ctx, `
				INSERT INTO document_types (id, name, category, applies_to, validity_days, optional, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					category = EXCLUDED.category,
					applies_to = EXCLUDED.applies_to,
					validity_days = EXCLUDED.validity_days,
					optional = EXCLUDED.optional,
					position = EXCLUDED.position
			`, string(d.ID), d.Name, string(d.Category), pq.Array(appliesTo), validity, d.Optional, i)
			if err != nil {
				return fmt.Errorf("upsert document type %s: %w", d.ID, err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (models.DocumentTypeDefinition, error) {
	var (
		d         models.DocumentTypeDefinition
		typeID    string
		category  string
		appliesTo string
		validity  sql.NullInt32
	)
	if err := row.Scan(&typeID, &d.Name, &category, &appliesTo, &validity, &d.Optional); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, err
		}
		return d, fmt.Errorf("scan document type: %w", err)
	}
	d.ID = id.DocumentTypeID(typeID)
	d.Category = models.Category(category)
	for _, pt := range strings.Split(appliesTo, ",") {
		if pt != "" {
			d.AppliesTo = append(d.AppliesTo, id.PersonType(pt))
		}
	}
	if validity.Valid {
		d.ValidityDays = models.Days(int(validity.Int32))
	}
	return d, nil
}
