package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
	txcontext "onboarding/pkg/platform/tx"
)

// Postgres persists records in the documents table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const documentColumns = `
	id, client_id, type_id, document_date, upload_date, expiration_date,
	status, reviewer_comment, reviewed_by, reviewed_at, file_reference
`

// RunInTx runs fn in a transaction carried through ctx.
func (s *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, s.db, fn)
}

func (s *Postgres) Save(ctx context.Context, r models.DocumentRecord) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			reviewer_comment = EXCLUDED.reviewer_comment,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_at = EXCLUDED.reviewed_at
		WHERE documents.client_id = EXCLUDED.client_id
	`,
		uuid.UUID(r.ID), uuid.UUID(r.ClientID), string(r.TypeID), r.DocumentDate, r.UploadDate,
		nullTime(r.ExpirationDate), string(r.Status), r.ReviewerComment, r.ReviewedBy,
		nullTime(r.ReviewedAt), r.FileReference,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// id already belongs to another client
		return sentinel.ErrConflict
	}
	return nil
}

// FindByID locks the row when called inside RunInTx.
func (s *Postgres) FindByID(ctx context.Context, documentID id.DocumentID) (*models.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	if _, ok := txcontext.From(ctx); ok {
		query += ` FOR UPDATE`
	}
	r, err := scanRecord(txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(documentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Postgres) ListByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error) {
	return s.list(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE client_id = $1
		ORDER BY upload_date, document_date, id
	`, uuid.UUID(clientID))
}

func (s *Postgres) ListCurrentByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error) {
	return s.list(ctx, `
		SELECT DISTINCT ON (type_id) `+documentColumns+` FROM documents
		WHERE client_id = $1
		ORDER BY type_id, upload_date DESC, document_date DESC, id DESC
	`, uuid.UUID(clientID))
}

func (s *Postgres) ListSweepable(ctx context.Context, now time.Time) ([]models.DocumentRecord, error) {
	return s.list(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE status IN ('pending', 'accepted') AND expiration_date < $1
		ORDER BY id
	`, models.Day(now))
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]models.DocumentRecord, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []models.DocumentRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.DocumentRecord, error) {
	var (
		r                   models.DocumentRecord
		docID, clientID     uuid.UUID
		typeID, status      string
		expires, reviewedAt sql.NullTime
	)
	if err := row.Scan(&docID, &clientID, &typeID, &r.DocumentDate, &r.UploadDate, &expires,
		&status, &r.ReviewerComment, &r.ReviewedBy, &reviewedAt, &r.FileReference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan document: %w", err)
	}
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return r, err
	}
	r.ID = id.DocumentID(docID)
	r.ClientID = id.ClientID(clientID)
	r.TypeID = id.DocumentTypeID(typeID)
	r.Status = parsed
	r.DocumentDate = models.Day(r.DocumentDate)
	r.UploadDate = r.UploadDate.UTC()
	if expires.Valid {
		exp := models.Day(expires.Time)
		r.ExpirationDate = &exp
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time.UTC()
		r.ReviewedAt = &at
	}
	return r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
