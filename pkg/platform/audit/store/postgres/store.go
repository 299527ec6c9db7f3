package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "onboarding/pkg/domain"
	audit "onboarding/pkg/platform/audit"
	txcontext "onboarding/pkg/platform/tx"
)

// Store implements audit.Store and audit.Reader on the audit_events table.
// Appends join the caller's transaction when one is in context, so a
// review decision and its audit row commit together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, client_id, document_id, subject,
			action, decision, reason, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		nullableUUID(uuid.UUID(event.ClientID)),
		nullableUUID(uuid.UUID(event.DocumentID)),
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByClient returns the client's events, oldest first.
func (s *Store) ListByClient(ctx context.Context, clientID id.ClientID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, client_id, document_id, subject,
			   action, decision, reason, request_id, actor_id
		FROM audit_events
		WHERE client_id = $1
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event      audit.Event
			category   string
			clientUUID uuid.NullUUID
			docUUID    uuid.NullUUID
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&clientUUID,
			&docUUID,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if clientUUID.Valid {
			event.ClientID = id.ClientID(clientUUID.UUID)
		}
		if docUUID.Valid {
			event.DocumentID = id.DocumentID(docUUID.UUID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullableUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
