// Package store persists document records.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

// InMemory keeps every record, current and historical, keyed by id.
type InMemory struct {
	mu       sync.RWMutex
	records  map[id.DocumentID]models.DocumentRecord
	byClient map[id.ClientID][]id.DocumentID

	// txMu serialises RunInTx callers; it is separate from mu so the
	// callback can use the regular methods.
	txMu sync.Mutex
}

func NewInMemory() *InMemory {
	return &InMemory{
		records:  make(map[id.DocumentID]models.DocumentRecord),
		byClient: make(map[id.ClientID][]id.DocumentID),
	}
}

// RunInTx runs fn under a coarse lock.
func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// Save inserts or replaces a record.
func (s *InMemory) Save(_ context.Context, r models.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[r.ID]; ok && existing.ClientID != r.ClientID {
		return sentinel.ErrConflict
	}
	if _, ok := s.records[r.ID]; !ok {
		s.byClient[r.ClientID] = append(s.byClient[r.ClientID], r.ID)
	}
	s.records[r.ID] = r
	return nil
}

func (s *InMemory) FindByID(_ context.Context, documentID id.DocumentID) (*models.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

// ListByClient returns the client's full history, oldest upload first.
func (s *InMemory) ListByClient(_ context.Context, clientID id.ClientID) ([]models.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentRecord, 0, len(s.byClient[clientID]))
	for _, docID := range s.byClient[clientID] {
		out = append(out, s.records[docID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].IsMoreCurrentThan(out[i])
	})
	return out, nil
}

// ListCurrentByClient returns the most current record per document type,
// ordered by type id.
func (s *InMemory) ListCurrentByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error) {
	all, err := s.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	current := models.CurrentByType(all)
	out := make([]models.DocumentRecord, 0, len(current))
	for _, r := range current {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeID < out[j].TypeID })
	return out, nil
}

// ListSweepable returns pending or accepted records whose expiration day is
// before now's day.
func (s *InMemory) ListSweepable(_ context.Context, now time.Time) ([]models.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DocumentRecord
	for _, r := range s.records {
		if r.Status.CanTransitionTo(models.StatusExpired) && r.IsPastExpiration(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}
