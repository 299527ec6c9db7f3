// Package store holds the client registry stores.
package store

import (
	"context"
	"sync"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

// InMemory is a client registry keyed by id with an RFC index.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[id.ClientID]models.ClientProfile
	byRFC map[id.RFC]id.ClientID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:  make(map[id.ClientID]models.ClientProfile),
		byRFC: make(map[id.RFC]id.ClientID),
	}
}

// Create stores a new client. A duplicate id or RFC returns sentinel.ErrConflict.
func (s *InMemory) Create(_ context.Context, c *models.ClientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[c.ID]; exists {
		return sentinel.ErrConflict
	}
	if c.RFC != "" {
		if _, taken := s.byRFC[c.RFC]; taken {
			return sentinel.ErrConflict
		}
		s.byRFC[c.RFC] = c.ID
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, clientID id.ClientID) (*models.ClientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) FindByRFC(_ context.Context, rfc id.RFC) (*models.ClientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clientID, ok := s.byRFC[rfc]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := s.byID[clientID]
	return &c, nil
}
