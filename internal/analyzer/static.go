package analyzer

import (
	"context"
	"maps"
	"sync"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
)

// Static returns canned field sets keyed by file reference. It backs local
// runs without an analyzer service and tests.
type Static struct {
	mu       sync.RWMutex
	results  map[string]models.ExtractedFieldSet
	failures map[string]error
	fallback *models.ExtractedFieldSet
}

func NewStatic() *Static {
	return &Static{
		results:  make(map[string]models.ExtractedFieldSet),
		failures: make(map[string]error),
	}
}

// Set registers the result for a file reference.
func (s *Static) Set(fileRef string, result models.ExtractedFieldSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[fileRef] = result
}

// Fail makes Analyze return err for a file reference.
func (s *Static) Fail(fileRef string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fileRef] = err
}

// WithFallback sets the result returned for unknown references.
func (s *Static) WithFallback(result models.ExtractedFieldSet) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &result
	return s
}

func (s *Static) Analyze(ctx context.Context, fileRef string, _ id.DocumentTypeID) (*models.ExtractedFieldSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError(ErrorTimeout, fileRef, "analysis cancelled", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.failures[fileRef]; ok {
		return nil, err
	}
	result, ok := s.results[fileRef]
	if !ok {
		if s.fallback == nil {
			return nil, NewError(ErrorNotFound, fileRef, "no analysis for file", nil)
		}
		result = *s.fallback
	}
	result.Fields = maps.Clone(result.Fields)
	return &result, nil
}
