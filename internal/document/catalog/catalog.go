// Package catalog is the document type registry: which documents exist,
// who must provide them and how long they stay valid.
package catalog

import (
	"context"
	"slices"
	"sync"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
)

// Catalog is an in-memory registry loaded from defaults or a YAML file.
// It is safe for concurrent use; Replace swaps the whole set atomically.
type Catalog struct {
	mu    sync.RWMutex
	defs  map[id.DocumentTypeID]models.DocumentTypeDefinition
	order []id.DocumentTypeID
}

// New validates defs and builds a catalog. Duplicate ids are rejected.
func New(defs ...models.DocumentTypeDefinition) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(defs); err != nil {
		return nil, err
	}
	return c, nil
}

// MustDefault returns the built-in catalog; it panics only if the built-in
// table itself is invalid.
func MustDefault() *Catalog {
	c, err := New(Default()...)
	if err != nil {
		panic(err)
	}
	return c
}

// Replace validates and installs a new set of definitions.
func (c *Catalog) Replace(defs []models.DocumentTypeDefinition) error {
	next := make(map[id.DocumentTypeID]models.DocumentTypeDefinition, len(defs))
	order := make([]id.DocumentTypeID, 0, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
		if _, dup := next[d.ID]; dup {
			return dErrors.Newf(dErrors.CodeValidation, "duplicate document type %q", d.ID)
		}
		next[d.ID] = clone(d)
		order = append(order, d.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs = next
	c.order = order
	return nil
}

// ListApplicable returns the definitions that apply to pt, in catalog order.
func (c *Catalog) ListApplicable(_ context.Context, pt id.PersonType) ([]models.DocumentTypeDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.DocumentTypeDefinition
	for _, typeID := range c.order {
		if d := c.defs[typeID]; d.AppliesToPersonType(pt) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

// FindByID returns sentinel.ErrNotFound for unknown ids.
func (c *Catalog) FindByID(_ context.Context, typeID id.DocumentTypeID) (*models.DocumentTypeDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[typeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	d = clone(d)
	return &d, nil
}

// All returns every definition in catalog order.
func (c *Catalog) All() []models.DocumentTypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.DocumentTypeDefinition, 0, len(c.order))
	for _, typeID := range c.order {
		out = append(out, clone(c.defs[typeID]))
	}
	return out
}

// clone detaches slices and pointers so callers cannot mutate the registry.
func clone(d models.DocumentTypeDefinition) models.DocumentTypeDefinition {
	d.AppliesTo = slices.Clone(d.AppliesTo)
	if d.ValidityDays != nil {
		d.ValidityDays = models.Days(*d.ValidityDays)
	}
	return d
}
