package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"onboarding/internal/document/models"
	dErrors "onboarding/pkg/domain-errors"
)

// file is the on-disk layout:
//
//	document_types:
//	  - id: curp
//	    name: CURP
//	    category: national_id
//	    applies_to: [PF, PF_AE]
//	    optional: false
//	    validity_days: 90   # omit for documents that never expire
type file struct {
	DocumentTypes []models.DocumentTypeDefinition `yaml:"document_types"`
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) ([]models.DocumentTypeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog, rejecting unknown keys.
func Parse(data []byte) ([]models.DocumentTypeDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid catalog file")
	}
	if len(f.DocumentTypes) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "catalog file defines no document types")
	}
	for _, d := range f.DocumentTypes {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return f.DocumentTypes, nil
}
