package models

// ExtractedFieldSet is what the document analyzer read from one file.
// Field shapes depend on the document category; values are untrusted.
type ExtractedFieldSet struct {
	IsValid    bool           `json:"is_valid"`
	Confidence float64        `json:"confidence"`
	Fields     map[string]any `json:"extracted_fields"`
}
