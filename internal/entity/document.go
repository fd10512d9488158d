package entity

import (
	"github.com/google/uuid"

	"github.com/kodjo-amani/dossier-check/constants"
)

// Field is a single extracted value with its extraction confidence in [0,1].
type Field struct {
	Value      string  `json:"value"`
	Confidence float32 `json:"confidence"`
}

// Document is the result of running one extractor over one document's OCR
// text. Fields map extractor-defined field names to extracted values; Checks
// map derived validation names to their outcome.
type Document struct {
	DocumentType constants.DocumentType `json:"document_type"`
	Success      bool                   `json:"success"`
	Fields       map[string]Field       `json:"fields"`
	Checks       map[string]bool        `json:"checks,omitempty"`
	Warnings     []string               `json:"warnings,omitempty"`
}

// Field returns the value of a named field, or "" when absent.
func (d *Document) Field(name string) string {
	if d == nil {
		return ""
	}
	f, ok := d.Fields[name]
	if !ok {
		return ""
	}
	return f.Value
}

// FieldConfidence returns the confidence of a named field, 0 when absent.
func (d *Document) FieldConfidence(name string) float32 {
	if d == nil {
		return 0
	}
	return d.Fields[name].Confidence
}

// SetField records a field value, skipping empties.
func (d *Document) SetField(name, value string, confidence float32) {
	if value == "" {
		return
	}
	if d.Fields == nil {
		d.Fields = map[string]Field{}
	}
	d.Fields[name] = Field{Value: value, Confidence: clamp01(confidence)}
}

// Check returns a named derived check; absent checks read as false.
func (d *Document) Check(name string) bool {
	if d == nil {
		return false
	}
	return d.Checks[name]
}

func (d *Document) SetCheck(name string, ok bool) {
	if d.Checks == nil {
		d.Checks = map[string]bool{}
	}
	d.Checks[name] = ok
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Dossier groups the documents of one visa application, keyed by document
// type. A dossier may be partial; validators treat absent documents as
// "not provided", never as errors in extraction.
type Dossier struct {
	ID        uuid.UUID                            `json:"id"`
	VisaType  constants.VisaType                   `json:"visa_type"`
	Documents map[constants.DocumentType]*Document `json:"documents"`
}

// Document returns the dossier's document of the given type, or nil.
func (d *Dossier) Document(t constants.DocumentType) *Document {
	if d == nil {
		return nil
	}
	return d.Documents[t]
}

// Add stores a document under its own type, replacing any previous one.
func (d *Dossier) Add(doc *Document) {
	if doc == nil {
		return
	}
	if d.Documents == nil {
		d.Documents = map[constants.DocumentType]*Document{}
	}
	d.Documents[doc.DocumentType] = doc
}
