// Package dossier decodes and validates incoming dossier payloads before
// extraction runs. A payload carries the raw OCR text of each submitted
// document, keyed by document type.
package dossier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/common"
)

// InputDocument is one submitted document: its declared type and the raw
// text recovered from it.
type InputDocument struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Input is the decoded dossier payload.
type Input struct {
	VisaType  string          `json:"visa_type,omitempty"`
	Entries   string          `json:"entries,omitempty"`
	Documents []InputDocument `json:"documents"`
}

// inputSchema validates the shape of a dossier payload. Document type
// canonicalization happens after decoding; the schema only pins structure.
var inputSchema = map[string]any{
	"$schema":              "https://json-schema.org/draft/2020-12/schema",
	"type":                 "object",
	"additionalProperties": false,
	"required":             []any{"documents"},
	"properties": map[string]any{
		"visa_type": map[string]any{"type": "string"},
		"entries":   map[string]any{"type": "string"},
		"documents": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"type", "text"},
				"properties": map[string]any{
					"type": map[string]any{"type": "string", "minLength": 1},
					"text": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

// ParseInput validates and decodes a dossier payload. Document types are
// canonicalized; unknown or duplicate types are rejected.
func ParseInput(data []byte) (*Input, error) {
	if err := common.ValidateJSONAgainstSchema(inputSchema, data); err != nil {
		return nil, fmt.Errorf("dossier payload: %w", err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode dossier payload: %w", err)
	}

	seen := map[constants.DocumentType]bool{}
	for i, d := range in.Documents {
		dt, ok := constants.CanonicalizeDocumentType(d.Type)
		if !ok {
			return nil, common.NewAppError("UNKNOWN_DOCUMENT_TYPE",
				fmt.Sprintf("document %d has unrecognized type %q, known types: %s",
					i, d.Type, strings.Join(constants.DocumentTypesAsStrings(), ", ")), common.ErrInvalidInput)
		}
		if seen[dt] {
			return nil, common.NewAppError("DUPLICATE_DOCUMENT_TYPE",
				fmt.Sprintf("document type %s appears more than once", dt), common.ErrInvalidInput)
		}
		seen[dt] = true
		in.Documents[i].Type = string(dt)
	}
	return &in, nil
}

// ReadDirectory assembles an Input from a directory of raw text files. Each
// *.txt file's base name names its document type (passport.txt,
// flight_ticket.txt, ...). Files whose name resolves to no known type are
// skipped.
func ReadDirectory(dir string) (*Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dossier directory: %w", err)
	}

	var in Input
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		dt, ok := constants.CanonicalizeDocumentType(base)
		if !ok {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if len(strings.TrimSpace(string(text))) == 0 {
			continue
		}
		in.Documents = append(in.Documents, InputDocument{Type: string(dt), Text: string(text)})
	}
	if len(in.Documents) == 0 {
		return nil, common.NewAppError("EMPTY_DOSSIER",
			fmt.Sprintf("no recognizable document text files in %s", dir), common.ErrInvalidInput)
	}
	return &in, nil
}
