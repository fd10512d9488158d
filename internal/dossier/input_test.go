package dossier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	payload := []byte(`{
		"visa_type": "COURT_SEJOUR",
		"documents": [
			{"type": "passport", "text": "REPUBLIC OF KENYA PASSPORT"},
			{"type": "flight", "text": "ET 509 NBO ABJ"}
		]
	}`)

	in, err := ParseInput(payload)
	require.NoError(t, err)
	assert.Equal(t, "COURT_SEJOUR", in.VisaType)
	require.Len(t, in.Documents, 2)
	assert.Equal(t, "passport", in.Documents[0].Type)
	// synonym resolved to the canonical type
	assert.Equal(t, "flight_ticket", in.Documents[1].Type)
}

func TestParseInputRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"no documents", `{"visa_type": "TRANSIT"}`},
		{"empty documents", `{"documents": []}`},
		{"document without text", `{"documents": [{"type": "passport"}]}`},
		{"empty text", `{"documents": [{"type": "passport", "text": ""}]}`},
		{"unknown field", `{"documents": [{"type": "passport", "text": "x", "lang": "fr"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseInput([]byte(tc.payload))
			assert.Error(t, err)
		})
	}
}

func TestParseInputUnknownDocumentType(t *testing.T) {
	_, err := ParseInput([]byte(`{"documents": [{"type": "bank_statement", "text": "x"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_DOCUMENT_TYPE")
	// the error names the accepted types
	assert.Contains(t, err.Error(), "verbal_note")
	assert.Contains(t, err.Error(), "residence_card")
}

func TestParseInputDuplicateDocumentType(t *testing.T) {
	_, err := ParseInput([]byte(`{"documents": [
		{"type": "passport", "text": "a"},
		{"type": "passeport", "text": "b"}
	]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUPLICATE_DOCUMENT_TYPE")
}

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("passport.txt", "PASSPORT TEXT")
	write("hotel.txt", "RESERVATION TEXT")
	write("notes.md", "ignored, wrong extension")
	write("bank_statement.txt", "ignored, unknown type")
	write("vaccination.txt", "   ")

	in, err := ReadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, in.Documents, 2)

	types := []string{in.Documents[0].Type, in.Documents[1].Type}
	assert.ElementsMatch(t, []string{"passport", "hotel_reservation"}, types)
}

func TestReadDirectoryEmpty(t *testing.T) {
	_, err := ReadDirectory(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMPTY_DOSSIER")
}
