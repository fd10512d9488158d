package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verbalNoteText = `NOTE VERBALE
REF: AMB/2026/0145
THE EMBASSY OF THE FEDERAL DEMOCRATIC REPUBLIC OF ETHIOPIA
presents its compliments to the AMBASSADE DE COTE D'IVOIRE in
Addis Ababa and has the honour to request a DIPLOMATIC VISA for
H.E. MR. TESFAYE LEMMA, AMBASSADOR, holder of
DIPLOMATIC PASSPORT NO: D0034567.
OBJET: DEMANDE DE VISA DIPLOMATIQUE
PURPOSE: OFFICIAL MISSION TO THE SUMMIT OF HEADS OF STATE
ADDIS ABABA, LE 15/01/2026
SIGNED AND SEALED
`

func TestVerbalNoteExtract(t *testing.T) {
	e := NewVerbalNoteExtractor(testOptions())
	doc, err := e.Extract(context.Background(), verbalNoteText)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "FEDERAL DEMOCRATIC REPUBLIC OF ETHIOPIA", doc.Field(FieldSendingEntity))
	assert.Equal(t, "AMBASSADE DE COTE D'IVOIRE", doc.Field(FieldReceivingEntity))
	assert.Equal(t, "AMB/2026/0145", doc.Field(FieldNoteReference))
	assert.Equal(t, "2026-01-15", doc.Field(FieldNoteDate))
	assert.Equal(t, "TESFAYE LEMMA", doc.Field(FieldDiplomatName))
	assert.Equal(t, "AMBASSADOR", doc.Field(FieldDiplomatTitle))
	assert.Equal(t, "D0034567", doc.Field(FieldDiplomatPassport))
	assert.Equal(t, "DIPLOMATIC", doc.Field(FieldRequestedVisaType))

	assert.True(t, doc.Check(CheckOfficialLetterhead))
	assert.True(t, doc.Check(CheckAddressedToCIEmbassy))
	assert.True(t, doc.Check(CheckDiplomatIdentified))
	assert.True(t, doc.Check(CheckNoteReferencePres))
	assert.True(t, doc.Check(CheckNoteDateRecent))
	assert.True(t, doc.Check(CheckSignaturePresent))
}

func TestVerbalNoteExtractStaleDate(t *testing.T) {
	text := `NOTE VERBALE
THE EMBASSY OF DJIBOUTI presents its compliments to the
AMBASSADE DE COTE D'IVOIRE and requests a SERVICE VISA for
MR. AHMED WABERI, FIRST SECRETARY.
DATED: 01/06/2025
`
	e := NewVerbalNoteExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)
	require.True(t, doc.Success)

	// issued more than six months before the fixed test clock
	assert.False(t, doc.Check(CheckNoteDateRecent))
	assert.Equal(t, "SERVICE", doc.Field(FieldRequestedVisaType))
}

func TestVerbalNoteExtractInternationalOrg(t *testing.T) {
	text := `The AFRICAN UNION COMMISSION presents its compliments to the
Ambassade de Cote d'Ivoire and requests a visa for
MRS. AMINA SALAH, ATTACHE.
LE 10/02/2026
`
	e := NewVerbalNoteExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "AFRICAN UNION", doc.Field(FieldSendingEntity))
	assert.True(t, doc.Check(CheckOfficialLetterhead))
	assert.False(t, doc.Check(CheckNoteReferencePres))
}

func TestVerbalNoteExtractNoDiplomat(t *testing.T) {
	text := `THE EMBASSY OF SUDAN presents its compliments.
DATED: 20/02/2026
`
	e := NewVerbalNoteExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.False(t, doc.Success)
	assert.False(t, doc.Check(CheckDiplomatIdentified))
}
