package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const residenceCardText = `FEDERAL DEMOCRATIC REPUBLIC OF ETHIOPIA
RESIDENCE PERMIT - WORK PERMIT
CARD NO: RP/0482915
HOLDER: JAMES ODHIAMBO
NATIONALITY: KENYAN
DATE OF BIRTH: 02/11/1988
ISSUED ON: 10/01/2025
EXPIRES: 10/01/2027
EMPLOYER: SAFARI LOGISTICS PLC
ADDRESS: BOLE ROAD, ADDIS ABABA
`

func TestResidenceCardExtract(t *testing.T) {
	e := NewResidenceCardExtractor(testOptions())
	doc, err := e.Extract(context.Background(), residenceCardText)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "JAMES ODHIAMBO", doc.Field(FieldHolderName))
	assert.Equal(t, "RP0482915", doc.Field(FieldCardNumber))
	assert.Equal(t, "KENYAN", doc.Field(FieldNationality))
	assert.Equal(t, "1988-11-02", doc.Field(FieldBirthDate))
	assert.Equal(t, "2025-01-10", doc.Field(FieldIssueDate))
	assert.Equal(t, "2027-01-10", doc.Field(FieldExpiryDate))
	assert.Equal(t, "ETHIOPIA", doc.Field(FieldIssuingCountry))
	assert.Equal(t, "WORK", doc.Field(FieldResidenceType))
	assert.Equal(t, "SAFARI LOGISTICS PLC", doc.Field(FieldEmployer))

	assert.True(t, doc.Check(CheckCardNotExpired))
	assert.True(t, doc.Check(CheckCountryJurisdicted))
	assert.True(t, doc.Check(CheckCardNumberFormat))
}

func TestResidenceCardExtractExpired(t *testing.T) {
	text := `REPUBLIQUE DE DJIBOUTI
CARTE DE RESIDENT - ETUDIANT
CARTE NO: AB1234567
TITULAIRE: FATOUMA HOUSSEIN
VALABLE JUSQU'AU: 01/02/2026
`
	e := NewResidenceCardExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "STUDY", doc.Field(FieldResidenceType))
	assert.Equal(t, "DJIBOUTI", doc.Field(FieldIssuingCountry))
	assert.False(t, doc.Check(CheckCardNotExpired))
	assert.True(t, doc.Check(CheckCountryJurisdicted))
}

func TestResidenceCardExtractNoNumber(t *testing.T) {
	text := `RESIDENCE PERMIT
HOLDER: SAMUEL KARIUKI
EXPIRES: 31/12/2027
`
	e := NewResidenceCardExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.False(t, doc.Success)
	assert.False(t, doc.Check(CheckCardNumberFormat))
}
