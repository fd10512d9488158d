package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaccinationCardText = `INTERNATIONAL CERTIFICATE OF VACCINATION OR PROPHYLAXIS
NAME: ABEBE BEKELE DATE OF BIRTH: 14/05/1990
CERTIFICATE NO: YF-2021-998877
YELLOW FEVER / FIEVRE JAUNE
DATE: 10/01/2021
BATCH NO: STM-4471
CENTRE: Addis Ababa Health Center
`

func TestVaccinationExtract(t *testing.T) {
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), vaccinationCardText)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "ABEBE BEKELE", doc.Field(FieldHolderName))
	assert.Equal(t, "2021-01-10", doc.Field(FieldYellowFeverDate))
	assert.Equal(t, "2021-01-20", doc.Field(FieldYellowFeverFrom))
	assert.Equal(t, "YF-2021-998877", doc.Field(FieldCertificateNumber))
	assert.Equal(t, "STM-4471", doc.Field(FieldBatchNumber))
	assert.Equal(t, "Addis Ababa Health Center", doc.Field(FieldVaccinationCenter))

	assert.True(t, doc.Check(CheckYellowFeverPresent))
	assert.True(t, doc.Check(CheckVaccinationDatePast))
	assert.True(t, doc.Check(CheckYellowFeverValid))
	assert.True(t, doc.Check(CheckCertificateFormatValid))
}

func TestVaccinationExtractSkipsBirthDate(t *testing.T) {
	// the certificate title and the DOB line must not produce a
	// vaccination date; only the dated yellow fever entry counts
	text := `INTERNATIONAL CERTIFICATE OF VACCINATION
NAME: SARA TESFAYE
YELLOW FEVER / FIEVRE JAUNE
DATE OF BIRTH: 05/07/1993
DATE: 12/02/2024
`
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "2024-02-12", doc.Field(FieldYellowFeverDate))
	assert.True(t, doc.Check(CheckYellowFeverValid))
}

func TestVaccinationExtractTitleOnlyHasNoDate(t *testing.T) {
	text := `INTERNATIONAL CERTIFICATE OF VACCINATION OR PROPHYLAXIS
NAME: SARA TESFAYE DATE OF BIRTH: 05/07/1993
CERTIFICATE NO: YF-2020-112233
`
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Empty(t, doc.Field(FieldYellowFeverDate))
	assert.False(t, doc.Check(CheckYellowFeverPresent))
}

func TestVaccinationExtractOCRMisread(t *testing.T) {
	text := `NAME: AMINA HASSAN DATE OF BIRTH: 02/03/1995
YELL0W FEVER STAMARIL 15/03/2022
`
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "2022-03-15", doc.Field(FieldYellowFeverDate))
	assert.True(t, doc.Check(CheckYellowFeverPresent))
	assert.True(t, doc.Check(CheckYellowFeverValid))
	assert.True(t, doc.Success)
}

func TestVaccinationExtractTooRecent(t *testing.T) {
	// shot five days before travel: inside the efficacy window
	text := `NAME: JAMES ODHIAMBO DATE OF BIRTH: 01/01/1988
YELLOW FEVER
DATE: 25/02/2026
`
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "2026-02-25", doc.Field(FieldYellowFeverDate))
	assert.True(t, doc.Check(CheckVaccinationDatePast))
	assert.False(t, doc.Check(CheckYellowFeverValid))
	assert.Equal(t, "6", doc.Field(FieldDaysUntilValid))
}

func TestVaccinationExtractNoYellowFever(t *testing.T) {
	text := `NAME: WOLDE GIRMA DATE OF BIRTH: 10/10/1992
COVID-19 VACCINE
DATE: 01/01/2024
`
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Empty(t, doc.Field(FieldYellowFeverDate))
	assert.False(t, doc.Check(CheckYellowFeverPresent))
	assert.False(t, doc.Check(CheckYellowFeverValid))
	assert.False(t, doc.Success)
}

func TestVaccinationExtractMalformed(t *testing.T) {
	e := NewVaccinationExtractor(testOptions())
	doc, err := e.Extract(context.Background(), "")
	require.NoError(t, err)

	assert.False(t, doc.Success)
	assert.False(t, doc.Check(CheckYellowFeverValid))
}
