package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flightRoundTripText = `ETHIOPIAN AIRLINES
E-TICKET ITINERARY
PASSENGER NAME: BEKELE/ABEBE TESHOME MR
FLIGHT ET 509
FROM ADDIS ABABA (ADD) TO ABIDJAN (ABJ) 15 JUN 2026
FROM ABIDJAN (ABJ) TO ADDIS ABABA (ADD) 30 JUN 2026
BOOKING REF: XYZ123
TICKET: 0711234567890
`

func TestFlightExtractRoundTrip(t *testing.T) {
	e := NewFlightTicketExtractor(testOptions())
	doc, err := e.Extract(context.Background(), flightRoundTripText)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "BEKELE/ABEBE TESHOME", doc.Field(FieldPassengerName))
	assert.Equal(t, "ET509", doc.Field(FieldFlightNumber))
	assert.Equal(t, "Ethiopian Airlines", doc.Field(FieldAirline))
	assert.Equal(t, "ADD", doc.Field(FieldDepartureAirport))
	assert.Equal(t, "ABJ", doc.Field(FieldArrivalAirport))
	assert.Equal(t, "2026-06-15", doc.Field(FieldDepartureDate))
	assert.Equal(t, "2026-06-30", doc.Field(FieldReturnDate))
	assert.Equal(t, "XYZ123", doc.Field(FieldBookingReference))
	assert.Equal(t, "0711234567890", doc.Field(FieldTicketNumber))

	assert.True(t, doc.Check(CheckDestinationAbidjan))
	assert.True(t, doc.Check(CheckDateIsFuture))
	assert.True(t, doc.Check(CheckDepartureInJurisdiction))
	assert.True(t, doc.Check(CheckFlightNumberValid))
	assert.True(t, doc.Check(CheckRoundTrip))
}

func TestFlightExtractOneWay(t *testing.T) {
	text := `KENYA AIRWAYS
PASSENGER: ODHIAMBO/JAMES MR
KQ 510 NAIROBI (NBO) - ABIDJAN (ABJ) 02/07/2026
`
	e := NewFlightTicketExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)
	require.True(t, doc.Success)

	assert.Equal(t, "ODHIAMBO/JAMES", doc.Field(FieldPassengerName))
	assert.Equal(t, "KQ510", doc.Field(FieldFlightNumber))
	assert.Equal(t, "Kenya Airways", doc.Field(FieldAirline))
	assert.Equal(t, "NBO", doc.Field(FieldDepartureAirport))
	assert.Equal(t, "ABJ", doc.Field(FieldArrivalAirport))
	assert.Equal(t, "2026-07-02", doc.Field(FieldDepartureDate))
	assert.Empty(t, doc.Field(FieldReturnDate))

	assert.True(t, doc.Check(CheckDestinationAbidjan))
	assert.True(t, doc.Check(CheckDepartureInJurisdiction))
	assert.False(t, doc.Check(CheckRoundTrip))
}

func TestFlightExtractPastDeparture(t *testing.T) {
	text := `PASSENGER NAME: GIRMA/WOLDE MR
ET 920 ADDIS ABABA (ADD) - ABIDJAN (ABJ) 10/01/2026
`
	e := NewFlightTicketExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "2026-01-10", doc.Field(FieldDepartureDate))
	assert.False(t, doc.Check(CheckDateIsFuture))
}

func TestFlightExtractWrongDestination(t *testing.T) {
	text := `PASSENGER NAME: GIRMA/WOLDE MR
ET 702 ADDIS ABABA (ADD) - LAGOS (LOS) 12/07/2026
`
	e := NewFlightTicketExtractor(testOptions())
	doc, err := e.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "LOS", doc.Field(FieldArrivalAirport))
	assert.False(t, doc.Check(CheckDestinationAbidjan))
	assert.True(t, doc.Check(CheckDepartureInJurisdiction))
}

func TestFlightExtractMalformed(t *testing.T) {
	e := NewFlightTicketExtractor(testOptions())
	doc, err := e.Extract(context.Background(), "nothing that looks like a ticket")
	require.NoError(t, err)

	assert.False(t, doc.Success)
	assert.False(t, doc.Check(CheckRoundTrip))
	assert.Empty(t, doc.Field(FieldFlightNumber))
}
