package mrz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

const (
	tdLine1 = "P<ETHBEKELE<<ABEBE<TESHOME<<<<<<<<<<<<<<<<<<"
	tdLine2 = "EP12345671ETH9005145M3005143<<<<<<<<<<<<<<04"
)

func TestCheckDigit(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{"EP1234567", 1},
		{"900514", 5},
		{"300514", 3},
		{"<<<<<<<<<<<<<<", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckDigit(tt.data))
		})
	}
}

func TestNormalizeLine(t *testing.T) {
	assert.Equal(t, "P<ETH<<<<<", NormalizeLine("p<eth", 10))
	assert.Equal(t, "ABCDE", NormalizeLine("AB CD-E?", 5))
	assert.Equal(t, "ABC", NormalizeLine("ABCDEF", 3))
}

func TestParseTD3(t *testing.T) {
	td := ParseTD3(tdLine1, tdLine2, testNow)

	assert.Equal(t, "P", td.DocumentCode)
	assert.Equal(t, "ETH", td.IssuingCountry)
	assert.Equal(t, "BEKELE", td.Surname)
	assert.Equal(t, "ABEBE TESHOME", td.GivenNames)

	assert.Equal(t, "EP1234567", td.PassportNumber)
	assert.True(t, td.PassportNumberValid)
	assert.Equal(t, "ETH", td.Nationality)
	assert.Equal(t, "1990-05-14", td.BirthDate)
	assert.True(t, td.BirthDateValid)
	assert.Equal(t, "M", td.Sex)
	assert.Equal(t, "2030-05-14", td.ExpiryDate)
	assert.True(t, td.ExpiryDateValid)
	assert.Empty(t, td.PersonalNumber)
	assert.True(t, td.CompositeValid)
	assert.True(t, td.AllChecksValid())
}

func TestParseTD3BadCheckDigit(t *testing.T) {
	// flip the passport number check digit from 1 to 0
	bad := tdLine2[:9] + "0" + tdLine2[10:]
	td := ParseTD3(tdLine1, bad, testNow)
	assert.False(t, td.PassportNumberValid)
	assert.False(t, td.AllChecksValid())
}

func TestDateToISO(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		isExpiry bool
		want     string
	}{
		{"birth past century", "900514", false, "1990-05-14"},
		{"birth current century", "150101", false, "2015-01-01"},
		{"birth above pivot", "750630", false, "1975-06-30"},
		{"expiry near future", "300514", true, "2030-05-14"},
		{"expiry beyond window is last century", "990101", true, "1999-01-01"},
		{"bad month", "901401", false, ""},
		{"bad day", "900132", false, ""},
		{"non numeric", "9005A4", false, ""},
		{"short", "9005", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateToISO(tt.in, tt.isExpiry, testNow))
		})
	}
}

func TestExtractLines(t *testing.T) {
	t.Run("clean block", func(t *testing.T) {
		text := "REPUBLIC OF ETHIOPIA\nPASSPORT\n" + tdLine1 + "\n" + tdLine2 + "\n"
		l1, l2, ok := ExtractLines(text)
		require.True(t, ok)
		assert.Equal(t, tdLine1, l1)
		assert.Equal(t, tdLine2, l2)
	})

	t.Run("ocr noise in filler", func(t *testing.T) {
		noisy := "P[ETHBEKELE//ABEBE<TESHOME<<<<<<<<<<<<<<<<<<"
		text := noisy + "\n" + tdLine2
		l1, l2, ok := ExtractLines(text)
		require.True(t, ok)
		assert.Equal(t, tdLine1, l1)
		assert.Equal(t, tdLine2, l2)
	})

	t.Run("spaces inside lines", func(t *testing.T) {
		text := "P<ETHBEKELE<<ABEBE<TESHOME <<<<<<<<<<<<<<<<<<\nEP12345671ETH9005145M3005143 <<<<<<<<<<<<<<04"
		_, l2, ok := ExtractLines(text)
		require.True(t, ok)
		assert.Equal(t, tdLine2, l2)
	})

	t.Run("no mrz", func(t *testing.T) {
		_, _, ok := ExtractLines("HOTEL RESERVATION CONFIRMATION\nGUEST: ABEBE BEKELE")
		assert.False(t, ok)
	})
}
