package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForComparison(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accents folded", "Kouamé N'Guessan", "KOUAMENGUESSAN"},
		{"punctuation stripped", "DOE, JOHN-PAUL", "DOEJOHNPAUL"},
		{"digits kept", "AB 123 456", "AB123456"},
		{"empty", "", ""},
		{"ligatures", "Œuvre straße", "OEUVRESTRASSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForComparison(tt.input))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hyphenated", "Jean-Baptiste", "JEAN BAPTISTE"},
		{"apostrophe", "N'Dri Konan", "N DRI KONAN"},
		{"accents", "Béatrice Gonné", "BEATRICE GONNE"},
		{"extra whitespace", "  ABEBE   BEKELE ", "ABEBE BEKELE"},
		{"digits dropped", "SMITH 2ND", "SMITH ND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("identical after normalization", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("Abébé", "ABEBE"))
	})
	t.Run("empty sides", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", "ABEBE"))
		assert.Equal(t, 0.0, Similarity("ABEBE", ""))
	})
	t.Run("close spellings score high", func(t *testing.T) {
		s := Similarity("TESHOME", "TESH0ME") // OCR zero for O
		assert.Greater(t, s, 0.80)
	})
	t.Run("unrelated names score low", func(t *testing.T) {
		assert.Less(t, Similarity("BEKELE", "SMITH"), 0.40)
	})
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "ABEBE BEKELE", "ABEBE BEKELE", true},
		{"accent and case variance", "Abébé Bekele", "ABEBE BEKELE", true},
		{"containment missing middle name", "BEKELE ABEBE", "BEKELE ABEBE TESHOME", true},
		{"word order flipped", "ABEBE BEKELE", "BEKELE ABEBE", true},
		{"different surname", "DOE JOHN", "SMITH JOHN", false},
		{"entirely different", "KAMAU NJOROGE", "TESFAYE LEMMA", false},
		{"one empty", "", "ABEBE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NamesMatch(tt.a, tt.b, DefaultNameThreshold)
			require.Equal(t, tt.want, got)
			// symmetric by contract
			require.Equal(t, got, NamesMatch(tt.b, tt.a, DefaultNameThreshold))
		})
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "JBD", Initials("Jean-Baptiste Doe"))
	assert.Equal(t, "", Initials(""))
}
