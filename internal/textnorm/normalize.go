// Package textnorm normalizes and compares OCR'd text, tolerant of
// accents, casing, punctuation and common recognition noise.
package textnorm

import "strings"

// accents maps Latin-1/Latin-Extended letters onto their ASCII fold.
var accents = map[rune]string{
	'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A", 'Ä': "A", 'Å': "A",
	'Æ': "AE", 'Ç': "C", 'È': "E", 'É': "E", 'Ê': "E", 'Ë': "E",
	'Ì': "I", 'Í': "I", 'Î': "I", 'Ï': "I", 'Ð': "D", 'Ñ': "N",
	'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O", 'Ö': "O", 'Ø': "O",
	'Ù': "U", 'Ú': "U", 'Û': "U", 'Ü': "U", 'Ý': "Y", 'Þ': "TH",
	'ß': "SS", 'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a",
	'å': "a", 'æ': "ae", 'ç': "c", 'è': "e", 'é': "e", 'ê': "e",
	'ë': "e", 'ì': "i", 'í': "i", 'î': "i", 'ï': "i", 'ð': "d",
	'ñ': "n", 'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o",
	'ø': "o", 'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ý': "y",
	'þ': "th", 'ÿ': "y", 'Œ': "OE", 'œ': "oe", 'Š': "S", 'š': "s",
	'Ž': "Z", 'ž': "z", 'ƒ': "f",
}

// RemoveAccents folds accented letters to their ASCII equivalent. Runes
// without a mapping pass through unchanged.
func RemoveAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := accents[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeForComparison reduces a value to uppercase alphanumerics only.
func NormalizeForComparison(s string) string {
	s = strings.ToUpper(RemoveAccents(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName uppercases a name, folds accents, and collapses everything
// that is not a letter into single spaces. Handles hyphenated and
// apostrophed compound names.
func NormalizeName(name string) string {
	s := strings.ToUpper(RemoveAccents(name))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Initials returns the concatenated first letters of a name's words.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(NormalizeName(name)) {
		b.WriteByte(w[0])
	}
	return b.String()
}
