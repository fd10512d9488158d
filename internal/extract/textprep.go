package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

var months = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04", "MAY": "05", "JUN": "06",
	"JUL": "07", "AUG": "08", "SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

var (
	reCtl       = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	reSpaces    = regexp.MustCompile(`[ \t]+`)
	reDMY       = regexp.MustCompile(`(\d{2})[/\-.](\d{2})[/\-.](\d{4})`)
	reYMD       = regexp.MustCompile(`(\d{4})[/\-.](\d{2})[/\-.](\d{2})`)
	reYYMMDD    = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})$`)
	reDMonY     = regexp.MustCompile(`(?i)(\d{1,2})\s+(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Z]*\s+(\d{4})`)
	reDMonYY    = regexp.MustCompile(`(?i)(\d{1,2})\s+(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Z]*\s+(\d{2})\b`)
	reMonDY     = regexp.MustCompile(`(?i)(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Z]*\s+(\d{1,2}),?\s+(\d{4})`)
	reAmountCur = regexp.MustCompile(`(?i)(\d{1,3}(?:[,.\s]\d{3})+(?:[,.]\d{2})?|\d+(?:[,.]\d{2})?)\s*(XOF|FCFA|ETB|EUR|USD|CFA)?`)
)

// cleanText strips control characters and collapses runs of spaces while
// preserving line structure, which several extractors rely on.
func cleanText(text string) string {
	text = reCtl.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(reSpaces.ReplaceAllString(l, " "))
	}
	return strings.Join(lines, "\n")
}

// parseDate recognizes the date shapes seen on consular documents and
// returns ISO YYYY-MM-DD, or "" when nothing parses to a real date.
// Two-digit years pivot at 40: 00-40 map to 20xx, 41-99 to 19xx.
func parseDate(text string) string {
	text = strings.TrimSpace(text)

	if m := reDMY.FindStringSubmatch(text); m != nil {
		if iso := validISO(m[3], m[2], m[1]); iso != "" {
			return iso
		}
	}
	if m := reYMD.FindStringSubmatch(text); m != nil {
		if iso := validISO(m[1], m[2], m[3]); iso != "" {
			return iso
		}
	}
	if m := reYYMMDD.FindStringSubmatch(text); m != nil {
		yy, _ := strconv.Atoi(m[1])
		year := 2000 + yy
		if yy > 30 {
			year = 1900 + yy
		}
		if iso := validISO(strconv.Itoa(year), m[2], m[3]); iso != "" {
			return iso
		}
	}
	if m := reDMonY.FindStringSubmatch(text); m != nil {
		if iso := validISO(m[3], months[strings.ToUpper(m[2])], m[1]); iso != "" {
			return iso
		}
	}
	if m := reDMonYY.FindStringSubmatch(text); m != nil {
		yy, _ := strconv.Atoi(m[3])
		year := 1900 + yy
		if yy <= 40 {
			year = 2000 + yy
		}
		if iso := validISO(strconv.Itoa(year), months[strings.ToUpper(m[2])], m[1]); iso != "" {
			return iso
		}
	}
	if m := reMonDY.FindStringSubmatch(text); m != nil {
		if iso := validISO(m[3], months[strings.ToUpper(m[1])], m[2]); iso != "" {
			return iso
		}
	}
	return ""
}

// validISO assembles and round-trips a date to reject impossible values
// like 31/02.
func validISO(y, m, d string) string {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// parseISO parses a YYYY-MM-DD produced by this package. Zero time on failure.
func parseISO(iso string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", iso, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseAmount pulls the first monetary amount out of text. Thousands may be
// separated by comma, dot or space; an optional two-digit decimal part is
// kept. FCFA and CFA normalize to XOF, which is also the default currency.
func parseAmount(text string) (amount float64, currency string, ok bool) {
	m := reAmountCur.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	return parseAmountValue(m[1]), normalizeCurrency(m[2]), true
}

func parseAmountValue(raw string) float64 {
	s := strings.ReplaceAll(raw, " ", "")
	// a trailing separator with exactly two digits is a decimal part
	dec := ""
	if n := len(s); n > 3 && (s[n-3] == ',' || s[n-3] == '.') {
		dec = s[n-2:]
		s = s[:n-3]
	}
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	v, _ := strconv.ParseFloat(s, 64)
	if dec != "" {
		d, _ := strconv.ParseFloat(dec, 64)
		v += d / 100
	}
	return v
}

func normalizeCurrency(cur string) string {
	cur = strings.ToUpper(strings.TrimSpace(cur))
	switch cur {
	case "", "FCFA", "CFA":
		return "XOF"
	}
	return cur
}

// normalizeName folds a raw OCR name the way names are compared downstream.
func normalizeName(name string) string {
	return textnorm.NormalizeName(name)
}

// firstMatch tries patterns in order and returns the first capture group.
func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
