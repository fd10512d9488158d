// Package mrz parses ICAO 9303 machine-readable zones from passport OCR
// text, validating the embedded check digits.
package mrz

import (
	"regexp"
	"strings"
	"time"
)

// TD3LineLen is the line length of a passport-book MRZ.
const TD3LineLen = 44

// TD3 holds the decoded fields of a two-line passport MRZ. The *Valid flags
// report whether the corresponding check digit matched.
type TD3 struct {
	DocumentCode   string
	IssuingCountry string
	Surname        string
	GivenNames     string

	PassportNumber      string
	PassportNumberValid bool
	Nationality         string
	BirthDate           string // ISO YYYY-MM-DD, "" when undecodable
	BirthDateValid      bool
	Sex                 string
	ExpiryDate          string // ISO YYYY-MM-DD, "" when undecodable
	ExpiryDateValid     bool
	PersonalNumber      string
	PersonalNumberValid bool
	CompositeValid      bool
}

// AllChecksValid reports whether every mandatory check digit matched.
// The personal-number check is excluded when the field is empty, since many
// issuers leave it as filler.
func (t *TD3) AllChecksValid() bool {
	ok := t.PassportNumberValid && t.BirthDateValid && t.ExpiryDateValid && t.CompositeValid
	if t.PersonalNumber != "" {
		ok = ok && t.PersonalNumberValid
	}
	return ok
}

// CheckDigit computes the ICAO 9303 check digit over data: repeating weights
// 7,3,1; digits keep their value, A-Z map to 10-35, filler '<' is 0.
// Characters outside the MRZ alphabet count as 0.
func CheckDigit(data string) int {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		case c >= 'a' && c <= 'z':
			v = int(c-'a') + 10
		}
		sum += v * weights[i%3]
	}
	return sum % 10
}

// checkDigitMatches compares a computed check digit against its MRZ
// character. Some issuers use '<' for a zero check digit.
func checkDigitMatches(data string, digit byte) bool {
	if digit == '<' {
		return CheckDigit(data) == 0
	}
	if digit < '0' || digit > '9' {
		return false
	}
	return CheckDigit(data) == int(digit-'0')
}

// NormalizeLine uppercases, strips characters outside the MRZ alphabet, and
// pads or truncates to the expected length with filler.
func NormalizeLine(line string, expectedLen int) string {
	line = strings.ToUpper(line)
	var b strings.Builder
	b.Grow(expectedLen)
	for _, r := range line {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '<' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > expectedLen {
		return s[:expectedLen]
	}
	return s + strings.Repeat("<", expectedLen-len(s))
}

var (
	reMRZCandidate = regexp.MustCompile(`[A-Z0-9<]{42,46}`)
	reTD3Line1     = regexp.MustCompile(`P[A-Z<][A-Z]{3}[A-Z<]{38,42}`)
	reTD3Line2     = regexp.MustCompile(`[A-Z0-9]{9}[0-9<][A-Z]{3}[0-9]{6}[0-9<][MFX<][0-9]{6}[0-9<][A-Z0-9<]{14,16}[0-9<]`)
	reLine1Start   = regexp.MustCompile(`^P[A-Z<]`)
)

// ocrToFiller rewrites characters OCR commonly substitutes for MRZ filler.
var ocrToFiller = strings.NewReplacer("|", "<", "/", "<", `\`, "<", "[", "<", "]", "<", "{", "<", "}", "<")

// ExtractLines locates the two TD3 lines inside free OCR text. It first
// looks for consecutive 42-46 char runs of MRZ alphabet, then falls back to
// structure-specific patterns for each line.
func ExtractLines(text string) (line1, line2 string, ok bool) {
	clean := strings.ToUpper(text)
	clean = ocrToFiller.Replace(clean)

	// OCR keeps MRZ lines on their own text lines; spaces inside a line are
	// recognition noise.
	var candidates []string
	for _, raw := range strings.Split(clean, "\n") {
		joined := strings.Join(strings.Fields(raw), "")
		if m := reMRZCandidate.FindString(joined); len(m) == len(joined) && m != "" {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) >= 2 {
		l1 := NormalizeLine(candidates[0], TD3LineLen)
		l2 := NormalizeLine(candidates[1], TD3LineLen)
		if reLine1Start.MatchString(l1) {
			return l1, l2, true
		}
	}

	flat := strings.Join(strings.Fields(clean), "")
	m1 := reTD3Line1.FindString(flat)
	m2 := reTD3Line2.FindString(flat)
	if m1 != "" && m2 != "" {
		return NormalizeLine(m1, TD3LineLen), NormalizeLine(m2, TD3LineLen), true
	}
	return "", "", false
}

// ParseTD3 decodes a normalized TD3 MRZ using now to resolve two-digit
// years.
func ParseTD3(line1, line2 string, now time.Time) *TD3 {
	line1 = NormalizeLine(line1, TD3LineLen)
	line2 = NormalizeLine(line2, TD3LineLen)

	t := &TD3{
		DocumentCode:   strings.TrimRight(line1[0:2], "<"),
		IssuingCountry: strings.TrimRight(line1[2:5], "<"),
	}
	surname, given, _ := strings.Cut(line1[5:], "<<")
	t.Surname = strings.TrimSpace(strings.ReplaceAll(surname, "<", " "))
	t.GivenNames = strings.TrimSpace(strings.ReplaceAll(given, "<", " "))

	number := line2[0:9]
	t.PassportNumber = strings.TrimRight(number, "<")
	t.PassportNumberValid = checkDigitMatches(number, line2[9])

	t.Nationality = strings.TrimRight(line2[10:13], "<")

	t.BirthDate = DateToISO(line2[13:19], false, now)
	t.BirthDateValid = checkDigitMatches(line2[13:19], line2[19])

	t.Sex = strings.Trim(line2[20:21], "<")

	t.ExpiryDate = DateToISO(line2[21:27], true, now)
	t.ExpiryDateValid = checkDigitMatches(line2[21:27], line2[27])

	personal := line2[28:42]
	t.PersonalNumber = strings.TrimRight(personal, "<")
	t.PersonalNumberValid = checkDigitMatches(personal, line2[42])

	// Composite digit spans passport number, birth and expiry groups, and
	// the personal number, each with its own check digit.
	composite := line2[0:10] + line2[13:20] + line2[21:43]
	t.CompositeValid = checkDigitMatches(composite, line2[43])

	return t
}

// DateToISO converts an MRZ YYMMDD date into ISO form. Birth dates are
// always in the past, so a two-digit year beyond the current one belongs to
// the previous century. Expiry dates sit in 20xx unless that lands more than
// fifteen years ahead of now.
func DateToISO(yymmdd string, isExpiry bool, now time.Time) string {
	if len(yymmdd) != 6 {
		return ""
	}
	for i := 0; i < 6; i++ {
		if yymmdd[i] < '0' || yymmdd[i] > '9' {
			return ""
		}
	}
	yy := int(yymmdd[0]-'0')*10 + int(yymmdd[1]-'0')
	month := int(yymmdd[2]-'0')*10 + int(yymmdd[3]-'0')
	day := int(yymmdd[4]-'0')*10 + int(yymmdd[5]-'0')
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}

	var year int
	if isExpiry {
		year = 2000 + yy
		if year > now.Year()+15 {
			year = 1900 + yy
		}
	} else {
		if yy > now.Year()%100 {
			year = 1900 + yy
		} else {
			year = 2000 + yy
		}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
