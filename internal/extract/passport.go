package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/mrz"
	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

// Passport field names.
const (
	FieldPassportNumber = "passport_number"
	FieldSurname        = "surname"
	FieldGivenNames     = "given_names"
	FieldNationality    = "nationality"
	FieldBirthDate      = "date_of_birth"
	FieldSex            = "sex"
	FieldExpiryDate     = "expiry_date"
	FieldIssueDate      = "issue_date"
	FieldIssuingCountry = "issuing_country"
	FieldPersonalNumber = "personal_number"
	FieldPassportType   = "passport_type"
)

// Passport derived check names.
const (
	CheckMRZPresent           = "mrz_present"
	CheckMRZValid             = "mrz_valid"
	CheckExpiryValid          = "expiry_valid"
	CheckExpirySixMonths      = "expiry_6months"
	CheckInJurisdiction       = "in_jurisdiction"
	CheckPassportNumberFormat = "passport_number_format"
)

var rePassportNumberFormat = regexp.MustCompile(`^[A-Z]{1,2}\d{6,9}$`)

var (
	vizSurname = []*regexp.Regexp{
		regexp.MustCompile(`(?i:SURNAME|NOM DE FAMILLE|FAMILY\s*NAME|NOM)[:. ]*([A-Za-z\-' ]+)`),
	}
	vizGivenNames = []*regexp.Regexp{
		regexp.MustCompile(`(?i:GIVEN\s*NAMES?|PRENOMS?|FIRST\s*NAME)[:. ]*([A-Za-z\-' ]+)`),
	}
	vizNationality = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:NATIONALITY|NATIONALITE)[:.\s]*([A-Z]+)`),
	}
	vizBirthDate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*BIRTH|DATE\s*DE\s*NAISSANCE|DOB|BIRTH\s*DATE)[:.\s]*(\d{1,2}\s+[A-Z]{3,9}\s+\d{2,4})`),
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*BIRTH|DATE\s*DE\s*NAISSANCE|DOB|BIRTH\s*DATE)[:.\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	}
	vizExpiry = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*EXPIRY|EXPIRY\s*DATE|EXPIRES?|VALID\s*UNTIL|EXPIRATION)[:.\s]*(\d{1,2}\s+[A-Z]{3,9}\s+\d{2,4})`),
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*EXPIRY|EXPIRY\s*DATE|EXPIRES?|VALID\s*UNTIL|EXPIRATION)[:.\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	}
	vizIssueDate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*ISSUE|DATE\s*(?:DE\s*)?DELIVRANCE|ISSUE\s*DATE)[:.\s]*(\d{1,2}\s+[A-Z]{3,9}\s+\d{2,4})`),
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*ISSUE|DATE\s*(?:DE\s*)?DELIVRANCE|ISSUE\s*DATE)[:.\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	}
	vizPassportNo = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:PASSPORT|PASSEPORT)\s*(?:NO|NUMBER|N[°o]?)[:.\s]+([A-Z]{1,2}\d{6,9})`),
		regexp.MustCompile(`\b([A-Z]{2}\d{7})\b`),
		regexp.MustCompile(`\b([A-Z]{1,2}\d{6,9})\b`),
	}
	vizSex = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:SEX|SEXE)[:.\s]*(M|F)\b`),
	}
)

// PassportExtractor reads the machine-readable zone first and falls back to
// the visual inspection zone, cross-confirming the two when both exist.
type PassportExtractor struct {
	now func() time.Time
}

func NewPassportExtractor(opts Options) *PassportExtractor {
	opts = opts.withDefaults()
	return &PassportExtractor{now: opts.Now}
}

func (e *PassportExtractor) DocumentType() constants.DocumentType { return constants.Passport }

func (e *PassportExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.Passport,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	now := e.now()
	text := cleanText(rawText)

	var td *mrz.TD3
	if l1, l2, ok := mrz.ExtractLines(rawText); ok {
		td = mrz.ParseTD3(l1, l2, now)
		e.applyMRZ(doc, td)
	}

	viz := e.extractVIZ(text)
	e.merge(doc, td, viz)

	e.detectType(doc, td, text)
	e.validate(doc, td, now)

	doc.Success = doc.Field(FieldPassportNumber) != "" &&
		doc.Field(FieldSurname) != "" &&
		doc.Field(FieldExpiryDate) != ""
	return doc, nil
}

// applyMRZ writes MRZ-sourced fields; per-field confidence follows its own
// check digit. The MRZ carries its own integrity checks, so overall text
// quality never damps these confidences.
func (e *PassportExtractor) applyMRZ(doc *entity.Document, td *mrz.TD3) {
	conf := func(valid bool) float32 {
		if valid {
			return confMRZChecked
		}
		return confMRZUnchecked
	}
	doc.SetField(FieldPassportNumber, td.PassportNumber, conf(td.PassportNumberValid))
	doc.SetField(FieldSurname, td.Surname, conf(td.CompositeValid))
	doc.SetField(FieldGivenNames, td.GivenNames, conf(td.CompositeValid))
	doc.SetField(FieldNationality, td.Nationality, conf(td.CompositeValid))
	doc.SetField(FieldBirthDate, td.BirthDate, conf(td.BirthDateValid))
	doc.SetField(FieldSex, td.Sex, conf(td.CompositeValid))
	doc.SetField(FieldExpiryDate, td.ExpiryDate, conf(td.ExpiryDateValid))
	doc.SetField(FieldIssuingCountry, td.IssuingCountry, conf(td.CompositeValid))
	doc.SetField(FieldPersonalNumber, td.PersonalNumber, conf(td.PersonalNumberValid))
}

type vizFields struct {
	surname, givenNames, nationality string
	birthDate, expiryDate, issueDate string
	passportNumber, sex              string
}

func (e *PassportExtractor) extractVIZ(text string) vizFields {
	return vizFields{
		surname:        normalizeName(firstMatch(text, vizSurname)),
		givenNames:     normalizeName(firstMatch(text, vizGivenNames)),
		nationality:    strings.ToUpper(firstMatch(text, vizNationality)),
		birthDate:      parseDate(firstMatch(text, vizBirthDate)),
		expiryDate:     parseDate(firstMatch(text, vizExpiry)),
		issueDate:      parseDate(firstMatch(text, vizIssueDate)),
		passportNumber: strings.ToUpper(firstMatch(text, vizPassportNo)),
		sex:            strings.ToUpper(firstMatch(text, vizSex)),
	}
}

// merge fills gaps from the VIZ and boosts confidence where both zones
// agree. MRZ values win conflicts: the printed zone is the OCR-fragile one.
func (e *PassportExtractor) merge(doc *entity.Document, td *mrz.TD3, viz vizFields) {
	fill := func(name, value string, conf float32) {
		if value == "" {
			return
		}
		if doc.Field(name) == "" {
			doc.SetField(name, value, conf)
			return
		}
		// both zones present: confirm or warn
		if textnorm.NormalizeForComparison(doc.Field(name)) == textnorm.NormalizeForComparison(value) {
			doc.SetField(name, doc.Field(name), doc.FieldConfidence(name)+crossConfirmBoost)
		}
	}
	fill(FieldPassportNumber, viz.passportNumber, confLabeled)
	fill(FieldSurname, viz.surname, confLabeled)
	fill(FieldGivenNames, viz.givenNames, confLabeled)
	fill(FieldNationality, viz.nationality, confLabeled)
	fill(FieldBirthDate, viz.birthDate, confLabeled)
	fill(FieldExpiryDate, viz.expiryDate, confLabeled)
	fill(FieldSex, viz.sex, confLabeled)
	if viz.issueDate != "" {
		doc.SetField(FieldIssueDate, viz.issueDate, confLabeled)
	}

	if td != nil && viz.surname != "" && td.Surname != "" {
		if !textnorm.NamesMatch(td.Surname, viz.surname, 0.7) {
			doc.Warnings = append(doc.Warnings, "surname differs between MRZ and visual zone")
		}
	}
}

// detectType classifies the passport from the MRZ document code, falling
// back to cover-page keywords.
func (e *PassportExtractor) detectType(doc *entity.Document, td *mrz.TD3, text string) {
	ptype := constants.PassportOrdinaire
	conf := float32(0.5)

	if td != nil {
		switch td.DocumentCode {
		case "PD", "D":
			ptype, conf = constants.PassportDiplomatique, 0.95
		case "PS", "S":
			ptype, conf = constants.PassportService, 0.95
		case "LP", "V":
			ptype, conf = constants.PassportLaissezPasser, 0.9
		case "P":
			ptype, conf = constants.PassportOrdinaire, 0.9
		}
	}

	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "DIPLOMATIC") || strings.Contains(upper, "DIPLOMATIQUE"):
		if ptype == constants.PassportOrdinaire {
			ptype, conf = constants.PassportDiplomatique, 0.8
		}
	case strings.Contains(upper, "SERVICE PASSPORT") || strings.Contains(upper, "PASSEPORT DE SERVICE"):
		if ptype == constants.PassportOrdinaire {
			ptype, conf = constants.PassportService, 0.8
		}
	case strings.Contains(upper, "LAISSEZ-PASSER") || strings.Contains(upper, "LAISSEZ PASSER"):
		if ptype == constants.PassportOrdinaire {
			ptype, conf = constants.PassportLaissezPasser, 0.8
		}
	}

	doc.SetField(FieldPassportType, string(ptype), conf)
}

func (e *PassportExtractor) validate(doc *entity.Document, td *mrz.TD3, now time.Time) {
	doc.SetCheck(CheckMRZPresent, td != nil)
	doc.SetCheck(CheckMRZValid, td != nil && td.AllChecksValid())

	expiry := parseISO(doc.Field(FieldExpiryDate))
	doc.SetCheck(CheckExpiryValid, !expiry.IsZero() && expiry.After(now))
	doc.SetCheck(CheckExpirySixMonths, !expiry.IsZero() && expiry.After(now.AddDate(0, 6, 0)))

	doc.SetCheck(CheckInJurisdiction, inJurisdiction(doc.Field(FieldNationality)))

	number := doc.Field(FieldPassportNumber)
	doc.SetCheck(CheckPassportNumberFormat, rePassportNumberFormat.MatchString(number))
}

// inJurisdiction accepts both alpha-3 codes and spelled-out country names.
func inJurisdiction(country string) bool {
	n := textnorm.NormalizeName(country)
	if n == "" {
		return false
	}
	if _, ok := constants.JurisdictionCountries[n]; ok {
		return true
	}
	names := []string{
		"ETHIOPIA", "ETHIOPIE", "ETHIOPIAN",
		"DJIBOUTI", "DJIBOUTIAN",
		"ERITREA", "ERYTHREE", "ERITREAN",
		"KENYA", "KENYAN",
		"UGANDA", "OUGANDA", "UGANDAN",
		"SOMALIA", "SOMALIE", "SOMALI",
		"SOUTH SUDAN", "SOUDAN DU SUD", "SOUTH SUDANESE",
	}
	for _, c := range names {
		if strings.Contains(n, c) {
			return true
		}
	}
	return false
}
