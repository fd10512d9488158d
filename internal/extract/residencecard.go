package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// Residence card field names. Holder, birth, issue, expiry and nationality
// fields are shared with the passport extractor.
const (
	FieldCardNumber    = "card_number"
	FieldResidenceType = "residence_type"
	FieldEmployer      = "employer"
	FieldAddress       = "address"
)

// Residence card derived check names.
const (
	CheckCardNotExpired     = "card_not_expired"
	CheckCountryJurisdicted = "issuing_country_in_jurisdiction"
	CheckCardNumberFormat   = "card_number_format_valid"
)

var (
	reCardNumber = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CARD|PERMIT|CARTE)\s*(?:NO|N[°o]?|NUMBER)?[.:\s]+([A-Z]{0,2}[/-]?\d{6,10})`),
		regexp.MustCompile(`\b(RP[/-]?\d{6,})\b`),
		regexp.MustCompile(`\b([A-Z]{2}\d{6,10})\b`),
	}
	reCardHolder = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:HOLDER|TITULAIRE|NAME|NOM)[:\s]+([A-Z][A-Za-z \-']+)`),
	}
	reCardExpiry = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:EXPIR[YE]S?|VALID\s*UNTIL|VALABLE\s*JUSQU.?AU|DATE\s*D.?EXPIRATION)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	}
	reCardIssue = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ISSUED?\s*(?:ON)?|DELIVREE?\s*LE|DATE\s*OF\s*ISSUE)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	}
	reCardBirth = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:DATE\s*OF\s*BIRTH|DOB|NEE?\s*LE|NAISSANCE)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	}
	reCardNationality = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:NATIONALITY|NATIONALITE)[:\s]+([A-Za-z \-']+)`),
	}
	reCardEmployer = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:EMPLOYER|EMPLOYEUR|COMPANY|SOCIETE)[:\s]+([^\n]+)`),
	}
	reCardAddress = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ADDRESS|ADRESSE|RESIDENCE)[:\s]+([^\n]+)`),
	}
)

// residenceTypes keys each permit category by the wording printed on the card.
var residenceTypes = map[string][]string{
	"WORK":       {"WORK PERMIT", "TRAVAIL", "EMPLOYMENT", "SALARIE"},
	"STUDY":      {"STUDENT", "ETUDIANT", "STUDY", "ETUDES"},
	"FAMILY":     {"FAMILY", "FAMILLE", "REGROUPEMENT FAMILIAL", "SPOUSE", "CONJOINT"},
	"REFUGEE":    {"REFUGEE", "REFUGIE", "ASYLUM", "ASILE"},
	"PERMANENT":  {"PERMANENT", "LONG TERM", "LONGUE DUREE", "RESIDENT PERMANENT"},
	"DIPLOMATIC": {"DIPLOMATIC", "DIPLOMATIQUE", "CONSULAR", "CONSULAIRE"},
}

// residenceCountries maps jurisdiction countries to wording found on their
// residence cards.
var residenceCountries = map[string][]string{
	"ETHIOPIA": {"ETHIOPIA", "ETHIOPIE", "FEDERAL DEMOCRATIC REPUBLIC"},
	"DJIBOUTI": {"DJIBOUTI", "REPUBLIQUE DE DJIBOUTI"},
	"SOMALIA":  {"SOMALIA", "SOMALIE"},
	"ERITREA":  {"ERITREA", "ERYTHREE"},
	"SUDAN":    {"SUDAN", "SOUDAN"},
}

// ResidenceCardExtractor parses residence permits that tie an applicant of a
// third nationality to a country of the consular jurisdiction.
type ResidenceCardExtractor struct {
	now func() time.Time
}

func NewResidenceCardExtractor(opts Options) *ResidenceCardExtractor {
	opts = opts.withDefaults()
	return &ResidenceCardExtractor{now: opts.Now}
}

func (e *ResidenceCardExtractor) DocumentType() constants.DocumentType {
	return constants.ResidenceCard
}

func (e *ResidenceCardExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.ResidenceCard,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)

	if name := normalizeName(firstMatch(text, reCardHolder)); name != "" {
		doc.SetField(FieldHolderName, name, damp(confLabeled, quality))
	}
	if num := normalizeCardNumber(firstMatch(text, reCardNumber)); num != "" {
		doc.SetField(FieldCardNumber, num, damp(confPattern, quality))
	}
	if d := parseDate(firstMatch(text, reCardExpiry)); d != "" {
		doc.SetField(FieldExpiryDate, d, damp(confLabeled, quality))
	}
	if d := parseDate(firstMatch(text, reCardIssue)); d != "" {
		doc.SetField(FieldIssueDate, d, damp(confLabeled, quality))
	}
	if d := parseDate(firstMatch(text, reCardBirth)); d != "" {
		doc.SetField(FieldBirthDate, d, damp(confLabeled, quality))
	}
	if nat := strings.ToUpper(strings.TrimSpace(firstMatch(text, reCardNationality))); nat != "" {
		doc.SetField(FieldNationality, nat, damp(confLabeled, quality))
	}
	if country := matchKeywordTable(text, residenceCountries); country != "" {
		doc.SetField(FieldIssuingCountry, country, damp(confDerived, quality))
	}
	if rt := matchKeywordTable(text, residenceTypes); rt != "" {
		doc.SetField(FieldResidenceType, rt, damp(confDerived, quality))
	}
	if emp := strings.TrimSpace(firstMatch(text, reCardEmployer)); emp != "" {
		doc.SetField(FieldEmployer, emp, damp(confLabeled, quality))
	}
	if addr := strings.TrimSpace(firstMatch(text, reCardAddress)); addr != "" {
		doc.SetField(FieldAddress, addr, damp(confLabeled, quality))
	}

	e.validate(doc)

	doc.Success = doc.Field(FieldHolderName) != "" &&
		doc.Field(FieldCardNumber) != "" &&
		doc.Field(FieldExpiryDate) != ""
	return doc, nil
}

func (e *ResidenceCardExtractor) validate(doc *entity.Document) {
	if d := parseISO(doc.Field(FieldExpiryDate)); !d.IsZero() {
		doc.SetCheck(CheckCardNotExpired, d.After(e.now()))
	}
	if country := doc.Field(FieldIssuingCountry); country != "" {
		_, ok := residenceCountries[country]
		doc.SetCheck(CheckCountryJurisdicted, ok)
	}
	if num := doc.Field(FieldCardNumber); num != "" {
		doc.SetCheck(CheckCardNumberFormat, len(num) >= 6)
	}
}

// normalizeCardNumber strips separators so RP/123456 and RP-123456 compare
// equal.
func normalizeCardNumber(num string) string {
	num = strings.ToUpper(strings.TrimSpace(num))
	num = strings.ReplaceAll(num, "/", "")
	return strings.ReplaceAll(num, "-", "")
}

// matchKeywordTable returns the first table key whose keywords appear in the
// text, scanning keys in sorted order so extraction is deterministic.
func matchKeywordTable(text string, table map[string][]string) string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	upper := strings.ToUpper(text)
	for _, key := range keys {
		for _, kw := range table[key] {
			if strings.Contains(upper, kw) {
				return key
			}
		}
	}
	return ""
}
