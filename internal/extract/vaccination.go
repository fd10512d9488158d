package extract

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// Vaccination card field names.
const (
	FieldHolderName        = "holder_name"
	FieldYellowFeverDate   = "yellow_fever_date"
	FieldYellowFeverFrom   = "yellow_fever_valid_from"
	FieldCertificateNumber = "certificate_number"
	FieldDaysUntilValid    = "days_until_valid"
	FieldVaccinationCenter = "vaccination_center"
	FieldBatchNumber       = "batch_number"
)

// Vaccination card derived check names.
const (
	CheckYellowFeverPresent     = "yellow_fever_present"
	CheckVaccinationDatePast    = "vaccination_date_past"
	CheckYellowFeverValid       = "yellow_fever_valid"
	CheckCertificateFormatValid = "certificate_format_valid"
)

// yellowFeverMentions covers official names, brands and frequent OCR
// misreads of the yellow fever vaccine. Generic certificate titles such as
// "INTERNATIONAL CERTIFICATE" are deliberately absent: the title line sits
// next to the holder's birth date, which must never be read as the
// vaccination date.
var yellowFeverMentions = []string{
	"YELLOW FEVER", "FIEVRE JAUNE", "AMARIL", "ANTI-AMARIL", "ANTI AMARIL",
	"STAMARIL", "YF-VAX", "17D-204", "17D",
	"YELLOW FAVER", "YELOW FEVER", "YELL0W FEVER", "YELLOW F3VER",
	"FIEVRE JUNE", "FIEVRE JAUN", "FI3VRE JAUNE",
}

// birthLabels mark lines whose dates are dates of birth, not vaccinations.
var birthLabels = []string{"BIRTH", "DOB", "NAISSANCE", "NE(E)", "BORN"}

var (
	reHolderName = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:NAME|NOM)\s*(?:/\s*(?:NOM|NAME))?\s*:\s*([A-Z][A-Z\-' ]+?)(?:\s+(?:DATE|DOB|BIRTH|SEX|GENDER|NATIONALITY|COVID|YELLOW|\d))`),
		regexp.MustCompile(`(?i)(?:HOLDER|TITULAIRE)[:\s]*([A-Z][A-Z\-' ]+?)(?:\s+(?:DATE|DOB|BIRTH|SEX|\d)|$)`),
	}
	reCertificate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CERTIFICATE|CERTIFICAT)\s*(?:NO|NUMBER|N[°o]?)?[:\s#]+([A-Z/-]*\d[A-Z0-9/-]{2,})`),
	}
	reBatch = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:BATCH|LOT)\s*(?:NO|NUMBER|N[°o]?)?[:\s#]+([A-Z0-9-]{3,})`),
	}
	reCenter = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CENTER|CENTRE|CLINIC|CLINIQUE)[:\s]+([A-Za-z][A-Za-z \-'.]+)`),
	}
)

// VaccinationExtractor reads international vaccination certificates, caring
// chiefly about the yellow fever shot Côte d'Ivoire requires on entry.
type VaccinationExtractor struct {
	now      func() time.Time
	leadDays int
}

func NewVaccinationExtractor(opts Options) *VaccinationExtractor {
	opts = opts.withDefaults()
	return &VaccinationExtractor{now: opts.Now, leadDays: opts.VaccinationLeadDays}
}

func (e *VaccinationExtractor) DocumentType() constants.DocumentType {
	return constants.Vaccination
}

func (e *VaccinationExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.Vaccination,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)
	flat := strings.Join(strings.Split(text, "\n"), " ")

	if name := normalizeName(firstMatch(flat, reHolderName)); name != "" {
		doc.SetField(FieldHolderName, name, damp(confLabeled, quality))
	}
	if cert := strings.ToUpper(firstMatch(text, reCertificate)); cert != "" {
		doc.SetField(FieldCertificateNumber, cert, damp(confLabeled, quality))
	}
	if batch := strings.ToUpper(firstMatch(text, reBatch)); batch != "" {
		doc.SetField(FieldBatchNumber, batch, damp(confLabeled, quality))
	}
	if center := strings.TrimSpace(firstMatch(text, reCenter)); center != "" {
		doc.SetField(FieldVaccinationCenter, center, damp(confLabeled, quality))
	}

	if date := e.yellowFeverDate(text); date != "" {
		doc.SetField(FieldYellowFeverDate, date, damp(confLabeled, quality))
		if from := parseISO(date); !from.IsZero() {
			validFrom := from.AddDate(0, 0, e.leadDays)
			doc.SetField(FieldYellowFeverFrom, validFrom.Format("2006-01-02"), damp(confDerived, quality))
		}
	}

	e.validate(doc)

	doc.Success = doc.Field(FieldHolderName) != "" && doc.Field(FieldYellowFeverDate) != ""
	return doc, nil
}

// yellowFeverDate finds the vaccination date on the line mentioning the
// vaccine, or on one of the two lines after it.
func (e *VaccinationExtractor) yellowFeverDate(text string) string {
	lines := strings.Split(strings.ToUpper(text), "\n")
	for i, line := range lines {
		if !mentionsYellowFever(line) {
			continue
		}
		for j := i; j < len(lines) && j <= i+2; j++ {
			if mentionsBirth(lines[j]) {
				continue
			}
			if iso := parseDate(lines[j]); iso != "" {
				return iso
			}
		}
	}
	return ""
}

func mentionsYellowFever(line string) bool {
	for _, m := range yellowFeverMentions {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func mentionsBirth(line string) bool {
	for _, m := range birthLabels {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func (e *VaccinationExtractor) validate(doc *entity.Document) {
	now := e.now()
	date := parseISO(doc.Field(FieldYellowFeverDate))

	doc.SetCheck(CheckYellowFeverPresent, !date.IsZero())
	if !date.IsZero() {
		doc.SetCheck(CheckVaccinationDatePast, date.Before(now))
		// the shot confers protection only after the efficacy window, then
		// for life
		validFrom := date.AddDate(0, 0, e.leadDays)
		doc.SetCheck(CheckYellowFeverValid, validFrom.Before(now))
		if validFrom.After(now) {
			days := int(math.Ceil(validFrom.Sub(now).Hours() / 24))
			doc.SetField(FieldDaysUntilValid, strconv.Itoa(days), confDerived)
		}
	} else {
		doc.SetCheck(CheckYellowFeverValid, false)
	}

	if cert := doc.Field(FieldCertificateNumber); cert != "" {
		doc.SetCheck(CheckCertificateFormatValid, len(cert) >= 6)
	}
}
