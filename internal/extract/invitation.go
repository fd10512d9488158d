package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

// Invitation letter field names.
const (
	FieldInviterName        = "inviter_name"
	FieldInviterAddress     = "inviter_address"
	FieldInviterCity        = "inviter_city"
	FieldInviterPhone       = "inviter_phone"
	FieldInviterEmail       = "inviter_email"
	FieldInviterID          = "inviter_id_number"
	FieldInviteeName        = "invitee_name"
	FieldInviteePassport    = "invitee_passport_number"
	FieldInviteeNationality = "invitee_nationality"
	FieldVisitPurpose       = "purpose"
	FieldVisitArrival       = "arrival_date"
	FieldVisitDeparture     = "departure_date"
	FieldNotarized          = "notarized"
)

// Invitation letter derived check names.
const (
	CheckInviterInCoteDivoire = "inviter_in_cote_divoire"
	CheckDatesSpecified       = "dates_specified"
	CheckPurposeClear         = "purpose_clear"
	CheckLegalizationValid    = "legalization_valid"
	CheckVisitDatesOrdered    = "visit_dates_ordered"
)

// visitPurposes maps purpose categories to the keywords announcing them.
var visitPurposes = map[string][]string{
	"FAMILY":   {"FAMILY VISIT", "VISITE FAMILIALE", "MY BROTHER", "MY SISTER", "MY FATHER", "MY MOTHER", "MON FRERE", "MA SOEUR"},
	"TOURISM":  {"TOURISM", "TOURISME", "HOLIDAY", "VACANCES", "VACATION"},
	"BUSINESS": {"BUSINESS", "AFFAIRES", "MEETING", "CONFERENCE", "REUNION"},
	"EVENT":    {"WEDDING", "MARIAGE", "FUNERAL", "FUNERAILLES", "CEREMONY", "CEREMONIE"},
}

var (
	reInviterName = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:I|JE),?\s+([A-Z][A-Za-z \-']+?),?\s+(?:RESIDING|RESIDANT|HEREBY|PAR LA PRESENTE)`),
		regexp.MustCompile(`(?i)(?:UNDERSIGNED|SOUSSIGNE)E?[:,\s]+([A-Z][A-Za-z \-']+)`),
		regexp.MustCompile(`(?i)(?:INVITER|INVITANT|HOST|HOTE)[:\s]+([A-Z][A-Za-z \-']+)`),
	}
	reInviterAddress = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:RESIDING\s*AT|RESIDANT\s*A|ADDRESS|ADRESSE)[:\s]+([^\n]+)`),
		regexp.MustCompile(`(?i)(?:LIVING\s*AT|HABITANT\s*A)[:\s]+([^\n]+)`),
	}
	reInviterPhone = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:TEL|PHONE|TELEPHONE)[:\s]*(\+?\d[\d \-]{8,})`),
	}
	reEmail = []*regexp.Regexp{
		regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
	}
	reInviterID = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CNI|CARTE\s*(?:D')?IDENTITE|IDENTITY\s*CARD|ID)\s*(?:NO|N[°o]?)?[:\s#]+([A-Z0-9-]{4,})`),
	}
	// kinship form first: "invite my brother, X" must yield X, not "my
	// brother"
	reInviteeName = []*regexp.Regexp{
		regexp.MustCompile(`(?i)MY\s+(?:FRIEND|RELATIVE|BROTHER|SISTER|FATHER|MOTHER)[,:\s]+([A-Z][A-Za-z \-']+)`),
		regexp.MustCompile(`(?i)(?:TO\s*INVITE|INVITING|INVITE)[:\s]*(?:MR|MRS|MS)?[.:\s]*([A-Z][A-Za-z \-']+)`),
		regexp.MustCompile(`(?i)(?:GUEST|VISITEUR|VISITOR)[:\s]+([A-Z][A-Za-z \-']+)`),
	}
	reInviteePassport = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:PASSPORT|PASSEPORT)\s*(?:(?:NO|N[°o]|NUMBER)[:\s]*)?([A-Z]{1,2}\d{6,9})`),
	}
	reInviteeNationality = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:NATIONALITY|NATIONALITE)[:\s]+([A-Z][A-Za-z]+)`),
		regexp.MustCompile(`(?i)(?:CITIZEN\s*OF|RESSORTISSANT\s*(?:DE|DU))[:\s]+([A-Z][A-Za-z]+)`),
	}
	reVisitPeriod = regexp.MustCompile(`(?i)(?:FROM|DU)\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})\s*(?:TO|AU|UNTIL|JUSQU'?AU?)\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)
	reArrival     = regexp.MustCompile(`(?i)(?:ARRIVAL|ARRIVEE)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)
	reNotarized   = regexp.MustCompile(`(?i)NOTARI[SZ]ED|NOTAIRE|LEGALIS(?:E|ÉE?|ATION)|CERTIFIED\s+TRUE`)
)

// InvitationExtractor parses private host invitation letters.
type InvitationExtractor struct {
	now func() time.Time
}

func NewInvitationExtractor(opts Options) *InvitationExtractor {
	opts = opts.withDefaults()
	return &InvitationExtractor{now: opts.Now}
}

func (e *InvitationExtractor) DocumentType() constants.DocumentType { return constants.Invitation }

func (e *InvitationExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.Invitation,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)

	if v := normalizeName(firstMatch(text, reInviterName)); v != "" {
		doc.SetField(FieldInviterName, v, damp(confLabeled, quality))
	}
	if v := strings.TrimSpace(firstMatch(text, reInviterAddress)); v != "" {
		doc.SetField(FieldInviterAddress, v, damp(confLabeled, quality))
	}
	if city := e.findCity(text); city != "" {
		doc.SetField(FieldInviterCity, city, damp(confPattern, quality))
	}
	if v := firstMatch(text, reInviterPhone); v != "" {
		doc.SetField(FieldInviterPhone, strings.ReplaceAll(strings.ReplaceAll(v, " ", ""), "-", ""), damp(confLabeled, quality))
	}
	if v := firstMatch(text, reEmail); v != "" {
		doc.SetField(FieldInviterEmail, strings.ToLower(v), damp(confPattern, quality))
	}
	if v := strings.ToUpper(firstMatch(text, reInviterID)); v != "" {
		doc.SetField(FieldInviterID, v, damp(confLabeled, quality))
	}

	if v := normalizeName(firstMatch(text, reInviteeName)); v != "" {
		doc.SetField(FieldInviteeName, v, damp(confLabeled, quality))
	}
	if v := strings.ToUpper(firstMatch(text, reInviteePassport)); v != "" {
		doc.SetField(FieldInviteePassport, v, damp(confLabeled, quality))
	}
	if v := strings.ToUpper(firstMatch(text, reInviteeNationality)); v != "" {
		doc.SetField(FieldInviteeNationality, v, damp(confLabeled, quality))
	}

	if purpose := e.purpose(text); purpose != "" {
		doc.SetField(FieldVisitPurpose, purpose, damp(confDerived, quality))
	}

	e.visitDates(doc, text, quality)

	notarized := reNotarized.MatchString(text)
	doc.SetField(FieldNotarized, boolString(notarized), damp(confPattern, quality))

	e.validate(doc, notarized)

	doc.Success = doc.Field(FieldInviterName) != "" &&
		doc.Field(FieldInviteeName) != "" &&
		doc.Field(FieldVisitPurpose) != ""
	return doc, nil
}

func (e *InvitationExtractor) findCity(text string) string {
	upper := textnorm.NormalizeName(text)
	for _, city := range constants.CoteDivoireCities {
		if strings.Contains(upper, textnorm.NormalizeName(city)) {
			return city
		}
	}
	return ""
}

func (e *InvitationExtractor) purpose(text string) string {
	upper := textnorm.RemoveAccents(strings.ToUpper(text))
	for purpose, keywords := range visitPurposes {
		for _, kw := range keywords {
			if strings.Contains(upper, kw) {
				return purpose
			}
		}
	}
	return ""
}

func (e *InvitationExtractor) visitDates(doc *entity.Document, text string, quality float32) {
	if m := reVisitPeriod.FindStringSubmatch(text); m != nil {
		if from := parseDate(m[1]); from != "" {
			doc.SetField(FieldVisitArrival, from, damp(confLabeled, quality))
		}
		if to := parseDate(m[2]); to != "" {
			doc.SetField(FieldVisitDeparture, to, damp(confLabeled, quality))
		}
		return
	}
	if m := reArrival.FindStringSubmatch(text); m != nil {
		if from := parseDate(m[1]); from != "" {
			doc.SetField(FieldVisitArrival, from, damp(confLabeled, quality))
		}
	}
}

func (e *InvitationExtractor) validate(doc *entity.Document, notarized bool) {
	city := doc.Field(FieldInviterCity)
	addr := strings.ToUpper(doc.Field(FieldInviterAddress))
	doc.SetCheck(CheckInviterInCoteDivoire,
		city != "" || strings.Contains(addr, "IVOIRE") || strings.Contains(addr, "ABIDJAN"))

	arrival := doc.Field(FieldVisitArrival)
	departure := doc.Field(FieldVisitDeparture)
	doc.SetCheck(CheckDatesSpecified, arrival != "" || departure != "")
	if arrival != "" && departure != "" {
		// a same-day visit is ordered
		doc.SetCheck(CheckVisitDatesOrdered, !parseISO(departure).Before(parseISO(arrival)))
	}

	doc.SetCheck(CheckPurposeClear, doc.Field(FieldVisitPurpose) != "")
	doc.SetCheck(CheckLegalizationValid, notarized)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
