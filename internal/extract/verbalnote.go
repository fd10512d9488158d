package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// Verbal note field names.
const (
	FieldSendingEntity     = "sending_entity"
	FieldReceivingEntity   = "receiving_entity"
	FieldNoteReference     = "reference_number"
	FieldNoteDate          = "date"
	FieldNoteSubject       = "subject"
	FieldDiplomatName      = "diplomat_name"
	FieldDiplomatTitle     = "diplomat_title"
	FieldDiplomatPassport  = "diplomat_passport_number"
	FieldMissionPurpose    = "mission_purpose"
	FieldRequestedVisaType = "requested_visa_type"
)

// Verbal note derived check names.
const (
	CheckOfficialLetterhead   = "official_letterhead"
	CheckAddressedToCIEmbassy = "addressed_to_ci_embassy"
	CheckDiplomatIdentified   = "diplomat_identified"
	CheckNoteReferencePres    = "reference_number_present"
	CheckNoteDateRecent       = "note_date_recent"
	CheckSignaturePresent     = "signature_present"
)

// internationalOrgs are sending entities recognized without an embassy or
// ministry letterhead.
var internationalOrgs = []string{
	"UNITED NATIONS", "AFRICAN UNION", "EUROPEAN UNION", "WORLD BANK",
	"UNESCO", "UNICEF", "UNHCR", "ECOWAS", "CEDEAO",
}

var (
	// letterheads print the sending state in capitals, which keeps the
	// capture from running into the body of the note
	reSendingEntity = []*regexp.Regexp{
		regexp.MustCompile(`(?i:EMBASSY|AMBASSADE)\s*(?i:OF|DE)\s*(?i:THE\s*)?([A-Z][A-Z \-']*[A-Z])`),
		regexp.MustCompile(`(?i:MINISTRY|MINISTERE)\s*(?i:OF|DES?)\s*(?i:THE\s*)?([A-Z][A-Z \-']*[A-Z])`),
		regexp.MustCompile(`(?i:PERMANENT\s*)?(?i:MISSION|DELEGATION)\s*(?i:OF|DE)\s*([A-Z][A-Z \-']*[A-Z])`),
	}
	reNoteReference = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:REF|REFERENCE|NOTE)\s*(?:NO|N[°o]?)?[.:\s]+([A-Z]{1,5}[/-]\d{2,4}[/-][A-Z0-9]+)`),
		regexp.MustCompile(`\b([A-Z]{2,5}/\d{2,4}/[A-Z0-9]+)\b`),
	}
	reNoteDate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:DATED?|LE|DU)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Z]*\s+\d{4})\b`),
	}
	reNoteSubject = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:OBJET|SUBJECT|CONCERNING)[:\s]+([^\n]+)`),
		regexp.MustCompile(`(?i)REQUEST\s*FOR\s+([^\n]+)`),
	}
	reDiplomatName = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:H\.E\.|HIS\s*EXCELLENCY|HER\s*EXCELLENCY|SON\s*EXCELLENCE|S\.E\.)[.:\s]*(?:MR|MRS|MS)?[.\s]*([A-Z][A-Za-z \-']+)`),
		regexp.MustCompile(`(?i)(?:MR|MRS|MS)\.?\s+([A-Z][A-Z \-']+[A-Z])`),
	}
	reDiplomatTitle = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(AMBASSADOR|AMBASSADEUR|COUNSELLOR|CONSEILLER|FIRST\s*SECRETARY|SECOND\s*SECRETARY|ATTACHE)\b`),
	}
	reDiplomatPassport = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:DIPLOMATIC\s*)?(?:PASSPORT|PASSEPORT)\s*(?:NO|N[°o]?|NUMBER)?[.:\s]+([A-Z]{1,2}\d{6,9})`),
	}
	reMissionPurpose = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:PURPOSE|MISSION)[:\s]+([^\n.]+)`),
		regexp.MustCompile(`(?i)(?:OFFICIAL\s*)?(?:VISIT|VISITE)\s*(?:TO|EN)[:\s]+([^\n.]+)`),
	}
	reStampOrSeal = regexp.MustCompile(`(?i)STAMP|CACHET|SEAL|SCEAU|SIGNED|SIGNE|SIGNATURE`)
)

// requestedVisaTypes maps requested visa categories to announcing keywords.
var requestedVisaTypes = map[string][]string{
	"DIPLOMATIC": {"DIPLOMATIC VISA", "VISA DIPLOMATIQUE"},
	"SERVICE":    {"SERVICE VISA", "OFFICIAL VISA", "VISA DE SERVICE"},
	"COURTESY":   {"COURTESY VISA", "VISA DE COURTOISIE"},
	"TRANSIT":    {"TRANSIT VISA", "VISA DE TRANSIT"},
}

// VerbalNoteExtractor parses diplomatic verbal notes, the accrediting letter
// a sending state or organization issues for its officials.
type VerbalNoteExtractor struct {
	now func() time.Time
}

func NewVerbalNoteExtractor(opts Options) *VerbalNoteExtractor {
	opts = opts.withDefaults()
	return &VerbalNoteExtractor{now: opts.Now}
}

func (e *VerbalNoteExtractor) DocumentType() constants.DocumentType { return constants.VerbalNote }

func (e *VerbalNoteExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.VerbalNote,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)

	if sender := e.sendingEntity(text); sender != "" {
		doc.SetField(FieldSendingEntity, sender, damp(confLabeled, quality))
	}
	if e.addressedToCI(text) {
		doc.SetField(FieldReceivingEntity, "AMBASSADE DE COTE D'IVOIRE", damp(confDerived, quality))
	}
	if ref := strings.ToUpper(firstMatch(text, reNoteReference)); ref != "" {
		doc.SetField(FieldNoteReference, ref, damp(confLabeled, quality))
	}
	if d := parseDate(firstMatch(text, reNoteDate)); d != "" {
		doc.SetField(FieldNoteDate, d, damp(confLabeled, quality))
	}
	if subject := strings.TrimSpace(firstMatch(text, reNoteSubject)); subject != "" {
		doc.SetField(FieldNoteSubject, subject, damp(confLabeled, quality))
	}
	if name := normalizeName(firstMatch(text, reDiplomatName)); name != "" {
		doc.SetField(FieldDiplomatName, name, damp(confLabeled, quality))
	}
	if title := strings.ToUpper(strings.TrimSpace(firstMatch(text, reDiplomatTitle))); title != "" {
		doc.SetField(FieldDiplomatTitle, title, damp(confPattern, quality))
	}
	if num := strings.ToUpper(firstMatch(text, reDiplomatPassport)); num != "" {
		doc.SetField(FieldDiplomatPassport, num, damp(confLabeled, quality))
	}
	if purpose := strings.TrimSpace(firstMatch(text, reMissionPurpose)); purpose != "" {
		doc.SetField(FieldMissionPurpose, purpose, damp(confLabeled, quality))
	}
	if vt := e.requestedVisa(text); vt != "" {
		doc.SetField(FieldRequestedVisaType, vt, damp(confDerived, quality))
	}

	e.validate(doc, text)

	doc.Success = doc.Field(FieldSendingEntity) != "" &&
		doc.Field(FieldDiplomatName) != "" &&
		doc.Field(FieldNoteDate) != ""
	return doc, nil
}

// sendingEntity finds the issuing embassy, ministry or mission, falling back
// to recognized international organizations.
func (e *VerbalNoteExtractor) sendingEntity(text string) string {
	if v := strings.TrimSpace(firstMatch(text, reSendingEntity)); v != "" {
		return strings.ToUpper(v)
	}
	upper := strings.ToUpper(text)
	for _, org := range internationalOrgs {
		if strings.Contains(upper, org) {
			return org
		}
	}
	return ""
}

func (e *VerbalNoteExtractor) addressedToCI(text string) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, "IVOIRE") || strings.Contains(upper, "IVORY COAST")
}

func (e *VerbalNoteExtractor) requestedVisa(text string) string {
	return matchKeywordTable(text, requestedVisaTypes)
}

func (e *VerbalNoteExtractor) validate(doc *entity.Document, text string) {
	doc.SetCheck(CheckOfficialLetterhead, doc.Field(FieldSendingEntity) != "")
	doc.SetCheck(CheckAddressedToCIEmbassy, doc.Field(FieldReceivingEntity) != "")
	doc.SetCheck(CheckDiplomatIdentified, doc.Field(FieldDiplomatName) != "")
	doc.SetCheck(CheckNoteReferencePres, doc.Field(FieldNoteReference) != "")
	doc.SetCheck(CheckSignaturePresent, reStampOrSeal.MatchString(text))

	// a note older than six months no longer accredits the mission
	if d := parseISO(doc.Field(FieldNoteDate)); !d.IsZero() {
		now := e.now()
		doc.SetCheck(CheckNoteDateRecent, !d.After(now) && d.After(now.AddDate(0, -6, 0)))
	}
}
