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
	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

// Hotel reservation field names.
const (
	FieldGuestName          = "guest_name"
	FieldHotelName          = "hotel_name"
	FieldHotelCity          = "city"
	FieldCheckInDate        = "check_in_date"
	FieldCheckOutDate       = "check_out_date"
	FieldNights             = "nights"
	FieldConfirmationNumber = "confirmation_number"
)

// Hotel reservation derived check names.
const (
	CheckLocationCoteDivoire = "location_is_cote_divoire"
	CheckDatesAreFuture      = "dates_are_future"
	CheckDatesCoherent       = "dates_coherent"
	CheckConfirmationPresent = "confirmation_number_present"
	CheckStayDurationValid   = "stay_duration_valid"
)

// maxReasonableStayNights bounds a tourist stay.
const maxReasonableStayNights = 90

var (
	reGuestName = []*regexp.Regexp{
		regexp.MustCompile(`(?i:GUEST\s*NAME|GUEST|CLIENT|CUSTOMER|NOM)[:. ]*([A-Za-z][A-Za-z\-' ]+)`),
	}
	// suffix form first so "SOFITEL ABIDJAN HOTEL" beats the generic
	// "HOTEL ..." heading of the document
	reHotelName = []*regexp.Regexp{
		regexp.MustCompile(`([A-Z][A-Za-z \-]+(?i:HOTEL|RESORT|PALACE|INN|SUITES|LODGE))`),
		regexp.MustCompile(`(?i:HOTEL|RESORT|RESIDENCE|APARTHOTEL)[:. ]*([A-Za-z][A-Za-z \-'.]+)`),
	}
	reCheckIn = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CHECK[-\s]?IN|ARRIVAL|ARRIVEE|FROM)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:CHECK[-\s]?IN|ARRIVAL|ARRIVEE)[:\s]*(\d{1,2}\s+\w+\s+\d{4})`),
	}
	reCheckOut = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CHECK[-\s]?OUT|DEPARTURE|DEPART|UNTIL|TO)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:CHECK[-\s]?OUT|DEPARTURE|DEPART)[:\s]*(\d{1,2}\s+\w+\s+\d{4})`),
	}
	// capture must contain a digit so label words are never mistaken for
	// the number itself
	reConfirmation = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:CONFIRMATION|BOOKING|RESERVATION)\s*(?:NO|NUMBER|N[°o]?|#|REF(?:ERENCE)?)?[:\s#]+([A-Z-]*\d[A-Z0-9-]{3,})`),
	}
	reCountryCI = regexp.MustCompile(`(?i)IVORY\s*COAST|C[OÔ]TE\s*D.?IVOIRE|\bCIV\b`)
)

// HotelExtractor parses hotel and guesthouse booking confirmations.
type HotelExtractor struct {
	now func() time.Time
}

func NewHotelExtractor(opts Options) *HotelExtractor {
	opts = opts.withDefaults()
	return &HotelExtractor{now: opts.Now}
}

func (e *HotelExtractor) DocumentType() constants.DocumentType { return constants.Hotel }

func (e *HotelExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.Hotel,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)

	if g := normalizeName(firstMatch(text, reGuestName)); g != "" {
		doc.SetField(FieldGuestName, g, damp(confLabeled, quality))
	}
	if h := strings.TrimSpace(firstMatch(text, reHotelName)); h != "" {
		doc.SetField(FieldHotelName, h, damp(confLabeled, quality))
	}
	if city := e.findCity(text); city != "" {
		doc.SetField(FieldHotelCity, city, damp(confPattern, quality))
	}

	checkIn, checkOut := e.stayDates(text)
	if checkIn != "" {
		doc.SetField(FieldCheckInDate, checkIn, damp(confLabeled, quality))
	}
	if checkOut != "" {
		doc.SetField(FieldCheckOutDate, checkOut, damp(confLabeled, quality))
	}
	if n := calculateNights(checkIn, checkOut); n > 0 {
		doc.SetField(FieldNights, strconv.Itoa(n), damp(confDerived, quality))
	}

	if c := firstMatch(text, reConfirmation); c != "" {
		doc.SetField(FieldConfirmationNumber, strings.ToUpper(c), damp(confLabeled, quality))
	}

	e.validate(doc, text)

	doc.Success = doc.Field(FieldGuestName) != "" &&
		doc.Field(FieldHotelName) != "" &&
		doc.Field(FieldCheckInDate) != ""
	return doc, nil
}

// findCity resolves a Côte d'Ivoire city mention, folding district aliases
// to their canonical city.
func (e *HotelExtractor) findCity(text string) string {
	upper := textnorm.NormalizeName(text)
	for alias, city := range constants.CityAliases {
		if strings.Contains(upper, textnorm.NormalizeName(alias)) {
			return city
		}
	}
	for _, city := range constants.CoteDivoireCities {
		if strings.Contains(upper, textnorm.NormalizeName(city)) {
			return city
		}
	}
	return ""
}

// stayDates prefers labeled check-in/check-out captures; without labels it
// falls back to the two earliest dates in the text, in order.
func (e *HotelExtractor) stayDates(text string) (checkIn, checkOut string) {
	checkIn = parseDate(firstMatch(text, reCheckIn))
	checkOut = parseDate(firstMatch(text, reCheckOut))
	if checkIn != "" && checkOut != "" {
		return checkIn, checkOut
	}

	dates := allDates(text)
	if checkIn == "" && len(dates) > 0 {
		checkIn = dates[0]
	}
	if checkOut == "" {
		for _, d := range dates {
			if d > checkIn {
				checkOut = d
				break
			}
		}
	}
	return checkIn, checkOut
}

// calculateNights counts nights between two ISO dates, rounding partial
// days up.
func calculateNights(checkIn, checkOut string) int {
	in, out := parseISO(checkIn), parseISO(checkOut)
	if in.IsZero() || out.IsZero() || !out.After(in) {
		return 0
	}
	return int(math.Ceil(out.Sub(in).Hours() / 24))
}

func (e *HotelExtractor) validate(doc *entity.Document, text string) {
	doc.SetCheck(CheckLocationCoteDivoire,
		doc.Field(FieldHotelCity) != "" || reCountryCI.MatchString(text))

	in := parseISO(doc.Field(FieldCheckInDate))
	out := parseISO(doc.Field(FieldCheckOutDate))
	now := e.now()

	if !in.IsZero() {
		doc.SetCheck(CheckDatesAreFuture, in.After(now) && (out.IsZero() || out.After(now)))
	}
	if !in.IsZero() && !out.IsZero() {
		doc.SetCheck(CheckDatesCoherent, out.After(in))
	}
	doc.SetCheck(CheckConfirmationPresent, doc.Field(FieldConfirmationNumber) != "")

	if n, err := strconv.Atoi(doc.Field(FieldNights)); err == nil {
		doc.SetCheck(CheckStayDurationValid, n > 0 && n <= maxReasonableStayNights)
	}
}
