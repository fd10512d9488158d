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

// Flight ticket field names.
const (
	FieldPassengerName    = "passenger_name"
	FieldFlightNumber     = "flight_number"
	FieldAirline          = "airline"
	FieldDepartureAirport = "departure_airport"
	FieldArrivalAirport   = "arrival_airport"
	FieldDepartureDate    = "departure_date"
	FieldArrivalDate      = "arrival_date"
	FieldReturnDate       = "return_date"
	FieldBookingReference = "booking_reference"
	FieldTicketNumber     = "ticket_number"
)

// Flight ticket derived check names.
const (
	CheckDestinationAbidjan      = "destination_is_abidjan"
	CheckDateIsFuture            = "date_is_future"
	CheckDepartureInJurisdiction = "departure_in_jurisdiction"
	CheckFlightNumberValid       = "flight_number_valid"
	CheckRoundTrip               = "round_trip"
)

// airlines maps IATA carrier codes to names for the carriers seen on the
// Addis Ababa route network.
var airlines = map[string]string{
	"ET": "Ethiopian Airlines",
	"KQ": "Kenya Airways",
	"AF": "Air France",
	"TK": "Turkish Airlines",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"LH": "Lufthansa",
	"BA": "British Airways",
	"KL": "KLM",
	"MS": "EgyptAir",
	"WB": "RwandAir",
	"HF": "Air Côte d'Ivoire",
	"W3": "ASKY Airlines",
}

var (
	rePassengerName = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:PASSENGER\s*NAME\s*/\s*NOM\s*DU\s*PASSAGER|PASSENGER\s*NAME|NOM\s*DU\s*PASSAGER|PASSENGER)\s*:?\s+([A-Z][A-Z\-' ]+/[A-Z][A-Z\-' ]+)`),
		regexp.MustCompile(`\b([A-Z]{2,}/[A-Z][A-Z ]+?)\s+(?:MR|MRS|MS|MLLE|MME)\b`),
	}
	reFlightNumber = regexp.MustCompile(`\b([A-Z]{2})\s*(\d{3,4})\b`)
	reAirportPair  = regexp.MustCompile(`\(([A-Z]{3})\)[^()\n]*\(([A-Z]{3})\)`)
	reAirportCode  = regexp.MustCompile(`\b([A-Z]{3})\b`)
	reBookingRef   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)BOOKING\s+(?:REF(?:ERENCE)?|NO)[:\s#]+([A-Z0-9]{5,8})`),
		regexp.MustCompile(`(?i)(?:REF|REFERENCE|PNR|CONFIRMATION|DOSSIER|BOOKING)\s*[:\s#]+([A-Z0-9]{5,8})`),
	}
	reCarrierShapedRef = regexp.MustCompile(`^(?:ET|KQ|AF|TK|EK)\d{3,4}$`)
	reTicketNumber     = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:TICKET|BILLET|ETKT|E-TICKET)[:\s#]*(\d{13,14})`),
		regexp.MustCompile(`\b(\d{3}[-\s]?\d{10})\b`),
	}
	reTitleSuffix       = regexp.MustCompile(`\s+(?:MR|MRS|MS|MLLE|MME)$`)
	reFlightNumberValid = regexp.MustCompile(`^[A-Z]{2}\d{3,4}$`)
)

// segment is one leg of travel recovered from the ticket.
type segment struct {
	from, to string
	date     string
}

// FlightTicketExtractor parses airline itineraries and e-tickets.
type FlightTicketExtractor struct {
	now func() time.Time
}

func NewFlightTicketExtractor(opts Options) *FlightTicketExtractor {
	opts = opts.withDefaults()
	return &FlightTicketExtractor{now: opts.Now}
}

func (e *FlightTicketExtractor) DocumentType() constants.DocumentType {
	return constants.FlightTicket
}

func (e *FlightTicketExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.FlightTicket,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)

	if name := e.passengerName(text); name != "" {
		doc.SetField(FieldPassengerName, name, damp(confLabeled, quality))
	}

	if m := reFlightNumber.FindStringSubmatch(text); m != nil {
		code := strings.ToUpper(m[1])
		doc.SetField(FieldFlightNumber, code+m[2], damp(confPattern, quality))
		if name, ok := airlines[code]; ok {
			doc.SetField(FieldAirline, name, damp(confDerived, quality))
		}
	}

	segs := e.segments(text)
	if len(segs) > 0 {
		first, last := segs[0], segs[len(segs)-1]
		doc.SetField(FieldDepartureAirport, first.from, damp(confPattern, quality))
		doc.SetField(FieldArrivalAirport, first.to, damp(confPattern, quality))
		if first.date != "" {
			doc.SetField(FieldDepartureDate, first.date, damp(confLabeled, quality))
		}
		roundTrip := len(segs) >= 2 && first.from == last.to
		doc.SetCheck(CheckRoundTrip, roundTrip)
		if roundTrip && last.date != "" {
			doc.SetField(FieldReturnDate, last.date, damp(confLabeled, quality))
		}
	} else {
		doc.SetCheck(CheckRoundTrip, false)
	}

	// no labeled segment dates: fall back to all dates in order
	if doc.Field(FieldDepartureDate) == "" {
		dates := allDates(text)
		if len(dates) > 0 {
			doc.SetField(FieldDepartureDate, dates[0], damp(confPattern, quality))
			if len(dates) > 1 && doc.Check(CheckRoundTrip) {
				doc.SetField(FieldReturnDate, dates[len(dates)-1], damp(confPattern, quality))
			}
		}
	}

	if ref := firstMatch(text, reBookingRef); ref != "" {
		ref = strings.ToUpper(ref)
		if !reCarrierShapedRef.MatchString(ref) {
			doc.SetField(FieldBookingReference, ref, damp(confLabeled, quality))
		}
	}
	if tn := firstMatch(text, reTicketNumber); tn != "" {
		tn = strings.NewReplacer(" ", "", "-", "").Replace(tn)
		doc.SetField(FieldTicketNumber, tn, damp(confLabeled, quality))
	}

	e.validate(doc)

	doc.Success = doc.Field(FieldPassengerName) != "" &&
		doc.Field(FieldFlightNumber) != "" &&
		doc.Field(FieldDepartureDate) != ""
	return doc, nil
}

func (e *FlightTicketExtractor) passengerName(text string) string {
	for _, p := range rePassengerName {
		if m := p.FindStringSubmatch(text); m != nil {
			name := reTitleSuffix.ReplaceAllString(strings.TrimSpace(m[1]), "")
			if len(name) > 3 {
				return name
			}
		}
	}
	return ""
}

// segments finds travel legs line by line: two parenthesized IATA codes, or
// two known airport codes in sequence.
func (e *FlightTicketExtractor) segments(text string) []segment {
	var segs []segment
	for _, line := range strings.Split(text, "\n") {
		var s segment
		if m := reAirportPair.FindStringSubmatch(line); m != nil {
			s = segment{from: m[1], to: m[2]}
		} else {
			var known []string
			for _, m := range reAirportCode.FindAllStringSubmatch(line, -1) {
				if isKnownAirport(m[1]) {
					known = append(known, m[1])
				}
			}
			if len(known) >= 2 {
				s = segment{from: known[0], to: known[1]}
			}
		}
		if s.from == "" {
			continue
		}
		s.date = parseDate(line)
		segs = append(segs, s)
	}
	return segs
}

func isKnownAirport(code string) bool {
	if _, ok := constants.CoteDivoireAirports[code]; ok {
		return true
	}
	_, ok := constants.JurisdictionAirports[code]
	return ok
}

// allDates collects every parseable date in the text, sorted ascending.
func allDates(text string) []string {
	seen := map[string]struct{}{}
	var dates []string
	for _, line := range strings.Split(text, "\n") {
		if iso := parseDate(line); iso != "" {
			if _, dup := seen[iso]; !dup {
				seen[iso] = struct{}{}
				dates = append(dates, iso)
			}
		}
	}
	sort.Strings(dates)
	return dates
}

func (e *FlightTicketExtractor) validate(doc *entity.Document) {
	if arr := doc.Field(FieldArrivalAirport); arr != "" {
		_, ok := constants.CoteDivoireAirports[arr]
		doc.SetCheck(CheckDestinationAbidjan, ok)
	}
	if dep := doc.Field(FieldDepartureDate); dep != "" {
		d := parseISO(dep)
		doc.SetCheck(CheckDateIsFuture, !d.IsZero() && d.After(e.now()))
	}
	if from := doc.Field(FieldDepartureAirport); from != "" {
		_, ok := constants.JurisdictionAirports[from]
		doc.SetCheck(CheckDepartureInJurisdiction, ok)
	}
	if fn := doc.Field(FieldFlightNumber); fn != "" {
		doc.SetCheck(CheckFlightNumberValid, reFlightNumberValid.MatchString(fn))
	}
}
