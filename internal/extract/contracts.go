// Package extract turns OCR'd document text into typed, confidence-scored
// fields, one extractor per supported document type.
package extract

import (
	"context"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// Extractor parses the OCR text of one document type. Implementations never
// fail on malformed input: they return a Document with Success=false and
// whatever fields could be recovered. The error return is reserved for
// context cancellation.
type Extractor interface {
	DocumentType() constants.DocumentType
	Extract(ctx context.Context, rawText string) (*entity.Document, error)
}

// Options tune extractor behavior. The zero value is usable.
type Options struct {
	Now                 func() time.Time       // clock, defaults to time.Now
	VisaType            constants.VisaType     // fee lookup, defaults to COURT_SEJOUR
	PassportType        constants.PassportType // fee lookup, defaults to ORDINAIRE
	Entries             constants.EntryCount   // fee lookup, defaults to single entry
	Fees                constants.FeeSchedule  // fee table, defaults to the published schedule
	PaymentValidityDays int                    // default 30
	VaccinationLeadDays int                    // efficacy delay, default 10
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.VisaType == "" {
		o.VisaType = constants.VisaCourtSejour
	}
	if o.PassportType == "" {
		o.PassportType = constants.PassportOrdinaire
	}
	if o.Entries == "" {
		o.Entries = constants.EntrySingle
	}
	if o.Fees == nil {
		o.Fees = constants.DefaultFeeSchedule()
	}
	if o.PaymentValidityDays <= 0 {
		o.PaymentValidityDays = 30
	}
	if o.VaccinationLeadDays <= 0 {
		o.VaccinationLeadDays = 10
	}
	return o
}

// All returns one extractor per supported document type.
func All(opts Options) []Extractor {
	opts = opts.withDefaults()
	return []Extractor{
		NewPassportExtractor(opts),
		NewFlightTicketExtractor(opts),
		NewHotelExtractor(opts),
		NewVaccinationExtractor(opts),
		NewPaymentExtractor(opts),
		NewInvitationExtractor(opts),
		NewVerbalNoteExtractor(opts),
		NewResidenceCardExtractor(opts),
	}
}

// ForType returns the extractor for a document type, or nil when the type is
// not supported.
func ForType(t constants.DocumentType, opts Options) Extractor {
	for _, e := range All(opts) {
		if e.DocumentType() == t {
			return e
		}
	}
	return nil
}

// requiredFields name the fields a document of each type must carry to count
// as complete.
var requiredFields = map[constants.DocumentType][]string{
	constants.Passport:      {FieldPassportNumber, FieldSurname, FieldExpiryDate},
	constants.FlightTicket:  {FieldPassengerName, FieldFlightNumber, FieldDepartureDate},
	constants.Hotel:         {FieldGuestName, FieldHotelName, FieldCheckInDate},
	constants.Vaccination:   {FieldHolderName, FieldYellowFeverDate},
	constants.PaymentProof:  {FieldAmount, FieldPaymentDate, FieldReference},
	constants.Invitation:    {FieldInviterName, FieldInviteeName},
	constants.VerbalNote:    {FieldSendingEntity, FieldDiplomatName, FieldNoteDate},
	constants.ResidenceCard: {FieldHolderName, FieldCardNumber, FieldExpiryDate},
}

// RequiredFields lists the required field names for a document type.
func RequiredFields(t constants.DocumentType) []string {
	return requiredFields[t]
}

// MissingRequiredFields returns the required fields a document lacks, in
// declaration order.
func MissingRequiredFields(doc *entity.Document) []string {
	var missing []string
	for _, name := range requiredFields[doc.DocumentType] {
		if doc.Field(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
