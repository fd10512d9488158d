package rules

import (
	"github.com/kodjo-amani/dossier-check/constants"
)

// DefaultSet encodes the consular document requirements used when no
// operator rule set is supplied. Passport, flight ticket and vaccination
// certificate are always required. The payment proof is waived for
// fee-exempt passports, diplomatic and service passports must come with a
// verbal note, and applicants whose passport places them outside the
// jurisdiction must show a residence card for a jurisdiction country.
func DefaultSet() *Set {
	feeExempt := []any{
		string(constants.PassportDiplomatique),
		string(constants.PassportService),
		string(constants.PassportLaissezPasser),
	}

	return &Set{
		Name: "consular-defaults",
		Rules: []Rule{
			{
				ID:       "passport-required",
				Document: string(constants.Passport),
				Action:   ActionRequire,
			},
			{
				ID:       "flight-ticket-required",
				Document: string(constants.FlightTicket),
				Action:   ActionRequire,
			},
			{
				ID:       "vaccination-required",
				Document: string(constants.Vaccination),
				Action:   ActionRequire,
			},
			{
				ID:          "payment-required-unless-exempt",
				Description: "consular fee applies to non-exempt passports",
				Document:    string(constants.PaymentProof),
				Action:      ActionRequire,
				When: &Condition{
					Field: "passport.passport_type",
					Op:    OpNotIn,
					Value: feeExempt,
				},
			},
			{
				ID:          "verbal-note-for-official-passports",
				Description: "diplomatic and service passports need a verbal note",
				Document:    string(constants.VerbalNote),
				Action:      ActionRequire,
				When: &Condition{
					Field: "passport.passport_type",
					Op:    OpIn,
					Value: []any{
						string(constants.PassportDiplomatique),
						string(constants.PassportService),
					},
				},
			},
			{
				ID:          "residence-card-outside-jurisdiction",
				Description: "out-of-jurisdiction nationals must prove local residence",
				Document:    string(constants.ResidenceCard),
				Action:      ActionRequire,
				When: &Condition{
					Field: "passport.checks.in_jurisdiction",
					Op:    OpEq,
					Value: false,
				},
			},
		},
	}
}
