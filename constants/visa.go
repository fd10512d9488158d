package constants

import "strings"

type VisaType string

const (
	VisaCourtSejour VisaType = "COURT_SEJOUR"
	VisaLongSejour  VisaType = "LONG_SEJOUR"
	VisaTransit     VisaType = "TRANSIT"
	VisaAffaires    VisaType = "AFFAIRES"
)

// EntryCount distinguishes single- from multiple-entry visas.
type EntryCount string

const (
	EntrySingle   EntryCount = "UNIQUE"
	EntryMultiple EntryCount = "MULTIPLE"
)

// Fee is one consular fee schedule entry.
type Fee struct {
	Base     float64
	Express  float64
	Currency string
}

// FeeKey addresses the schedule: the fee depends on the passport workflow,
// the visa requested and the number of entries.
type FeeKey struct {
	Passport PassportType
	Visa     VisaType
	Entries  EntryCount
}

// FeeSchedule is the consular fee table. Holders of a free passport type pay
// nothing regardless of visa type.
type FeeSchedule map[FeeKey]Fee

// Lookup resolves the fee owed for a passport/visa/entry combination.
func (s FeeSchedule) Lookup(p PassportType, v VisaType, e EntryCount) (Fee, bool) {
	if _, free := FreePassportTypes[p]; free {
		return Fee{Currency: "XOF"}, true
	}
	if p == "" {
		p = PassportOrdinaire
	}
	if e == "" {
		e = EntrySingle
	}
	fee, ok := s[FeeKey{Passport: p, Visa: v, Entries: e}]
	return fee, ok
}

// DefaultFeeSchedule returns the published ordinary-passport fee table, in
// XOF. Callers needing a consulate-specific table inject their own.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		{PassportOrdinaire, VisaCourtSejour, EntrySingle}:   {Base: 73000, Express: 50000, Currency: "XOF"},
		{PassportOrdinaire, VisaCourtSejour, EntryMultiple}: {Base: 120000, Express: 50000, Currency: "XOF"},
		{PassportOrdinaire, VisaLongSejour, EntrySingle}:    {Base: 120000, Express: 50000, Currency: "XOF"},
		{PassportOrdinaire, VisaLongSejour, EntryMultiple}:  {Base: 120000, Express: 50000, Currency: "XOF"},
		{PassportOrdinaire, VisaTransit, EntrySingle}:       {Base: 50000, Currency: "XOF"},
		{PassportOrdinaire, VisaAffaires, EntrySingle}:      {Base: 73000, Express: 50000, Currency: "XOF"},
		{PassportOrdinaire, VisaAffaires, EntryMultiple}:    {Base: 120000, Express: 50000, Currency: "XOF"},
	}
}

// FreePassportTypes are exempt from consular fees.
var FreePassportTypes = map[PassportType]struct{}{
	PassportDiplomatique:  {},
	PassportService:       {},
	PassportLaissezPasser: {},
}

// VisaMaxStayDays caps the length of stay per visa type.
var VisaMaxStayDays = map[VisaType]int{
	VisaCourtSejour: 90,
	VisaLongSejour:  365,
	VisaTransit:     7,
	VisaAffaires:    90,
}

// AmountTolerance is the accepted relative deviation for a paid fee.
const AmountTolerance = 0.05

// ValidPayees are the accepted beneficiaries on a payment proof. Matching is
// substring-based on normalized text.
var ValidPayees = []string{
	"TRESOR PUBLIC",
	"TRESOR PUBLIC DE COTE D'IVOIRE",
	"TRESOR CI",
	"AMBASSADE DE COTE D'IVOIRE",
	"AMBASSADE COTE D'IVOIRE",
	"EMBASSY OF COTE D'IVOIRE",
	"EMBASSY OF IVORY COAST",
	"CONSULAT DE COTE D'IVOIRE",
}

// PaymentMethods are the recognized payment channels.
var PaymentMethods = []string{
	"VIREMENT",
	"TRANSFER",
	"CASH",
	"ESPECES",
	"CHEQUE",
	"MOBILE MONEY",
	"CARTE BANCAIRE",
	"CARD",
}

type PassportType string

const (
	PassportOrdinaire     PassportType = "ORDINAIRE"
	PassportDiplomatique  PassportType = "DIPLOMATIQUE"
	PassportService       PassportType = "SERVICE"
	PassportLaissezPasser PassportType = "LAISSEZ_PASSER"
)

// CanonicalizeVisaType resolves free-text visa type mentions to a VisaType.
func CanonicalizeVisaType(input string) (VisaType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "COURT_SEJOUR", "SHORT_STAY", "TOURISME", "TOURISM":
		return VisaCourtSejour, true
	case "LONG_SEJOUR", "LONG_STAY":
		return VisaLongSejour, true
	case "TRANSIT":
		return VisaTransit, true
	case "AFFAIRES", "BUSINESS":
		return VisaAffaires, true
	}
	return VisaCourtSejour, false
}

// CanonicalizePassportType resolves a passport type mention; ordinary is
// the default.
func CanonicalizePassportType(input string) (PassportType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "ORDINAIRE", "ORDINARY", "REGULAR":
		return PassportOrdinaire, true
	case "DIPLOMATIQUE", "DIPLOMATIC":
		return PassportDiplomatique, true
	case "SERVICE", "OFFICIAL":
		return PassportService, true
	case "LAISSEZ_PASSER", "LP_ONU", "LP_UA":
		return PassportLaissezPasser, true
	}
	return PassportOrdinaire, false
}

// CanonicalizeEntryCount resolves free-text entry count mentions; single
// entry is the default.
func CanonicalizeEntryCount(input string) EntryCount {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "MULTIPLE", "MULTI", "MULTIPLES":
		return EntryMultiple
	}
	return EntrySingle
}
