package extract

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

// Payment proof field names.
const (
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldPaymentDate   = "date"
	FieldReference     = "reference"
	FieldPayee         = "payee"
	FieldPaymentMethod = "payment_method"
	FieldBank          = "bank"
)

// Payment proof derived check names.
const (
	CheckAmountMatchesExpected = "amount_matches_expected"
	CheckDateIsRecent          = "date_is_recent"
	CheckPayeeIsTresorCI       = "payee_is_tresor_ci"
	CheckReferenceFormatValid  = "reference_format_valid"
)

var (
	reLabeledAmount = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:MONTANT|AMOUNT|TOTAL|SUM|SOMME)\s*(?:/\s*(?:AMOUNT|MONTANT))?[:\s]+([0-9][0-9,.\s]*)\s*(XOF|FCFA|CFA|ETB|EUR|USD)?`),
	}
	rePaymentDate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:PAYMENT|PAIEMENT)\s*(?:DATE)?[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:DATE|DATED|LE|DU)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:DATE|DATED)[:\s]*(\d{1,2}\s+\w+\s+\d{4})`),
	}
	rePaymentRef = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:REFERENCE|REF|TRANSACTION)\s*(?:NO|NUMBER|N[°o]?)?[:\s#]+([A-Z\-/]*\d[A-Z0-9\-/]{3,})`),
	}
	rePayee = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:BENEFICIAIRE|PAYEE|TO)\s*(?:/\s*(?:PAYEE|BENEFICIAIRE))?[:\s]+((?:TRESOR|AMBASSADE|EMBASSY|CONSULAT)[A-Z '\-]+)`),
	}
	reBank = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:BANK|BANQUE)[:\s]*([A-Z][A-Za-z ]+)`),
	}
)

// PaymentExtractor parses visa fee payment receipts and transfer slips.
type PaymentExtractor struct {
	now          func() time.Time
	visaType     constants.VisaType
	passportType constants.PassportType
	entries      constants.EntryCount
	fees         constants.FeeSchedule
	validityDays int
}

func NewPaymentExtractor(opts Options) *PaymentExtractor {
	opts = opts.withDefaults()
	return &PaymentExtractor{
		now:          opts.Now,
		visaType:     opts.VisaType,
		passportType: opts.PassportType,
		entries:      opts.Entries,
		fees:         opts.Fees,
		validityDays: opts.PaymentValidityDays,
	}
}

func (e *PaymentExtractor) DocumentType() constants.DocumentType { return constants.PaymentProof }

func (e *PaymentExtractor) Extract(ctx context.Context, rawText string) (*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entity.Document{
		DocumentType: constants.PaymentProof,
		Fields:       map[string]entity.Field{},
		Checks:       map[string]bool{},
	}
	text := cleanText(rawText)
	quality := textQuality(text)

	amount, currency := e.amount(text)
	if amount > 0 {
		doc.SetField(FieldAmount, formatAmount(amount), damp(confLabeled, quality))
		doc.SetField(FieldCurrency, currency, damp(confLabeled, quality))
	}

	if d := parseDate(firstMatch(text, rePaymentDate)); d != "" {
		doc.SetField(FieldPaymentDate, d, damp(confLabeled, quality))
	}
	if ref := strings.ToUpper(firstMatch(text, rePaymentRef)); ref != "" {
		doc.SetField(FieldReference, ref, damp(confLabeled, quality))
	}
	if payee := strings.TrimSpace(firstMatch(text, rePayee)); payee != "" {
		doc.SetField(FieldPayee, normalizeName(payee), damp(confLabeled, quality))
	}
	if method := e.paymentMethod(text); method != "" {
		doc.SetField(FieldPaymentMethod, method, damp(confPattern, quality))
	}
	if bank := strings.TrimSpace(firstMatch(text, reBank)); bank != "" {
		doc.SetField(FieldBank, bank, damp(confLabeled, quality))
	}

	e.validate(doc, amount, currency)

	doc.Success = amount > 0 &&
		doc.Field(FieldPaymentDate) != "" &&
		doc.Field(FieldReference) != ""
	return doc, nil
}

// amount prefers a labeled amount; any bare monetary shape is the fallback.
func (e *PaymentExtractor) amount(text string) (float64, string) {
	for _, p := range reLabeledAmount {
		if m := p.FindStringSubmatch(text); m != nil {
			return parseAmountValue(strings.TrimSpace(m[1])), normalizeCurrency(m[2])
		}
	}
	if v, cur, ok := parseAmount(text); ok {
		return v, cur
	}
	return 0, ""
}

func (e *PaymentExtractor) paymentMethod(text string) string {
	upper := textnorm.RemoveAccents(strings.ToUpper(text))
	for _, m := range constants.PaymentMethods {
		if strings.Contains(upper, m) {
			return m
		}
	}
	return ""
}

func (e *PaymentExtractor) validate(doc *entity.Document, amount float64, currency string) {
	fee, ok := e.fees.Lookup(e.passportType, e.visaType, e.entries)
	switch {
	case ok && fee.Base == 0:
		// fee-exempt passport: whatever was paid cannot be incorrect
		doc.SetCheck(CheckAmountMatchesExpected, true)
	case ok && amount > 0 && currency == fee.Currency:
		// the express surcharge is a legitimate overpayment
		doc.SetCheck(CheckAmountMatchesExpected,
			withinTolerance(amount, fee.Base) || withinTolerance(amount, fee.Base+fee.Express))
	case amount > 0:
		doc.SetCheck(CheckAmountMatchesExpected, false)
	}

	if d := parseISO(doc.Field(FieldPaymentDate)); !d.IsZero() {
		now := e.now()
		age := now.Sub(d)
		doc.SetCheck(CheckDateIsRecent, age >= 0 && age <= time.Duration(e.validityDays)*24*time.Hour)
	}

	if payee := doc.Field(FieldPayee); payee != "" {
		doc.SetCheck(CheckPayeeIsTresorCI, payeeAllowed(payee))
	}

	if ref := doc.Field(FieldReference); ref != "" {
		doc.SetCheck(CheckReferenceFormatValid, len(ref) >= 6)
	}
}

func withinTolerance(paid, expected float64) bool {
	if expected <= 0 {
		return false
	}
	return math.Abs(paid-expected)/expected <= constants.AmountTolerance
}

// payeeAllowed matches the extracted beneficiary against the allow-list,
// tolerating partial captures.
func payeeAllowed(payee string) bool {
	n := textnorm.NormalizeName(payee)
	for _, allowed := range constants.ValidPayees {
		a := textnorm.NormalizeName(allowed)
		if strings.Contains(n, a) || strings.Contains(a, n) {
			return true
		}
	}
	return false
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
