// Package coherence cross-validates the documents of a dossier and produces
// the final risk assessment. Classification is deterministic: the same
// dossier and reference clock always yield the same verdict.
package coherence

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/rules"
)

// Options tune the validator. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time // reference clock, defaults to time.Now
	NewID  func() uuid.UUID // assessment ID source, defaults to uuid.New
	Rules  *rules.Set       // workflow rules, defaults to rules.DefaultSet

	NameSimilarity      float64                    // name match floor, default 0.80
	HotelToleranceDays  int                        // check-in vs arrival slack, default 1
	PaymentValidityDays int                        // default 30
	UrgentTravelDays    int                        // default 5
	LongStayNights      int                        // default 90
	MaxStayDays         map[constants.VisaType]int // per-visa stay caps, default constants.VisaMaxStayDays
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.New
	}
	if o.Rules == nil {
		o.Rules = rules.DefaultSet()
	}
	if o.MaxStayDays == nil {
		o.MaxStayDays = constants.VisaMaxStayDays
	}
	if o.NameSimilarity <= 0 {
		o.NameSimilarity = 0.80
	}
	if o.HotelToleranceDays <= 0 {
		o.HotelToleranceDays = 1
	}
	if o.PaymentValidityDays <= 0 {
		o.PaymentValidityDays = 30
	}
	if o.UrgentTravelDays <= 0 {
		o.UrgentTravelDays = 5
	}
	if o.LongStayNights <= 0 {
		o.LongStayNights = 90
	}
	return o
}

// Validator runs the cross-document checks over one dossier at a time. It is
// stateless and safe for concurrent use.
type Validator struct {
	log  *slog.Logger
	opts Options
}

func NewValidator(opts Options) *Validator {
	opts = opts.withDefaults()
	return &Validator{log: opts.Logger, opts: opts}
}

// Validate assesses a dossier. A nil or empty dossier is valid: nothing was
// claimed, so nothing can be inconsistent.
func (v *Validator) Validate(d *entity.Dossier) *entity.RiskAssessment {
	a := &entity.RiskAssessment{
		ID:                 v.opts.NewID(),
		AssessedAt:         v.opts.Now(),
		DocumentsValidated: map[constants.DocumentType]entity.DocumentValidation{},
	}
	if d != nil {
		a.DossierID = d.ID
	}
	if d == nil || len(d.Documents) == 0 {
		a.Valid = true
		a.RiskLevel = constants.RiskLow
		a.Confidence = 1.0
		return a
	}

	a.MissingDocuments = v.missingDocuments(d)
	v.validateDocuments(d, a)
	v.detectFraud(d, a)
	v.runCrossChecks(d, a)
	v.detectAnomalies(d, a)
	v.applyRules(d, a)
	a.Recommendations = recommendations(a)

	criticals, errors := countIndicators(a.FraudIndicators)
	a.RiskLevel = classify(criticals, errors, len(a.Anomalies))
	a.Confidence = confidence(criticals, errors, len(a.Anomalies), a.CrossCheckIssues())
	a.Valid = a.RiskLevel != constants.RiskHigh &&
		a.RiskLevel != constants.RiskCritical &&
		criticals == 0
	a.RequiresManualReview = a.RiskLevel == constants.RiskHigh || a.RiskLevel == constants.RiskCritical

	v.log.Info("dossier assessed",
		"dossier_id", a.DossierID,
		"risk_level", a.RiskLevel,
		"confidence", a.Confidence,
		"fraud_indicators", len(a.FraudIndicators),
		"anomalies", len(a.Anomalies),
		"cross_check_issues", a.CrossCheckIssues(),
	)
	return a
}

// missingDocuments lists the documents the workflow rules require for this
// dossier but that were never submitted, in sorted order.
func (v *Validator) missingDocuments(d *entity.Dossier) []string {
	ctx := rules.BuildContext(d)
	var missing []string
	for doc, req := range v.opts.Rules.Requirements(ctx) {
		if req != rules.Required {
			continue
		}
		if t, ok := constants.CanonicalizeDocumentType(doc); !ok || d.Document(t) == nil {
			missing = append(missing, doc)
		}
	}
	sort.Strings(missing)
	return missing
}

// validateDocuments records, per submitted document, whether its required
// fields were extracted.
func (v *Validator) validateDocuments(d *entity.Dossier, a *entity.RiskAssessment) {
	for t, doc := range d.Documents {
		if doc == nil {
			continue
		}
		fields := extract.MissingRequiredFields(doc)
		a.DocumentsValidated[t] = entity.DocumentValidation{
			HasRequiredFields: len(fields) == 0,
			MissingFields:     fields,
		}
	}
}

// recommendations turns every finding into one reviewer-facing line, in
// detection order: fraud indicators, cross-check issues, anomalies.
func recommendations(a *entity.RiskAssessment) []string {
	var recs []string
	for _, ind := range a.FraudIndicators {
		recs = append(recs, fmt.Sprintf("%s: %s", ind.Type, ind.Description))
	}
	for _, c := range a.CrossChecks {
		recs = append(recs, c.Issues...)
	}
	for _, an := range a.Anomalies {
		recs = append(recs, fmt.Sprintf("%s: %s", an.Type, an.Description))
	}
	return recs
}

// parseISO parses the YYYY-MM-DD dates the extractors emit. Zero time on
// failure.
func parseISO(iso string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", iso, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
