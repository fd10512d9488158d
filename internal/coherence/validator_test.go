package coherence

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/rules"
)

var coherenceNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewValidator(Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return coherenceNow },
	})
}

func doc(t constants.DocumentType, fields map[string]string, checks map[string]bool) *entity.Document {
	d := &entity.Document{DocumentType: t, Success: true}
	for k, v := range fields {
		d.SetField(k, v, 0.9)
	}
	for k, v := range checks {
		d.SetCheck(k, v)
	}
	return d
}

// coherentDossier is a fully consistent short-stay application.
func coherentDossier() *entity.Dossier {
	d := &entity.Dossier{ID: uuid.New(), VisaType: constants.VisaCourtSejour}
	d.Add(doc(constants.Passport,
		map[string]string{
			extract.FieldSurname:     "BEKELE",
			extract.FieldGivenNames:  "ABEBE TESHOME",
			extract.FieldNationality: "ETH",
			extract.FieldExpiryDate:  "2030-05-14",
		},
		map[string]bool{
			extract.CheckMRZPresent:  true,
			extract.CheckMRZValid:    true,
			extract.CheckExpiryValid: true,
		}))
	d.Add(doc(constants.FlightTicket,
		map[string]string{
			extract.FieldPassengerName: "ABEBE BEKELE",
			extract.FieldDepartureDate: "2026-06-15",
			extract.FieldArrivalDate:   "2026-06-15",
			extract.FieldReturnDate:    "2026-06-30",
		}, nil))
	d.Add(doc(constants.Hotel,
		map[string]string{
			extract.FieldGuestName:    "ABEBE BEKELE",
			extract.FieldCheckInDate:  "2026-06-15",
			extract.FieldCheckOutDate: "2026-06-25",
			extract.FieldNights:       "10",
		}, nil))
	d.Add(doc(constants.Vaccination,
		map[string]string{extract.FieldHolderName: "ABEBE BEKELE"},
		map[string]bool{extract.CheckYellowFeverValid: true}))
	d.Add(doc(constants.PaymentProof,
		map[string]string{
			extract.FieldAmount:      "73000",
			extract.FieldCurrency:    "XOF",
			extract.FieldPaymentDate: "2026-02-20",
		},
		map[string]bool{extract.CheckAmountMatchesExpected: true}))
	return d
}

func TestValidateEmptyDossier(t *testing.T) {
	v := testValidator()

	for _, d := range []*entity.Dossier{nil, {ID: uuid.New()}} {
		a := v.Validate(d)
		require.NotNil(t, a)
		assert.True(t, a.Valid)
		assert.Equal(t, constants.RiskLow, a.RiskLevel)
		assert.InDelta(t, 1.0, a.Confidence, 1e-9)
		assert.False(t, a.RequiresManualReview)
		assert.Empty(t, a.FraudIndicators)
	}
}

func TestValidateCoherentDossier(t *testing.T) {
	v := testValidator()
	d := coherentDossier()

	a := v.Validate(d)

	assert.True(t, a.Valid)
	assert.Equal(t, constants.RiskLow, a.RiskLevel)
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
	assert.False(t, a.RequiresManualReview)
	assert.Empty(t, a.FraudIndicators)
	assert.Empty(t, a.Anomalies)
	assert.Empty(t, a.MissingDocuments)
	assert.Equal(t, d.ID, a.DossierID)
	assert.Zero(t, a.FailedCrossChecks())
	assert.NotEmpty(t, a.CrossChecks)
}

func TestValidateInvalidMRZ(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Passport).SetCheck(extract.CheckMRZValid, false)

	a := v.Validate(d)

	assert.False(t, a.Valid)
	assert.Equal(t, constants.RiskCritical, a.RiskLevel)
	assert.True(t, a.RequiresManualReview)
	require.Len(t, a.FraudIndicators, 1)
	assert.Equal(t, constants.IndicatorInvalidMRZChecksum, a.FraudIndicators[0].Type)
	assert.Equal(t, constants.SeverityCritical, a.FraudIndicators[0].Severity)
	assert.InDelta(t, 0.70, a.Confidence, 1e-9)
}

func TestValidateMRZAbsentIsNotFraud(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	p := d.Document(constants.Passport)
	p.SetCheck(extract.CheckMRZPresent, false)
	p.SetCheck(extract.CheckMRZValid, false)

	a := v.Validate(d)

	assert.True(t, a.Valid)
	assert.Equal(t, constants.RiskLow, a.RiskLevel)
}

func TestValidateExpiredPassport(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	p := d.Document(constants.Passport)
	p.SetField(extract.FieldExpiryDate, "2026-01-01", 0.9)
	p.SetCheck(extract.CheckExpiryValid, false)

	a := v.Validate(d)

	assert.False(t, a.Valid)
	assert.Equal(t, constants.RiskCritical, a.RiskLevel)
	require.Len(t, a.FraudIndicators, 1)
	assert.Equal(t, constants.IndicatorExpiredPassport, a.FraudIndicators[0].Type)

	var validity *entity.CrossCheckResult
	for i := range a.CrossChecks {
		if a.CrossChecks[i].Name == "date_consistency" {
			validity = &a.CrossChecks[i]
		}
	}
	require.NotNil(t, validity)
	assert.False(t, validity.Passed)
	assert.Contains(t, validity.Issues, "Passport expires before travel date")
	assert.InDelta(t, 0.65, a.Confidence, 1e-9)
}

func TestValidatePassportShortValidity(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	// expires after travel but inside the six-month window
	d.Document(constants.Passport).SetField(extract.FieldExpiryDate, "2026-09-01", 0.9)

	a := v.Validate(d)

	assert.True(t, a.Valid)
	assert.Equal(t, constants.RiskLow, a.RiskLevel)
	assert.Equal(t, 1, a.FailedCrossChecks())

	var issues []string
	for _, c := range a.CrossChecks {
		if c.Name == "date_consistency" {
			issues = c.Issues
		}
	}
	assert.Contains(t, issues, "Passport validity less than 6 months from travel")
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
}

func TestValidateNameMismatch(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.FlightTicket).SetField(extract.FieldPassengerName, "JOHN SMITH", 0.9)

	a := v.Validate(d)

	assert.True(t, a.Valid) // anomaly, not fraud
	assert.Equal(t, constants.RiskLow, a.RiskLevel)
	require.Len(t, a.Anomalies, 1)
	assert.Equal(t, constants.AnomalyNameMismatch, a.Anomalies[0].Type)
	assert.Equal(t, "traveler name differs on: flight_ticket", a.Anomalies[0].Description)
	assert.Equal(t, 1, a.FailedCrossChecks())
	assert.InDelta(t, 0.90, a.Confidence, 1e-9)
}

func TestValidatePartialNameAgainstPassport(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	// ticket carries surname plus one given name only
	d.Document(constants.FlightTicket).SetField(extract.FieldPassengerName, "TESHOME BEKELE", 0.9)

	a := v.Validate(d)

	assert.Empty(t, a.Anomalies)
	assert.Zero(t, a.FailedCrossChecks())
}

func TestValidateVaccinationHolderMismatch(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Vaccination).SetField(extract.FieldHolderName, "KWAME MENSAH", 0.9)

	a := v.Validate(d)

	require.Len(t, a.Anomalies, 1)
	assert.Equal(t, constants.AnomalyNameMismatch, a.Anomalies[0].Type)
	assert.Equal(t, 1, a.FailedCrossChecks())
}

func TestValidateInvalidYellowFever(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	vac := d.Document(constants.Vaccination)
	vac.SetCheck(extract.CheckYellowFeverValid, false)
	vac.SetField(extract.FieldDaysUntilValid, "6", 0.9)

	a := v.Validate(d)

	assert.True(t, a.Valid) // medium risk with no critical indicator stays valid
	assert.Equal(t, constants.RiskMedium, a.RiskLevel)
	require.Len(t, a.FraudIndicators, 1)
	assert.Equal(t, constants.IndicatorInvalidYellowFever, a.FraudIndicators[0].Type)
	assert.Equal(t, constants.SeverityError, a.FraudIndicators[0].Severity)
	assert.Contains(t, a.FraudIndicators[0].Description, "6 day(s)")
	assert.InDelta(t, 0.85, a.Confidence, 1e-9)
}

func TestValidateYellowFeverExemptNationality(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Passport).SetField(extract.FieldNationality, "TUN", 0.9)
	d.Document(constants.Vaccination).SetCheck(extract.CheckYellowFeverValid, false)

	a := v.Validate(d)

	assert.True(t, a.Valid)
	assert.Empty(t, a.FraudIndicators)
}

func TestValidateIncorrectPaymentAmount(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	pay := d.Document(constants.PaymentProof)
	pay.SetField(extract.FieldAmount, "50000", 0.9)
	pay.SetCheck(extract.CheckAmountMatchesExpected, false)

	a := v.Validate(d)

	assert.True(t, a.Valid)
	assert.Equal(t, constants.RiskMedium, a.RiskLevel)
	require.Len(t, a.FraudIndicators, 1)
	assert.Equal(t, constants.IndicatorIncorrectPaymentAmount, a.FraudIndicators[0].Type)
}

func TestValidateErrorPlusAnomalyIsHigh(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Vaccination).SetCheck(extract.CheckYellowFeverValid, false)
	d.Add(doc(constants.Invitation,
		map[string]string{
			extract.FieldInviteeName: "ABEBE BEKELE",
			extract.FieldNotarized:   "false",
		}, nil))

	a := v.Validate(d)

	assert.Equal(t, constants.RiskHigh, a.RiskLevel)
	assert.True(t, a.RequiresManualReview)
	require.Len(t, a.Anomalies, 1)
	assert.Equal(t, constants.AnomalyUnnotarizedInvitation, a.Anomalies[0].Type)
}

func TestValidateStalePayment(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.PaymentProof).SetField(extract.FieldPaymentDate, "2026-01-10", 0.9)

	a := v.Validate(d)

	assert.Equal(t, 1, a.FailedCrossChecks())
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
}

func TestValidateMissingReturnFlight(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	delete(d.Document(constants.FlightTicket).Fields, extract.FieldReturnDate)

	a := v.Validate(d)

	require.Len(t, a.Anomalies, 1)
	assert.Equal(t, constants.AnomalyReturnFlightMissing, a.Anomalies[0].Type)
	assert.Equal(t, 1, a.FailedCrossChecks())
}

func TestValidateLongSejourSkipsReturnFlight(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.VisaType = constants.VisaLongSejour
	delete(d.Document(constants.FlightTicket).Fields, extract.FieldReturnDate)

	a := v.Validate(d)

	for _, c := range a.CrossChecks {
		assert.NotEqual(t, "return_flight", c.Name)
	}
	assert.Empty(t, a.Anomalies)
}

func TestValidateHotelFlightDateGap(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	h := d.Document(constants.Hotel)
	h.SetField(extract.FieldCheckInDate, "2026-06-20", 0.9)

	a := v.Validate(d)

	var gap *entity.CrossCheckResult
	for i := range a.CrossChecks {
		if a.CrossChecks[i].Name == "date_consistency" {
			gap = &a.CrossChecks[i]
		}
	}
	require.NotNil(t, gap)
	assert.False(t, gap.Passed)
}

func TestValidateCheckoutAfterReturnFlight(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Hotel).SetField(extract.FieldCheckOutDate, "2026-07-10", 0.9)

	a := v.Validate(d)

	var order *entity.CrossCheckResult
	for i := range a.CrossChecks {
		if a.CrossChecks[i].Name == "date_consistency" {
			order = &a.CrossChecks[i]
		}
	}
	require.NotNil(t, order)
	assert.False(t, order.Passed)
}

func TestValidateLongStayAnomaly(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	h := d.Document(constants.Hotel)
	h.SetField(extract.FieldNights, "120", 0.9)
	h.SetField(extract.FieldCheckOutDate, "2026-10-13", 0.9)
	d.Document(constants.FlightTicket).SetField(extract.FieldReturnDate, "2026-10-14", 0.9)

	a := v.Validate(d)

	require.NotEmpty(t, a.Anomalies)
	assert.Equal(t, constants.AnomalyLongStay, a.Anomalies[0].Type)
	assert.Contains(t, a.Anomalies[0].Description, "120")
}

func TestValidateUrgentTravel(t *testing.T) {
	v := testValidator()
	d := &entity.Dossier{ID: uuid.New(), VisaType: constants.VisaCourtSejour}
	d.Add(doc(constants.FlightTicket,
		map[string]string{
			extract.FieldDepartureDate: "2026-03-04",
			extract.FieldReturnDate:    "2026-03-20",
		}, nil))

	a := v.Validate(d)

	require.Len(t, a.Anomalies, 1)
	assert.Equal(t, constants.AnomalyUrgentTravel, a.Anomalies[0].Type)
	assert.ElementsMatch(t, []string{"passport", "vaccination", "payment_proof"}, a.MissingDocuments)
}

func TestValidatePassportOnlyDossier(t *testing.T) {
	v := testValidator()
	d := &entity.Dossier{ID: uuid.New(), VisaType: constants.VisaCourtSejour}
	d.Add(coherentDossier().Document(constants.Passport))

	a := v.Validate(d)

	assert.True(t, a.Valid)
	assert.Equal(t, constants.RiskLow, a.RiskLevel)
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
	assert.Empty(t, a.CrossChecks)
	assert.ElementsMatch(t, []string{"flight_ticket", "vaccination", "payment_proof"}, a.MissingDocuments)
}

func TestValidateDeterministic(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Passport).SetCheck(extract.CheckMRZValid, false)
	d.Document(constants.Vaccination).SetCheck(extract.CheckYellowFeverValid, false)

	first := v.Validate(d)
	second := v.Validate(d)

	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.InDelta(t, first.Confidence, second.Confidence, 1e-9)
	assert.Equal(t, len(first.FraudIndicators), len(second.FraudIndicators))
	assert.Equal(t, first.FailedCrossChecks(), second.FailedCrossChecks())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		criticals int
		errors    int
		anomalies int
		want      constants.RiskLevel
	}{
		{"clean", 0, 0, 0, constants.RiskLow},
		{"one anomaly", 0, 0, 1, constants.RiskLow},
		{"two anomalies", 0, 0, 2, constants.RiskMedium},
		{"one error", 0, 1, 0, constants.RiskMedium},
		{"error plus anomaly", 0, 1, 1, constants.RiskHigh},
		{"two errors", 0, 2, 0, constants.RiskHigh},
		{"critical dominates", 1, 0, 0, constants.RiskCritical},
		{"critical with the rest", 2, 3, 4, constants.RiskCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.criticals, tc.errors, tc.anomalies))
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name      string
		criticals int
		errors    int
		anomalies int
		failed    int
		want      float64
	}{
		{"clean", 0, 0, 0, 0, 1.0},
		{"one critical", 1, 0, 0, 0, 0.70},
		{"one error", 0, 1, 0, 0, 0.85},
		{"anomaly and failed check", 0, 0, 1, 1, 0.90},
		{"mixed", 1, 1, 2, 1, 0.40},
		{"clamped at zero", 4, 0, 0, 0, 0.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, confidence(tc.criticals, tc.errors, tc.anomalies, tc.failed), 1e-9)
		})
	}
}

func TestValidateWorkflowRules(t *testing.T) {
	set, err := rules.LoadSet([]byte(`{
		"name": "consulate-abidjan",
		"rules": [
			{
				"id": "NON_XOF_PAYMENT",
				"description": "visa fee paid in a foreign currency",
				"when": {"field": "payment_proof.currency", "op": "!=", "value": "XOF"}
			}
		]
	}`))
	require.NoError(t, err)

	v := NewValidator(Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return coherenceNow },
		Rules:  set,
	})

	a := v.Validate(coherentDossier())
	assert.Empty(t, a.Anomalies, "XOF payment must not match the rule")

	d := coherentDossier()
	d.Document(constants.PaymentProof).SetField(extract.FieldCurrency, "USD", 0.9)
	a = v.Validate(d)
	require.Len(t, a.Anomalies, 1)
	assert.Equal(t, "NON_XOF_PAYMENT", a.Anomalies[0].Type)
	assert.Equal(t, "visa fee paid in a foreign currency", a.Anomalies[0].Description)
	assert.Equal(t, constants.RiskLow, a.RiskLevel)
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
}

func TestValidateDocumentsValidated(t *testing.T) {
	v := testValidator()
	d := coherentDossier()

	a := v.Validate(d)

	require.Contains(t, a.DocumentsValidated, constants.Passport)
	passport := a.DocumentsValidated[constants.Passport]
	assert.False(t, passport.HasRequiredFields)
	assert.Contains(t, passport.MissingFields, extract.FieldPassportNumber)

	d.Document(constants.Passport).SetField(extract.FieldPassportNumber, "EP1234567", 0.95)
	a = v.Validate(d)
	assert.True(t, a.DocumentsValidated[constants.Passport].HasRequiredFields)
	assert.Empty(t, a.DocumentsValidated[constants.Passport].MissingFields)
}

func TestValidateRecommendations(t *testing.T) {
	v := testValidator()
	d := coherentDossier()

	a := v.Validate(d)
	assert.Empty(t, a.Recommendations, "a coherent dossier needs no follow-up")

	d.Document(constants.Passport).SetCheck(extract.CheckMRZValid, false)
	d.Document(constants.FlightTicket).SetField(extract.FieldPassengerName, "JOHN SMITH", 0.9)
	a = v.Validate(d)

	require.NotEmpty(t, a.Recommendations)
	// indicators come first, then cross-check issues, then anomalies
	assert.Contains(t, a.Recommendations[0], constants.IndicatorInvalidMRZChecksum)
	joined := strings.Join(a.Recommendations, "\n")
	assert.Contains(t, joined, "does not match")
	assert.Contains(t, joined, constants.AnomalyNameMismatch)
}

func TestValidateAssessmentIdempotent(t *testing.T) {
	id := uuid.MustParse("7a1d3f4e-9b2c-4d5e-8f60-112233445566")
	v := NewValidator(Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return coherenceNow },
		NewID:  func() uuid.UUID { return id },
	})
	d := coherentDossier()
	d.Document(constants.Passport).SetCheck(extract.CheckMRZValid, false)
	d.Document(constants.Vaccination).SetField(extract.FieldHolderName, "KWAME MENSAH", 0.9)

	first, err := json.Marshal(v.Validate(d))
	require.NoError(t, err)
	second, err := json.Marshal(v.Validate(d))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidateTransitStayTooLong(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.VisaType = constants.VisaTransit

	a := v.Validate(d)

	var dates *entity.CrossCheckResult
	for i := range a.CrossChecks {
		if a.CrossChecks[i].Name == "date_consistency" {
			dates = &a.CrossChecks[i]
		}
	}
	require.NotNil(t, dates)
	assert.False(t, dates.Passed)
	assert.Contains(t, strings.Join(dates.Issues, "\n"), "7-day maximum")
}

func TestValidateDiplomaticPassportNeedsVerbalNote(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	d.Document(constants.Passport).SetField(extract.FieldPassportType,
		string(constants.PassportDiplomatique), 0.75)

	a := v.Validate(d)
	assert.Contains(t, a.MissingDocuments, "verbal_note")

	d.Add(doc(constants.VerbalNote,
		map[string]string{
			extract.FieldSendingEntity: "FEDERAL DEMOCRATIC REPUBLIC OF ETHIOPIA",
			extract.FieldDiplomatName:  "ABEBE BEKELE",
			extract.FieldNoteDate:      "2026-02-15",
		}, nil))
	a = v.Validate(d)
	assert.NotContains(t, a.MissingDocuments, "verbal_note")
}

func TestValidateResidenceCardRequiredOutsideJurisdiction(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	p := d.Document(constants.Passport)
	p.SetField(extract.FieldNationality, "KEN", 0.9)
	p.SetCheck(extract.CheckInJurisdiction, false)

	a := v.Validate(d)
	assert.Contains(t, a.MissingDocuments, "residence_card")
}

func TestValidateInitialsOnTicket(t *testing.T) {
	v := testValidator()
	d := coherentDossier()
	// airlines shorten given names to initials
	d.Document(constants.FlightTicket).SetField(extract.FieldPassengerName, "A T BEKELE", 0.9)

	a := v.Validate(d)

	assert.Empty(t, a.Anomalies)
	assert.Zero(t, a.FailedCrossChecks())
}
