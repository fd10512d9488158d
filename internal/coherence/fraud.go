package coherence

import (
	"fmt"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

// detectFraud flags the hard per-document inconsistencies.
func (v *Validator) detectFraud(d *entity.Dossier, a *entity.RiskAssessment) {
	add := func(indicatorType string, severity constants.Severity, doc constants.DocumentType, desc string) {
		a.FraudIndicators = append(a.FraudIndicators, entity.FraudIndicator{
			Type:        indicatorType,
			Severity:    severity,
			Weight:      constants.IndicatorWeights[indicatorType],
			Document:    string(doc),
			Description: desc,
		})
	}

	if p := d.Document(constants.Passport); p != nil {
		if p.Check(extract.CheckMRZPresent) && !p.Check(extract.CheckMRZValid) {
			add(constants.IndicatorInvalidMRZChecksum, constants.SeverityCritical, constants.Passport,
				"machine readable zone check digits do not verify")
		}
		if p.Field(extract.FieldExpiryDate) != "" && !p.Check(extract.CheckExpiryValid) {
			add(constants.IndicatorExpiredPassport, constants.SeverityCritical, constants.Passport,
				fmt.Sprintf("passport expired on %s", p.Field(extract.FieldExpiryDate)))
		}
	}

	if vac := d.Document(constants.Vaccination); vac != nil && !v.yellowFeverExempt(d) {
		if !vac.Check(extract.CheckYellowFeverValid) {
			desc := "no valid yellow fever vaccination"
			if days := vac.Field(extract.FieldDaysUntilValid); days != "" {
				desc = fmt.Sprintf("yellow fever vaccination becomes effective in %s day(s)", days)
			}
			add(constants.IndicatorInvalidYellowFever, constants.SeverityError, constants.Vaccination, desc)
		}
	}

	if pay := d.Document(constants.PaymentProof); pay != nil {
		if pay.Field(extract.FieldAmount) != "" && !pay.Check(extract.CheckAmountMatchesExpected) {
			add(constants.IndicatorIncorrectPaymentAmount, constants.SeverityError, constants.PaymentProof,
				fmt.Sprintf("paid %s %s, which does not match the fee for %s",
					pay.Field(extract.FieldAmount), pay.Field(extract.FieldCurrency), d.VisaType))
		}
	}
}

// yellowFeverExempt: applicants from exempt countries do not need the shot.
func (v *Validator) yellowFeverExempt(d *entity.Dossier) bool {
	p := d.Document(constants.Passport)
	if p == nil {
		return false
	}
	nat := textnorm.NormalizeName(p.Field(extract.FieldNationality))
	_, ok := constants.YellowFeverExemptCountries[nat]
	return ok
}

func countIndicators(indicators []entity.FraudIndicator) (criticals, errors int) {
	for _, ind := range indicators {
		switch ind.Severity {
		case constants.SeverityCritical:
			criticals++
		case constants.SeverityError:
			errors++
		}
	}
	return criticals, errors
}
