package coherence

import (
	"fmt"
	"strings"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/textnorm"
)

// runCrossChecks executes every applicable cross-document check. Checks
// whose inputs are absent are skipped, not failed.
func (v *Validator) runCrossChecks(d *entity.Dossier, a *entity.RiskAssessment) {
	for _, check := range []func(*entity.Dossier, *entity.RiskAssessment) *entity.CrossCheckResult{
		v.checkNameConsistency,
		v.checkDateConsistency,
		v.checkReturnFlight,
		v.checkPaymentRecency,
	} {
		if r := check(d, a); r != nil {
			a.CrossChecks = append(a.CrossChecks, *r)
			v.log.Debug("cross-check", "name", r.Name, "passed", r.Passed, "issues", r.Issues)
		}
	}
}

// checkNameConsistency compares the traveler name on every document that
// carries one against the passport. Without a passport the first name found
// becomes the reference instead.
func (v *Validator) checkNameConsistency(d *entity.Dossier, a *entity.RiskAssessment) *entity.CrossCheckResult {
	type named struct {
		doc  constants.DocumentType
		name string
	}
	var names []named
	if p := d.Document(constants.Passport); p != nil {
		full := strings.TrimSpace(p.Field(extract.FieldGivenNames) + " " + p.Field(extract.FieldSurname))
		if full != "" {
			names = append(names, named{constants.Passport, full})
		}
	}
	for _, src := range []struct {
		doc   constants.DocumentType
		field string
	}{
		{constants.FlightTicket, extract.FieldPassengerName},
		{constants.Hotel, extract.FieldGuestName},
		{constants.Invitation, extract.FieldInviteeName},
		{constants.Vaccination, extract.FieldHolderName},
		{constants.ResidenceCard, extract.FieldHolderName},
		{constants.VerbalNote, extract.FieldDiplomatName},
	} {
		if doc := d.Document(src.doc); doc != nil && doc.Field(src.field) != "" {
			names = append(names, named{src.doc, doc.Field(src.field)})
		}
	}
	if len(names) < 2 {
		return nil
	}

	result := &entity.CrossCheckResult{Name: "name_consistency", Passed: true}
	var mismatched []string

	// passport first in the slice makes it the reference when present
	ref := names[0]
	for _, n := range names[1:] {
		if v.namesAgree(ref.name, n.name) {
			continue
		}
		result.Passed = false
		mismatched = append(mismatched, string(n.doc))
		result.Issues = append(result.Issues,
			fmt.Sprintf("name on %s (%s) does not match %s (%s)", n.doc, n.name, ref.doc, ref.name))
	}

	if len(mismatched) > 0 {
		a.Anomalies = append(a.Anomalies, entity.Anomaly{
			Type:        constants.AnomalyNameMismatch,
			Description: "traveler name differs on: " + strings.Join(mismatched, ", "),
		})
	}
	return result
}

// namesAgree accepts a full match, or a partial name completed by the
// reference: at least half of its parts must appear in the reference. A
// single-letter part is an initial and matches any reference word starting
// with it, the way airlines abbreviate middle names.
func (v *Validator) namesAgree(ref, name string) bool {
	if textnorm.NamesMatch(ref, name, v.opts.NameSimilarity) {
		return true
	}
	refParts := strings.Fields(textnorm.NormalizeName(ref))
	parts := strings.Fields(textnorm.NormalizeName(name))
	if len(parts) == 0 || len(refParts) == 0 {
		return false
	}
	refInitials := textnorm.Initials(ref)
	matched := 0
	for _, part := range parts {
		if len(part) == 1 && strings.ContainsRune(refInitials, rune(part[0])) {
			matched++
			continue
		}
		for _, rp := range refParts {
			if part == rp || textnorm.Similarity(part, rp) >= v.opts.NameSimilarity {
				matched++
				break
			}
		}
	}
	return float64(matched)/float64(len(parts)) >= 0.5
}

// checkDateConsistency runs every timeline comparison the dossier allows:
// passport expiry against the travel date, hotel check-in against the
// flight arrival, check-out ordering, and the planned stay against the
// visa's maximum. Returns nil when no comparison had its inputs.
func (v *Validator) checkDateConsistency(d *entity.Dossier, _ *entity.RiskAssessment) *entity.CrossCheckResult {
	result := &entity.CrossCheckResult{Name: "date_consistency", Passed: true}
	ran := false
	fail := func(issue string) {
		result.Passed = false
		result.Issues = append(result.Issues, issue)
	}

	travel := v.travelDate(d)
	if p := d.Document(constants.Passport); p != nil {
		expiry := parseISO(p.Field(extract.FieldExpiryDate))
		if !expiry.IsZero() && !travel.IsZero() {
			ran = true
			switch {
			case !expiry.After(travel):
				fail("Passport expires before travel date")
			case expiry.Before(travel.AddDate(0, 6, 0)):
				fail("Passport validity less than 6 months from travel")
			}
			result.Details = fmt.Sprintf("expiry %s, travel %s",
				expiry.Format("2006-01-02"), travel.Format("2006-01-02"))
		}
	}

	h := d.Document(constants.Hotel)
	f := d.Document(constants.FlightTicket)
	if h != nil && f != nil {
		checkIn := parseISO(h.Field(extract.FieldCheckInDate))
		arrival := arrivalDate(f)
		if !checkIn.IsZero() && !arrival.IsZero() {
			ran = true
			if diff := daysApart(checkIn, arrival); diff > v.opts.HotelToleranceDays {
				fail(fmt.Sprintf("hotel check-in %s is %d day(s) from flight arrival %s",
					checkIn.Format("2006-01-02"), diff, arrival.Format("2006-01-02")))
			}
		}
	}

	if h != nil {
		checkIn := parseISO(h.Field(extract.FieldCheckInDate))
		checkOut := parseISO(h.Field(extract.FieldCheckOutDate))
		if !checkIn.IsZero() && !checkOut.IsZero() {
			ran = true
			if !checkOut.After(checkIn) {
				fail("hotel check-out is not after check-in")
			}
			if f != nil {
				if ret := parseISO(f.Field(extract.FieldReturnDate)); !ret.IsZero() {
					if daysBetween(ret, checkOut) > v.opts.HotelToleranceDays {
						fail(fmt.Sprintf("hotel check-out %s is after the return flight on %s",
							checkOut.Format("2006-01-02"), ret.Format("2006-01-02")))
					}
				}
			}
		}
	}

	if maxStay := v.opts.MaxStayDays[d.VisaType]; maxStay > 0 {
		if nights := v.stayNights(d); nights > 0 {
			ran = true
			if nights > maxStay {
				fail(fmt.Sprintf("planned stay of %d nights exceeds the %d-day maximum for %s",
					nights, maxStay, d.VisaType))
			}
		}
	}

	if !ran {
		return nil
	}
	return result
}

// travelDate is the flight departure when known, the hotel check-in
// otherwise.
func (v *Validator) travelDate(d *entity.Dossier) time.Time {
	if f := d.Document(constants.FlightTicket); f != nil {
		if t := parseISO(f.Field(extract.FieldDepartureDate)); !t.IsZero() {
			return t
		}
	}
	if h := d.Document(constants.Hotel); h != nil {
		if t := parseISO(h.Field(extract.FieldCheckInDate)); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// arrivalDate is the flight arrival when stated, the departure otherwise
// (same-day arrival on the routes served).
func arrivalDate(f *entity.Document) time.Time {
	if t := parseISO(f.Field(extract.FieldArrivalDate)); !t.IsZero() {
		return t
	}
	return parseISO(f.Field(extract.FieldDepartureDate))
}

// checkReturnFlight expects a return leg for every stay that is not a long
// one.
func (v *Validator) checkReturnFlight(d *entity.Dossier, a *entity.RiskAssessment) *entity.CrossCheckResult {
	f := d.Document(constants.FlightTicket)
	if f == nil || d.VisaType == constants.VisaLongSejour {
		return nil
	}

	result := &entity.CrossCheckResult{Name: "return_flight", Passed: true}
	if f.Field(extract.FieldReturnDate) == "" {
		result.Passed = false
		result.Issues = append(result.Issues, "no return flight on a short-stay dossier")
		a.Anomalies = append(a.Anomalies, entity.Anomaly{
			Type:        constants.AnomalyReturnFlightMissing,
			Description: "flight ticket has no return leg",
		})
	}
	return result
}

// checkPaymentRecency expects the fee paid within the validity window.
func (v *Validator) checkPaymentRecency(d *entity.Dossier, _ *entity.RiskAssessment) *entity.CrossCheckResult {
	pay := d.Document(constants.PaymentProof)
	if pay == nil {
		return nil
	}
	paid := parseISO(pay.Field(extract.FieldPaymentDate))
	if paid.IsZero() {
		return nil
	}

	result := &entity.CrossCheckResult{Name: "payment_recency", Passed: true}
	age := v.opts.Now().Sub(paid)
	if age < 0 || age > time.Duration(v.opts.PaymentValidityDays)*24*time.Hour {
		result.Passed = false
		result.Issues = append(result.Issues,
			fmt.Sprintf("payment dated %s is outside the %d-day validity window",
				paid.Format("2006-01-02"), v.opts.PaymentValidityDays))
	}
	return result
}

// daysApart is the absolute difference in whole days.
func daysApart(a, b time.Time) int {
	d := daysBetween(a, b)
	if d < 0 {
		return -d
	}
	return d
}

// daysBetween is b minus a in whole days.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
