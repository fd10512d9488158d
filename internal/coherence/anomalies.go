package coherence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/rules"
)

// detectAnomalies flags unusual travel patterns. NAME_MISMATCH and
// RETURN_FLIGHT_MISSING are raised by the cross-checks; everything else
// lives here.
func (v *Validator) detectAnomalies(d *entity.Dossier, a *entity.RiskAssessment) {
	if nights := v.stayNights(d); nights > v.opts.LongStayNights {
		a.Anomalies = append(a.Anomalies, entity.Anomaly{
			Type:        constants.AnomalyLongStay,
			Description: fmt.Sprintf("planned stay of %d nights exceeds %d", nights, v.opts.LongStayNights),
		})
	}

	if f := d.Document(constants.FlightTicket); f != nil {
		dep := parseISO(f.Field(extract.FieldDepartureDate))
		if !dep.IsZero() {
			now := v.opts.Now()
			until := dep.Sub(now)
			if until >= 0 && until <= time.Duration(v.opts.UrgentTravelDays)*24*time.Hour {
				a.Anomalies = append(a.Anomalies, entity.Anomaly{
					Type: constants.AnomalyUrgentTravel,
					Description: fmt.Sprintf("departure on %s is within %d day(s)",
						dep.Format("2006-01-02"), v.opts.UrgentTravelDays),
				})
			}
		}
	}

	if inv := d.Document(constants.Invitation); inv != nil {
		if inv.Field(extract.FieldNotarized) == "false" {
			a.Anomalies = append(a.Anomalies, entity.Anomaly{
				Type:        constants.AnomalyUnnotarizedInvitation,
				Description: "invitation letter is not notarized",
			})
		}
	}
}

// applyRules evaluates the optional workflow rule set over the flattened
// dossier. A matching rule surfaces as an anomaly named after the rule.
func (v *Validator) applyRules(d *entity.Dossier, a *entity.RiskAssessment) {
	if v.opts.Rules == nil {
		return
	}
	ctx := rules.BuildContext(d)
	for _, r := range v.opts.Rules.Matching(ctx) {
		desc := r.Description
		if desc == "" {
			desc = fmt.Sprintf("rule %s matched", r.ID)
		}
		a.Anomalies = append(a.Anomalies, entity.Anomaly{Type: r.ID, Description: desc})
		v.log.Info("rule matched", "dossier_id", d.ID, "rule", r.ID, "set", v.opts.Rules.Name)
	}
}

// stayNights is the hotel nights when booked, the flight round-trip span
// otherwise. Zero when neither is known.
func (v *Validator) stayNights(d *entity.Dossier) int {
	if h := d.Document(constants.Hotel); h != nil {
		if n, err := strconv.Atoi(h.Field(extract.FieldNights)); err == nil && n > 0 {
			return n
		}
	}
	if f := d.Document(constants.FlightTicket); f != nil {
		dep := parseISO(f.Field(extract.FieldDepartureDate))
		ret := parseISO(f.Field(extract.FieldReturnDate))
		if !dep.IsZero() && !ret.IsZero() && ret.After(dep) {
			return daysBetween(dep, ret)
		}
	}
	return 0
}
