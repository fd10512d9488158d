package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/kodjo-amani/dossier-check/constants"
)

// FraudIndicator flags a hard inconsistency inside a single document.
type FraudIndicator struct {
	Type        string             `json:"type"`
	Severity    constants.Severity `json:"severity"`
	Weight      float64            `json:"weight"`
	Document    string             `json:"document"`
	Description string             `json:"description"`
}

// Anomaly flags an unusual but not necessarily fraudulent pattern.
type Anomaly struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// CrossCheckResult is the outcome of one cross-document consistency check.
type CrossCheckResult struct {
	Name    string   `json:"name"`
	Passed  bool     `json:"passed"`
	Issues  []string `json:"issues,omitempty"`
	Details string   `json:"details,omitempty"`
}

// DocumentValidation reports field completeness for one submitted document.
type DocumentValidation struct {
	HasRequiredFields bool     `json:"has_required_fields"`
	MissingFields     []string `json:"missing_fields,omitempty"`
}

// RiskAssessment is the final verdict over a dossier.
type RiskAssessment struct {
	ID                   uuid.UUID                                     `json:"id"`
	DossierID            uuid.UUID                                     `json:"dossier_id"`
	Valid                bool                                          `json:"valid"`
	RiskLevel            constants.RiskLevel                           `json:"risk_level"`
	Confidence           float64                                       `json:"confidence"`
	RequiresManualReview bool                                          `json:"requires_manual_review"`
	FraudIndicators      []FraudIndicator                              `json:"fraud_indicators"`
	Anomalies            []Anomaly                                     `json:"anomalies"`
	CrossChecks          []CrossCheckResult                            `json:"cross_checks"`
	DocumentsValidated   map[constants.DocumentType]DocumentValidation `json:"documents_validated"`
	Recommendations      []string                                      `json:"recommendations"`
	MissingDocuments     []string                                      `json:"missing_documents,omitempty"`
	AssessedAt           time.Time                                     `json:"assessed_at"`
}

// FailedCrossChecks counts cross-checks that did not pass.
func (a *RiskAssessment) FailedCrossChecks() int {
	n := 0
	for _, c := range a.CrossChecks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// CrossCheckIssues counts the individual issue strings across all
// cross-checks.
func (a *RiskAssessment) CrossCheckIssues() int {
	n := 0
	for _, c := range a.CrossChecks {
		n += len(c.Issues)
	}
	return n
}
