package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// AssessmentRepository stores and retrieves dossier risk assessments.
type AssessmentRepository interface {
	Save(ctx context.Context, a *entity.RiskAssessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.RiskAssessment, error)
	ListByRiskLevel(ctx context.Context, level constants.RiskLevel, limit int) ([]*entity.RiskAssessment, error)
}

// assessmentRow is the flat persisted shape shared by both backends. The
// structured findings travel as JSON columns.
type assessmentRow struct {
	fraudIndicators    []byte
	anomalies          []byte
	crossChecks        []byte
	documentsValidated []byte
	recommendations    []byte
	missingDocuments   []byte
}

func marshalFindings(a *entity.RiskAssessment) (assessmentRow, error) {
	var row assessmentRow
	var err error
	if row.fraudIndicators, err = json.Marshal(a.FraudIndicators); err != nil {
		return row, fmt.Errorf("marshal fraud indicators: %w", err)
	}
	if row.anomalies, err = json.Marshal(a.Anomalies); err != nil {
		return row, fmt.Errorf("marshal anomalies: %w", err)
	}
	if row.crossChecks, err = json.Marshal(a.CrossChecks); err != nil {
		return row, fmt.Errorf("marshal cross checks: %w", err)
	}
	if row.documentsValidated, err = json.Marshal(a.DocumentsValidated); err != nil {
		return row, fmt.Errorf("marshal documents validated: %w", err)
	}
	if row.recommendations, err = json.Marshal(a.Recommendations); err != nil {
		return row, fmt.Errorf("marshal recommendations: %w", err)
	}
	if row.missingDocuments, err = json.Marshal(a.MissingDocuments); err != nil {
		return row, fmt.Errorf("marshal missing documents: %w", err)
	}
	return row, nil
}

func unmarshalFindings(row assessmentRow, a *entity.RiskAssessment) error {
	if err := json.Unmarshal(row.fraudIndicators, &a.FraudIndicators); err != nil {
		return fmt.Errorf("unmarshal fraud indicators: %w", err)
	}
	if err := json.Unmarshal(row.anomalies, &a.Anomalies); err != nil {
		return fmt.Errorf("unmarshal anomalies: %w", err)
	}
	if err := json.Unmarshal(row.crossChecks, &a.CrossChecks); err != nil {
		return fmt.Errorf("unmarshal cross checks: %w", err)
	}
	if err := json.Unmarshal(row.documentsValidated, &a.DocumentsValidated); err != nil {
		return fmt.Errorf("unmarshal documents validated: %w", err)
	}
	if err := json.Unmarshal(row.recommendations, &a.Recommendations); err != nil {
		return fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if err := json.Unmarshal(row.missingDocuments, &a.MissingDocuments); err != nil {
		return fmt.Errorf("unmarshal missing documents: %w", err)
	}
	return nil
}
