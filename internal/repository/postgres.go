package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/common"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id                     UUID PRIMARY KEY,
	dossier_id             UUID NOT NULL,
	valid                  BOOLEAN NOT NULL,
	risk_level             TEXT NOT NULL,
	confidence             DOUBLE PRECISION NOT NULL,
	requires_manual_review BOOLEAN NOT NULL,
	fraud_indicators       JSONB NOT NULL DEFAULT '[]',
	anomalies              JSONB NOT NULL DEFAULT '[]',
	cross_checks           JSONB NOT NULL DEFAULT '[]',
	documents_validated    JSONB NOT NULL DEFAULT '{}',
	recommendations        JSONB NOT NULL DEFAULT '[]',
	missing_documents      JSONB NOT NULL DEFAULT '[]',
	assessed_at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS assessments_risk_level_idx ON assessments (risk_level, assessed_at DESC);
`

type pgAssessmentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresAssessmentRepository bootstraps the schema and returns the
// Postgres-backed store.
func NewPostgresAssessmentRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (AssessmentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("bootstrap assessments schema: %w", err)
	}
	return &pgAssessmentRepository{pool: pool, logger: logger}, nil
}

func (r *pgAssessmentRepository) Save(ctx context.Context, a *entity.RiskAssessment) error {
	row, err := marshalFindings(a)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO assessments (
			id, dossier_id, valid, risk_level, confidence, requires_manual_review,
			fraud_indicators, anomalies, cross_checks, documents_validated,
			recommendations, missing_documents, assessed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			valid = EXCLUDED.valid,
			risk_level = EXCLUDED.risk_level,
			confidence = EXCLUDED.confidence,
			requires_manual_review = EXCLUDED.requires_manual_review,
			fraud_indicators = EXCLUDED.fraud_indicators,
			anomalies = EXCLUDED.anomalies,
			cross_checks = EXCLUDED.cross_checks,
			documents_validated = EXCLUDED.documents_validated,
			recommendations = EXCLUDED.recommendations,
			missing_documents = EXCLUDED.missing_documents,
			assessed_at = EXCLUDED.assessed_at`,
		a.ID, a.DossierID, a.Valid, string(a.RiskLevel), a.Confidence, a.RequiresManualReview,
		row.fraudIndicators, row.anomalies, row.crossChecks, row.documentsValidated,
		row.recommendations, row.missingDocuments, a.AssessedAt,
	)
	if err != nil {
		r.logger.Error("failed to save assessment", "assessment_id", a.ID, "error", err)
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

func (r *pgAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RiskAssessment, error) {
	a := &entity.RiskAssessment{}
	var row assessmentRow
	var level string
	err := r.pool.QueryRow(ctx, `
		SELECT id, dossier_id, valid, risk_level, confidence, requires_manual_review,
			fraud_indicators, anomalies, cross_checks, documents_validated,
			recommendations, missing_documents, assessed_at
		FROM assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.DossierID, &a.Valid, &level, &a.Confidence, &a.RequiresManualReview,
		&row.fraudIndicators, &row.anomalies, &row.crossChecks, &row.documentsValidated,
		&row.recommendations, &row.missingDocuments, &a.AssessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	a.RiskLevel = constants.RiskLevel(level)
	if err := unmarshalFindings(row, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAssessmentRepository) ListByRiskLevel(ctx context.Context, level constants.RiskLevel, limit int) ([]*entity.RiskAssessment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, dossier_id, valid, risk_level, confidence, requires_manual_review,
			fraud_indicators, anomalies, cross_checks, documents_validated,
			recommendations, missing_documents, assessed_at
		FROM assessments WHERE risk_level = $1
		ORDER BY assessed_at DESC LIMIT $2`, string(level), limit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []*entity.RiskAssessment
	for rows.Next() {
		a := &entity.RiskAssessment{}
		var row assessmentRow
		var lvl string
		if err := rows.Scan(&a.ID, &a.DossierID, &a.Valid, &lvl, &a.Confidence, &a.RequiresManualReview,
			&row.fraudIndicators, &row.anomalies, &row.crossChecks, &row.documentsValidated,
			&row.recommendations, &row.missingDocuments, &a.AssessedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.RiskLevel = constants.RiskLevel(lvl)
		if err := unmarshalFindings(row, a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
