package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/common"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id                     TEXT PRIMARY KEY,
	dossier_id             TEXT NOT NULL,
	valid                  INTEGER NOT NULL,
	risk_level             TEXT NOT NULL,
	confidence             REAL NOT NULL,
	requires_manual_review INTEGER NOT NULL,
	fraud_indicators       TEXT NOT NULL DEFAULT '[]',
	anomalies              TEXT NOT NULL DEFAULT '[]',
	cross_checks           TEXT NOT NULL DEFAULT '[]',
	documents_validated    TEXT NOT NULL DEFAULT '{}',
	recommendations        TEXT NOT NULL DEFAULT '[]',
	missing_documents      TEXT NOT NULL DEFAULT '[]',
	assessed_at            TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS assessments_risk_level_idx ON assessments (risk_level, assessed_at DESC);
`

type sqliteAssessmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) a SQLite database at path and bootstraps the
// schema. Used for local and offline review work where no Postgres runs.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (AssessmentRepository, *sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids lock errors
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	logger.Info("sqlite assessment store ready", "path", path)
	return &sqliteAssessmentRepository{db: db, logger: logger}, db, nil
}

func (r *sqliteAssessmentRepository) Save(ctx context.Context, a *entity.RiskAssessment) error {
	row, err := marshalFindings(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, dossier_id, valid, risk_level, confidence, requires_manual_review,
			fraud_indicators, anomalies, cross_checks, documents_validated,
			recommendations, missing_documents, assessed_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET
			valid = excluded.valid,
			risk_level = excluded.risk_level,
			confidence = excluded.confidence,
			requires_manual_review = excluded.requires_manual_review,
			fraud_indicators = excluded.fraud_indicators,
			anomalies = excluded.anomalies,
			cross_checks = excluded.cross_checks,
			documents_validated = excluded.documents_validated,
			recommendations = excluded.recommendations,
			missing_documents = excluded.missing_documents,
			assessed_at = excluded.assessed_at`,
		a.ID.String(), a.DossierID.String(), a.Valid, string(a.RiskLevel), a.Confidence, a.RequiresManualReview,
		string(row.fraudIndicators), string(row.anomalies), string(row.crossChecks),
		string(row.documentsValidated), string(row.recommendations), string(row.missingDocuments),
		a.AssessedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.Error("failed to save assessment", "assessment_id", a.ID, "error", err)
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

func (r *sqliteAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RiskAssessment, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, dossier_id, valid, risk_level, confidence, requires_manual_review,
			fraud_indicators, anomalies, cross_checks, documents_validated,
			recommendations, missing_documents, assessed_at
		FROM assessments WHERE id = ?`, id.String()))
}

func (r *sqliteAssessmentRepository) ListByRiskLevel(ctx context.Context, level constants.RiskLevel, limit int) ([]*entity.RiskAssessment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dossier_id, valid, risk_level, confidence, requires_manual_review,
			fraud_indicators, anomalies, cross_checks, documents_validated,
			recommendations, missing_documents, assessed_at
		FROM assessments WHERE risk_level = ?
		ORDER BY assessed_at DESC LIMIT ?`, string(level), limit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []*entity.RiskAssessment
	for rows.Next() {
		a, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *sqliteAssessmentRepository) scanOne(row *sql.Row) (*entity.RiskAssessment, error) {
	a, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return a, err
}

func (r *sqliteAssessmentRepository) scanRow(s rowScanner) (*entity.RiskAssessment, error) {
	a := &entity.RiskAssessment{}
	var row assessmentRow
	var id, dossierID, level, assessedAt string
	var fraud, anomalies, checks, validated, recs, missing string
	if err := s.Scan(&id, &dossierID, &a.Valid, &level, &a.Confidence, &a.RequiresManualReview,
		&fraud, &anomalies, &checks, &validated, &recs, &missing, &assessedAt); err != nil {
		return nil, err
	}

	var err error
	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse assessment id: %w", err)
	}
	if a.DossierID, err = uuid.Parse(dossierID); err != nil {
		return nil, fmt.Errorf("parse dossier id: %w", err)
	}
	if a.AssessedAt, err = time.Parse(time.RFC3339Nano, assessedAt); err != nil {
		return nil, fmt.Errorf("parse assessed_at: %w", err)
	}
	a.RiskLevel = constants.RiskLevel(level)

	row.fraudIndicators = []byte(fraud)
	row.anomalies = []byte(anomalies)
	row.crossChecks = []byte(checks)
	row.documentsValidated = []byte(validated)
	row.recommendations = []byte(recs)
	row.missingDocuments = []byte(missing)
	if err := unmarshalFindings(row, a); err != nil {
		return nil, err
	}
	return a, nil
}
