package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/common"
	"github.com/kodjo-amani/dossier-check/internal/entity"
)

func openTestRepo(t *testing.T) AssessmentRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "assessments.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repo
}

func sampleAssessment() *entity.RiskAssessment {
	return &entity.RiskAssessment{
		ID:                   uuid.New(),
		DossierID:            uuid.New(),
		Valid:                false,
		RiskLevel:            constants.RiskHigh,
		Confidence:           0.55,
		RequiresManualReview: true,
		FraudIndicators: []entity.FraudIndicator{{
			Type:        constants.IndicatorInvalidYellowFever,
			Severity:    constants.SeverityError,
			Weight:      2,
			Document:    "vaccination",
			Description: "no valid yellow fever vaccination",
		}},
		Anomalies: []entity.Anomaly{{
			Type:        constants.AnomalyUrgentTravel,
			Description: "departure within 5 day(s)",
		}},
		CrossChecks: []entity.CrossCheckResult{{
			Name:   "date_consistency",
			Passed: true,
		}},
		DocumentsValidated: map[constants.DocumentType]entity.DocumentValidation{
			constants.Vaccination: {HasRequiredFields: false, MissingFields: []string{"vaccine_type"}},
		},
		Recommendations:  []string{"INVALID_YELLOW_FEVER: no valid yellow fever vaccination"},
		MissingDocuments: []string{"hotel_reservation"},
		AssessedAt:       time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteSaveAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	a := sampleAssessment()

	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.DossierID, got.DossierID)
	assert.Equal(t, a.RiskLevel, got.RiskLevel)
	assert.InDelta(t, a.Confidence, got.Confidence, 1e-9)
	assert.Equal(t, a.FraudIndicators, got.FraudIndicators)
	assert.Equal(t, a.Anomalies, got.Anomalies)
	assert.Equal(t, a.CrossChecks, got.CrossChecks)
	assert.Equal(t, a.DocumentsValidated, got.DocumentsValidated)
	assert.Equal(t, a.Recommendations, got.Recommendations)
	assert.Equal(t, a.MissingDocuments, got.MissingDocuments)
	assert.True(t, a.AssessedAt.Equal(got.AssessedAt))
}

func TestSQLiteSaveIsUpsert(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	a := sampleAssessment()

	require.NoError(t, repo.Save(ctx, a))
	a.RiskLevel = constants.RiskCritical
	a.Confidence = 0.10
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RiskCritical, got.RiskLevel)
	assert.InDelta(t, 0.10, got.Confidence, 1e-9)
}

func TestSQLiteGetMissing(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteListByRiskLevel(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	high := sampleAssessment()
	require.NoError(t, repo.Save(ctx, high))

	low := sampleAssessment()
	low.ID = uuid.New()
	low.RiskLevel = constants.RiskLow
	require.NoError(t, repo.Save(ctx, low))

	got, err := repo.ListByRiskLevel(ctx, constants.RiskHigh, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, high.ID, got[0].ID)

	none, err := repo.ListByRiskLevel(ctx, constants.RiskMedium, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
