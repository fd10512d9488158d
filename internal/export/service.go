// Package export produces XLSX reports over risk assessments for consular
// review queues.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kodjo-amani/dossier-check/internal/entity"
)

// Service produces XLSX bytes for assessment exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportAssessmentsXLSX returns an XLSX workbook (as bytes) with one summary
// row per assessment and a second sheet listing every finding.
func (s *Service) ExportAssessmentsXLSX(assessments []*entity.RiskAssessment) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Assessments"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Assessed At",
		"Dossier ID",
		"Risk Level",
		"Valid",
		"Confidence",
		"Manual Review",
		"Fraud Indicators",
		"Anomalies",
		"Failed Cross-Checks",
		"Missing Documents",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, a := range assessments {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, a.AssessedAt.UTC().Format("2006-01-02 15:04"))
		write(2, a.DossierID.String())
		write(3, string(a.RiskLevel))
		write(4, a.Valid)
		write(5, fmt.Sprintf("%.2f", a.Confidence))
		write(6, a.RequiresManualReview)
		write(7, len(a.FraudIndicators))
		write(8, len(a.Anomalies))
		write(9, a.FailedCrossChecks())
		write(10, strings.Join(a.MissingDocuments, ", "))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 38)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "F", 14)
	_ = f.SetColWidth(sheet, "G", "I", 18)
	_ = f.SetColWidth(sheet, "J", "J", 40)

	if err := s.writeFindings(f, assessments); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(assessments),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// writeFindings adds a sheet with one row per fraud indicator, anomaly and
// failed cross-check across all exported assessments.
func (s *Service) writeFindings(f *excelize.File, assessments []*entity.RiskAssessment) error {
	const sheet = "Findings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Dossier ID", "Kind", "Type", "Severity", "Document", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, a := range assessments {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		for _, ind := range a.FraudIndicators {
			write(1, a.DossierID.String())
			write(2, "fraud_indicator")
			write(3, ind.Type)
			write(4, string(ind.Severity))
			write(5, ind.Document)
			write(6, truncate(ind.Description, 140))
			row++
		}
		for _, an := range a.Anomalies {
			write(1, a.DossierID.String())
			write(2, "anomaly")
			write(3, an.Type)
			write(6, truncate(an.Description, 140))
			row++
		}
		for _, c := range a.CrossChecks {
			if c.Passed {
				continue
			}
			write(1, a.DossierID.String())
			write(2, "failed_cross_check")
			write(3, c.Name)
			write(6, truncate(strings.Join(c.Issues, "; "), 140))
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "C", 22)
	_ = f.SetColWidth(sheet, "D", "E", 14)
	_ = f.SetColWidth(sheet, "F", "F", 70)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
