// Package pipeline coordinates extraction then coherence validation for one
// dossier payload.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kodjo-amani/dossier-check/constants"
	"github.com/kodjo-amani/dossier-check/internal/coherence"
	"github.com/kodjo-amani/dossier-check/internal/common"
	"github.com/kodjo-amani/dossier-check/internal/dossier"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/extract"
)

// Result bundles the assembled dossier with its assessment.
type Result struct {
	Dossier    *entity.Dossier
	Assessment *entity.RiskAssessment
}

// Processor runs the per-document extractors over a dossier payload and
// hands the assembled dossier to the coherence validator.
type Processor struct {
	Logger    *slog.Logger
	Opts      extract.Options
	Validator *coherence.Validator
}

func NewProcessor(logger *slog.Logger, extractOpts extract.Options, validator *coherence.Validator) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Opts: extractOpts, Validator: validator}
}

// Process extracts every document in the payload, assembles the dossier and
// validates it. Extraction of a single document never aborts the dossier:
// extractors report Success=false on garbage and validation proceeds with
// what was recovered.
func (p *Processor) Process(ctx context.Context, in *dossier.Input) (*Result, error) {
	if in == nil || len(in.Documents) == 0 {
		return nil, fmt.Errorf("empty dossier input")
	}

	log := p.Logger
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		log = log.With("request_id", rid)
	}

	d := &entity.Dossier{ID: uuid.New()}
	if vt, ok := constants.CanonicalizeVisaType(in.VisaType); ok {
		d.VisaType = vt
	} else {
		d.VisaType = constants.VisaCourtSejour
	}
	log.Info("processor.start",
		"dossier_id", d.ID,
		"visa_type", d.VisaType,
		"documents", len(in.Documents),
		"status", constants.DossierRunning,
	)

	// extractors are per-dossier: the expected fee depends on the visa
	// type, the entry count and the passport type
	opts := p.Opts
	opts.VisaType = d.VisaType
	opts.Entries = constants.CanonicalizeEntryCount(in.Entries)

	// 1) extraction stage, one extractor per declared document type. The
	// passport goes first so the type it declares can steer the fee table
	// for the rest of the dossier.
	ordered := make([]dossier.InputDocument, 0, len(in.Documents))
	for _, doc := range in.Documents {
		if dt, ok := constants.CanonicalizeDocumentType(doc.Type); ok && dt == constants.Passport {
			ordered = append([]dossier.InputDocument{doc}, ordered...)
			continue
		}
		ordered = append(ordered, doc)
	}

	extractors := map[constants.DocumentType]extract.Extractor{}
	for _, e := range extract.All(opts) {
		extractors[e.DocumentType()] = e
	}

	for _, doc := range ordered {
		dt, ok := constants.CanonicalizeDocumentType(doc.Type)
		if !ok {
			log.Warn("processor.extract.skipped", "dossier_id", d.ID, "type", doc.Type)
			continue
		}
		ex := extractors[dt]
		if ex == nil {
			log.Warn("processor.extract.unsupported", "dossier_id", d.ID, "type", dt)
			continue
		}

		start := time.Now()
		extracted, err := ex.Extract(ctx, doc.Text)
		if err != nil {
			log.Error("processor.extract.failed",
				"dossier_id", d.ID, "type", dt, "status", constants.DossierFailed, "error", err)
			return nil, fmt.Errorf("extract %s: %w", dt, err)
		}
		d.Add(extracted)
		log.Info("processor.extract.ok",
			"dossier_id", d.ID,
			"type", dt,
			"success", extracted.Success,
			"fields", len(extracted.Fields),
			"warnings", len(extracted.Warnings),
			"duration", time.Since(start),
		)

		// rebuild the remaining extractors once the passport type is known
		if dt == constants.Passport {
			if pt, ok := constants.CanonicalizePassportType(extracted.Field(extract.FieldPassportType)); ok {
				opts.PassportType = pt
				extractors = map[constants.DocumentType]extract.Extractor{}
				for _, e := range extract.All(opts) {
					extractors[e.DocumentType()] = e
				}
			}
		}
	}

	log.Debug("processor.extract.done", "dossier_id", d.ID, "status", constants.DossierExtracted)

	// 2) coherence stage
	start := time.Now()
	assessment := p.Validator.Validate(d)
	log.Info("processor.validate.ok",
		"dossier_id", d.ID,
		"risk_level", assessment.RiskLevel,
		"valid", assessment.Valid,
		"status", constants.DossierAssessed,
		"duration", time.Since(start),
	)
	return &Result{Dossier: d, Assessment: assessment}, nil
}
