package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/kodjo-amani/dossier-check/internal/coherence"
	"github.com/kodjo-amani/dossier-check/internal/common"
	"github.com/kodjo-amani/dossier-check/internal/dossier"
	"github.com/kodjo-amani/dossier-check/internal/entity"
	"github.com/kodjo-amani/dossier-check/internal/export"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/pipeline"
	"github.com/kodjo-amani/dossier-check/internal/repository"
	"github.com/kodjo-amani/dossier-check/internal/rules"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		input    = flag.String("input", "", "dossier payload JSON file")
		dir      = flag.String("dir", "", "directory of per-document raw text files")
		visaType = flag.String("visa", "", "visa type applied for (COURT_SEJOUR, LONG_SEJOUR, TRANSIT, AFFAIRES)")
		out      = flag.String("out", "", "write an XLSX report to this path")
		db       = flag.String("db", "", "persist the assessment to this SQLite file")
		rulesArg = flag.String("rules", "", "JSON workflow rule set, matches are reported as anomalies")
		asJSON   = flag.Bool("json", false, "print the full assessment as JSON")
	)
	flag.Parse()

	if (*input == "") == (*dir == "") {
		printError("Error: exactly one of --input or --dir is required\n")
		os.Exit(1)
	}

	zlog, _ := zap.NewProduction()
	defer func() { _ = zlog.Sync() }()
	log := zlog.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		in  *dossier.Input
		err error
	)
	if *input != "" {
		data, rerr := os.ReadFile(*input)
		if rerr != nil {
			log.Fatalf("reading payload: %v", rerr)
		}
		in, err = dossier.ParseInput(data)
	} else {
		in, err = dossier.ReadDirectory(*dir)
	}
	if err != nil {
		log.Fatalf("loading dossier: %v", err)
	}
	if *visaType != "" {
		in.VisaType = *visaType
	}

	cfg := common.LoadConfig()
	var ruleSet *rules.Set
	if *rulesArg != "" {
		data, rerr := os.ReadFile(*rulesArg)
		if rerr != nil {
			log.Fatalf("reading rule set: %v", rerr)
		}
		ruleSet, err = rules.LoadSet(data)
		if err != nil {
			log.Fatalf("loading rule set: %v", err)
		}
	}
	validator := coherence.NewValidator(coherence.Options{
		Rules:               ruleSet,
		NameSimilarity:      cfg.Checks.NameSimilarity,
		HotelToleranceDays:  cfg.Checks.HotelToleranceDays,
		PaymentValidityDays: cfg.Checks.PaymentValidityDays,
		UrgentTravelDays:    cfg.Checks.UrgentTravelDays,
		LongStayNights:      cfg.Checks.LongStayNights,
	})
	proc := pipeline.NewProcessor(nil, extract.Options{
		PaymentValidityDays: cfg.Checks.PaymentValidityDays,
	}, validator)

	res, err := proc.Process(ctx, in)
	if err != nil {
		log.Fatalf("processing dossier: %v", err)
	}
	a := res.Assessment

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			log.Fatalf("encoding assessment: %v", err)
		}
	} else {
		printSummary(res)
	}

	if *db != "" {
		repo, sqldb, err := repository.OpenSQLite(ctx, *db, nil)
		if err != nil {
			log.Fatalf("opening sqlite: %v", err)
		}
		defer func() { _ = sqldb.Close() }()
		if err := repo.Save(ctx, a); err != nil {
			log.Fatalf("saving assessment: %v", err)
		}
		log.Infow("assessment saved", "db", *db, "assessment_id", a.ID)
	}

	if *out != "" {
		svc := export.NewService(nil)
		data, err := svc.ExportAssessmentsXLSX([]*entity.RiskAssessment{a})
		if err != nil {
			log.Fatalf("exporting report: %v", err)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("writing report: %v", err)
		}
		log.Infow("report written", "path", *out)
	}

	if a.RequiresManualReview {
		os.Exit(3)
	}
}

func printSummary(res *pipeline.Result) {
	a := res.Assessment
	fmt.Printf("Dossier %s (%s)\n", a.DossierID, res.Dossier.VisaType)
	fmt.Printf("  risk level: %s   confidence: %.2f   valid: %t\n", a.RiskLevel, a.Confidence, a.Valid)
	if len(a.MissingDocuments) > 0 {
		fmt.Printf("  missing documents: %s\n", strings.Join(a.MissingDocuments, ", "))
	}
	for _, ind := range a.FraudIndicators {
		fmt.Printf("  [%s] %s (%s): %s\n", ind.Severity, ind.Type, ind.Document, ind.Description)
	}
	for _, an := range a.Anomalies {
		fmt.Printf("  [anomaly] %s: %s\n", an.Type, an.Description)
	}
	for _, c := range a.CrossChecks {
		if c.Passed {
			continue
		}
		fmt.Printf("  [cross-check failed] %s: %s\n", c.Name, strings.Join(c.Issues, "; "))
	}
	if a.RequiresManualReview {
		fmt.Println("  => manual review required")
	}
}
