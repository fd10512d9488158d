package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/kodjo-amani/dossier-check/internal/async"
	"github.com/kodjo-amani/dossier-check/internal/coherence"
	"github.com/kodjo-amani/dossier-check/internal/common"
	"github.com/kodjo-amani/dossier-check/internal/dossier"
	"github.com/kodjo-amani/dossier-check/internal/extract"
	"github.com/kodjo-amani/dossier-check/internal/ingest"
	"github.com/kodjo-amani/dossier-check/internal/pipeline"
	"github.com/kodjo-amani/dossier-check/internal/repository"
	"github.com/kodjo-amani/dossier-check/internal/rules"
)

func main() {
	zlog, _ := zap.NewProduction()
	defer func() { _ = zlog.Sync() }()
	log := zlog.Sugar()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Assessment store: Postgres when a postgres DSN is configured, local
	// SQLite otherwise.
	var store repository.AssessmentRepository
	switch {
	case strings.HasPrefix(cfg.Database.DSN, "postgres://"), strings.HasPrefix(cfg.Database.DSN, "postgresql://"):
		pool, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, nil)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer repository.Close(pool, nil)
		if err := repository.HealthCheck(ctx, pool, 5*time.Second, nil); err != nil {
			log.Fatalf("database health: %v", err)
		}
		store, err = repository.NewPostgresAssessmentRepository(ctx, pool, nil)
		if err != nil {
			log.Fatalf("assessment store: %v", err)
		}
		log.Infow("using postgres assessment store")
	default:
		path := cfg.Database.DSN
		if path == "" {
			path = filepath.Join(cfg.Ingest.InboxDir, "assessments.db")
		}
		var (
			db  interface{ Close() error }
			err error
		)
		store, db, err = repository.OpenSQLite(ctx, path, nil)
		if err != nil {
			log.Fatalf("opening sqlite: %v", err)
		}
		defer func() { _ = db.Close() }()
		log.Infow("using sqlite assessment store", "path", path)
	}

	var ruleSet *rules.Set
	if cfg.Checks.RulesFile != "" {
		data, err := os.ReadFile(cfg.Checks.RulesFile)
		if err != nil {
			log.Fatalf("reading rule set: %v", err)
		}
		ruleSet, err = rules.LoadSet(data)
		if err != nil {
			log.Fatalf("loading rule set: %v", err)
		}
		log.Infow("loaded rule set", "name", ruleSet.Name, "rules", len(ruleSet.Rules))
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
		VisaType:            cfg.Ingest.VisaType,
		PaymentValidityDays: cfg.Checks.PaymentValidityDays,
	}, validator)

	handle := func(ctx context.Context, path string) error {
		in, err := loadPayload(path)
		if err != nil {
			return err
		}
		if in.VisaType == "" {
			in.VisaType = string(cfg.Ingest.VisaType)
		}
		res, err := proc.Process(ctx, in)
		if err != nil {
			return err
		}
		return store.Save(ctx, res.Assessment)
	}

	queue := async.NewProcessorQueue(handle, nil,
		async.WithWorkers(4),
		async.WithQueueSize(256),
		async.WithProcessTimeout(time.Minute),
	)

	// enqueue whatever already sits in the inbox, then watch for more
	existing, err := ingest.ScanInbox(cfg.Ingest.InboxDir)
	if err != nil {
		log.Fatalf("scanning inbox: %v", err)
	}
	for _, p := range existing {
		_ = queue.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now(), TraceID: uuid.NewString()})
	}

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:     cfg.Ingest.InboxDir,
		Debounce: cfg.Ingest.PollInterval,
	}, nil)
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}
	go func() {
		for {
			select {
			case p, ok := <-events:
				if !ok {
					return
				}
				_ = queue.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now(), TraceID: uuid.NewString()})
			case werr, ok := <-watchErrs:
				if ok && werr != nil {
					log.Warnw("watcher error", "error", werr)
				}
			}
		}
	}()

	// gRPC health + reflection for probes
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Server.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	log.Infow("dossierd listening", "addr", cfg.Server.GRPCAddr, "inbox", cfg.Ingest.InboxDir)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	queue.Shutdown(context.Background())
	grpcServer.GracefulStop()
}

// loadPayload reads a dossier payload: a JSON file or a directory of raw
// text documents.
func loadPayload(path string) (*dossier.Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return dossier.ReadDirectory(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dossier.ParseInput(data)
}
