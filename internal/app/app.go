package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"ProposalScanner/internal/config"
	"ProposalScanner/internal/infrastructure/scheduler"
	"ProposalScanner/internal/logging"
	"ProposalScanner/internal/mailarchive"
	"ProposalScanner/internal/ports"
	"ProposalScanner/internal/report"
	"ProposalScanner/internal/scheme"
	"ProposalScanner/internal/storage"
	"ProposalScanner/internal/usecase"
	"ProposalScanner/internal/wiki"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	schemes := scheme.NewRegistry()
	for _, s := range scheme.Defaults() {
		schemes.Register(s)
	}

	taxonomy := wiki.DefaultTaxonomy()
	if len(cfg.Taxonomy.AcceptedTerms) > 0 {
		taxonomy.AcceptedTerms = cfg.Taxonomy.AcceptedTerms
	}
	if len(cfg.Taxonomy.UnderDiscussionTerms) > 0 {
		taxonomy.UnderDiscussionTerms = cfg.Taxonomy.UnderDiscussionTerms
	}
	if len(cfg.Taxonomy.NotAcceptedTerms) > 0 {
		taxonomy.NotAcceptedTerms = cfg.Taxonomy.NotAcceptedTerms
	}
	if len(cfg.Taxonomy.PlaceholderMarkers) > 0 {
		taxonomy.PlaceholderMarkers = cfg.Taxonomy.PlaceholderMarkers
	}

	wikiClient := wiki.NewClient(nil, baseLogger.With("component", "wiki.client"))
	classifier := wiki.NewClassifier(taxonomy, baseLogger.With("component", "wiki.classifier"))
	harvester := wiki.NewHarvester(wikiClient, classifier, baseLogger.With("component", "wiki.harvester"))
	downloader := mailarchive.NewDownloader(nil, baseLogger.With("component", "mail.downloader"))
	cache := storage.NewFileCache(baseLogger.With("component", "cache"))

	var (
		repository ports.ProposalRepository
		db         *sql.DB
	)
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repository = storage.NewPostgresRepository(db)
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return nil, err
	}

	pipeline := usecase.NewPipeline(cfg, usecase.PipelineDeps{
		Schemes:    schemes,
		Downloader: downloader,
		Harvester:  harvester,
		Cache:      cache,
		Repository: repository,
		Renderer:   renderer,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, db: db}, nil
}

// Pipeline exposes the orchestration component to the CLI commands.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run performs one update-and-report execution.
func (a *Application) Run(ctx context.Context) error {
	if err := a.pipeline.Update(ctx); err != nil {
		return err
	}
	return a.pipeline.Report(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// RunScheduled keeps running updates on the configured cron expression
// until the context is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
