// Package app wires the report service from configuration. It is shared
// by the API server and reportctl.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/adapter/repository"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/external/email"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/storage"
	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
	pkgai "github.com/johnquangdev/meeting-reporter/pkg/ai"
	"github.com/johnquangdev/meeting-reporter/pkg/config"

	migrate "github.com/rubenv/sql-migrate"
)

// Store is a report store that can report its health
type Store interface {
	repositories.ReportStore
	Ping(ctx context.Context) error
}

// App holds the wired components
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Service *reportuc.Service
	Store   Store
	Metrics *metrics.Metrics

	closers []func()
}

// NewLogger returns a production logger in production and a development
// logger otherwise
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// New initializes every dependency of the report service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	logger.Info("📦 Initializing report store", zap.String("type", cfg.Storage.Type))
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	var index repositories.ReportIndex
	if cfg.Database.Enabled {
		logger.Info("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = database.CloseDB(db) })

		if cfg.Database.AutoMigrate {
			logger.Info("🔄 Applying migrations", zap.String("dir", cfg.Database.MigrationsDir))
			if _, err := database.Migrate(db, cfg.Database.MigrationsDir, migrate.Up, logger); err != nil {
				a.Close()
				return nil, err
			}
		}
		index = repository.NewReportIndexRepository(db)
	}

	runs, err := a.newRunRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var transcriber reportuc.Transcriber
	if cfg.Assembly.APIKey != "" {
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Assembly)
	} else {
		logger.Warn("⚠️ ASSEMBLYAI_API_KEY not set, audio processing disabled")
	}

	var notifier reportuc.Notifier
	if cfg.SendGrid.APIKey != "" {
		n, err := email.NewSendGridNotifier(&cfg.SendGrid, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		notifier = n
	} else {
		logger.Warn("⚠️ SENDGRID_API_KEY not set, email delivery disabled")
	}

	pipeline := reportuc.NewPipeline(
		reportuc.NewAnalysisStage(extractor, logger),
		reportuc.NewPersistenceStage(store, index, cfg.Pipeline.ReportPrefix, logger),
		runs, a.Metrics, logger,
	)
	a.Service = reportuc.NewService(reportuc.Dependencies{
		Pipeline:    pipeline,
		Transcriber: transcriber,
		Store:       store,
		Index:       index,
		Runs:        runs,
		Notifier:    notifier,
		Metrics:     a.Metrics,
		Prefix:      cfg.Pipeline.ReportPrefix,
		Timeout:     cfg.Pipeline.Timeout,
		Logger:      logger,
	})
	return a, nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Type {
	case config.StorageMinIO:
		return storage.NewMinIOStore(ctx, &cfg.Storage)
	default:
		return storage.NewLocalStore(cfg.Storage.LocalDir)
	}
}

func (a *App) newRunRepository(ctx context.Context) (repositories.RunRepository, error) {
	if a.Config.Redis.Enabled {
		a.Logger.Info("📦 Connecting to Redis...")
		client, err := cache.NewRedisClient(ctx, a.Config)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return cache.NewRedisRunRepository(client, a.Config.Redis.RunTTL), nil
	}

	memory := cache.NewMemoryStore()
	a.closers = append(a.closers, memory.Close)
	return cache.NewMemoryRunRepository(memory, a.Config.Redis.RunTTL), nil
}

func newExtractor(cfg *config.Config, logger *zap.Logger) (reportuc.Extractor, error) {
	switch cfg.Pipeline.Extractor {
	case config.ExtractorLLM:
		logger.Info("🤖 Using LLM extractor", zap.String("model", cfg.Groq.Model))
		return reportuc.NewLLMExtractor(pkgai.NewGroqClient(&cfg.Groq), cfg.Pipeline.MaxAttempts, logger), nil
	case config.ExtractorRules:
		logger.Info("📐 Using rule-based extractor")
		return reportuc.NewRuleExtractor(nil), nil
	}
	return nil, fmt.Errorf("unknown extractor %q", cfg.Pipeline.Extractor)
}
