package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ScreeningScanner/internal/config"
	"ScreeningScanner/internal/infrastructure/fetch"
	"ScreeningScanner/internal/infrastructure/parser"
	"ScreeningScanner/internal/infrastructure/scheduler"
	"ScreeningScanner/internal/infrastructure/storage"
	"ScreeningScanner/internal/infrastructure/telegram"
	"ScreeningScanner/internal/logging"
	"ScreeningScanner/internal/ports"
	"ScreeningScanner/internal/scraper"
	"ScreeningScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	loc := cfg.Scheduler.Location()
	pageFetcher := fetch.NewHTTPPageFetcher(nil)
	apiClient := fetch.NewRestyAPIClient()

	registry := scraper.NewRegistry()
	for _, mall := range cfg.Malls {
		if err := registerScraper(registry, mall, cfg, pageFetcher, apiClient, loc, baseLogger); err != nil {
			return nil, fmt.Errorf("mall %s: %w", mall.Name, err)
		}
	}

	var db *sql.DB
	var repository ports.ScreeningRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:   registry,
		Malls:      cfg.Malls,
		Repository: repository,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline),
		db:        db,
	}, nil
}

func registerScraper(
	registry *scraper.Registry,
	mall config.MallConfig,
	cfg config.Config,
	pageFetcher ports.PageFetcher,
	apiClient ports.APIClient,
	loc *time.Location,
	baseLogger *slog.Logger,
) error {
	logger := baseLogger.With("component", "scraper."+mall.Name)

	switch mall.Scraper {
	case "abreeza":
		url := mall.Options["url"]
		registry.Register(mall.Name, func() scraper.Scraper {
			return parser.NewAbreezaScraper(pageFetcher, url, loc, logger)
		})

	case "gaisano":
		feed := fetch.NewFacebookFeed(cfg.Facebook.FeedURL, cfg.Facebook.AccessToken)
		branch := mall.Options["branch"]
		name := mall.Name
		registry.Register(mall.Name, func() scraper.Scraper {
			return parser.NewGaisanoScraper(name, feed, branch, loc, logger)
		})

	case "nccc":
		url := mall.Options["url"]
		registry.Register(mall.Name, func() scraper.Scraper {
			return parser.NewNcccScraper(pageFetcher, url, loc, logger)
		})

	case "smmalls":
		endpoint := mall.Options["endpoint"]
		branchCode := mall.Options["branch_code"]
		name := mall.Name
		registry.Register(mall.Name, func() scraper.Scraper {
			return parser.NewSmMallsScraper(name, apiClient, endpoint, branchCode, loc, logger)
		})

	default:
		return fmt.Errorf("unknown scraper strategy %q", mall.Scraper)
	}

	return nil
}

// Run performs an immediate fetch and keeps rerunning on the configured
// interval until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	if err := a.scheduler.Stop(context.Background()); err != nil {
		a.logger.Error("stop scheduler", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close database", "error", err)
		}
	}

	return nil
}
