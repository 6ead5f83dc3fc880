package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ScreeningScanner/internal/config"
	"ScreeningScanner/internal/ports"
	"ScreeningScanner/internal/scraper"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Registry   *scraper.Registry
	Malls      []config.MallConfig
	Repository ports.ScreeningRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the screening-ingestion workflow: fetch every
// configured mall, persist the normalized movies, publish a run report.
type Pipeline struct {
	registry   *scraper.Registry
	malls      []config.MallConfig
	repository ports.ScreeningRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:   deps.Registry,
		malls:      deps.Malls,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// Run fetches every mall in turn. Malls are independent: a structural
// parse failure or transport failure on one is logged and collected but
// does not stop the others. The joined error is returned so the caller
// can decide which sources to retry.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	var errs []error
	var report []string

	for _, mall := range p.malls {
		sc, err := p.registry.Resolve(mall.Name)
		if err != nil {
			p.logger.Error("no scraper for mall", "mall", mall.Name, "error", err)
			errs = append(errs, fmt.Errorf("mall %s: %w", mall.Name, err))
			continue
		}

		if err := sc.Fetch(ctx); err != nil {
			if scraper.IsParseError(err) {
				p.logger.Error("fetch aborted, source layout violated", "mall", mall.Name, "error", err)
			} else {
				p.logger.Error("fetch failed", "mall", mall.Name, "error", err)
			}
			errs = append(errs, fmt.Errorf("fetch %s: %w", mall.Name, err))
			continue
		}

		if !sc.HasMovies() {
			p.logger.Warn("no movies collected", "mall", mall.Name)
			continue
		}

		movies := sc.Movies()
		if p.repository != nil {
			if err := p.repository.SaveMovies(ctx, mall.Name, movies); err != nil {
				p.logger.Error("persist failed", "mall", mall.Name, "error", err)
				errs = append(errs, fmt.Errorf("persist %s: %w", mall.Name, err))
				continue
			}
		}

		screenings := 0
		for _, m := range movies {
			screenings += len(m.ScreeningTimes)
		}
		p.logger.Info("mall fetched", "mall", mall.Name, "movies", len(movies), "screenings", screenings)
		report = append(report, fmt.Sprintf("%s: %d movies, %d screenings", mall.Name, len(movies), screenings))
	}

	if p.notifier != nil && len(report) > 0 {
		message := fmt.Sprintf("Screenings fetched %s\n%s", now.Format("2006-01-02"), strings.Join(report, "\n"))
		if err := p.notifier.PublishReport(ctx, message); err != nil {
			p.logger.Error("publish report failed", "error", err)
		}
	}

	return errors.Join(errs...)
}
