package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"countrynet/internal/model"
)

// Fetcher produces one FetchResult per (country, resource type) pair.
type Fetcher interface {
	Fetch(ctx context.Context, country string, rt model.ResourceType) *model.FetchResult
}

// Storage persists successful fetch results.
type Storage interface {
	Save(result *model.FetchResult) error
	ClearRanges(rt model.ResourceType) error
}

// ScriptExporter emits router configuration for a successful result.
type ScriptExporter interface {
	Export(result *model.FetchResult) error
}

// ScrapeService fans fetches out across a bounded worker pool and routes the
// results to storage.
type ScrapeService struct {
	fetcher    Fetcher
	storage    Storage
	exporter   ScriptExporter
	reporter   Reporter
	logger     *zap.Logger
	maxWorkers int
}

func NewScrapeService(fetcher Fetcher, storage Storage, reporter Reporter, maxWorkers int, logger *zap.Logger) *ScrapeService {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &ScrapeService{
		fetcher:    fetcher,
		storage:    storage,
		reporter:   reporter,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// WithScriptExporter enables router script emission for each successful
// result.
func (s *ScrapeService) WithScriptExporter(exporter ScriptExporter) *ScrapeService {
	s.exporter = exporter
	return s
}

// Run executes the cross-product of countries and resource types on a worker
// pool of maxWorkers and collects results in completion order. One unit's
// failure never aborts the others. Cancelling ctx stops new units from
// starting; in-flight fetches finish on their own timeout. The returned
// statistics cover every unit that completed.
func (s *ScrapeService) Run(ctx context.Context, countries []string, types []model.ResourceType) *model.ScraperStats {
	stats := model.NewScraperStats()

	// Ranges files are append-only during the run; stale content from a
	// previous run has to go first.
	for _, rt := range types {
		if err := s.storage.ClearRanges(rt); err != nil {
			s.logger.Warn("failed to clear ranges file",
				zap.String("type", rt.String()),
				zap.Error(err))
		}
	}

	s.reporter.Progress(fmt.Sprintf("Starting data fetch for %d countries...", len(countries)))

	results := make(chan *model.FetchResult)

	g := new(errgroup.Group)
	g.SetLimit(s.maxWorkers)

	go func() {
		for _, country := range countries {
			for _, rt := range types {
				country, rt := country, rt
				g.Go(func() error {
					if ctx.Err() != nil {
						return nil // interrupted: do not start new units
					}
					results <- s.fetcher.Fetch(ctx, country, rt)
					return nil
				})
			}
		}
		g.Wait()
		close(results)
	}()

	// Single collection point: range-file appends and counter updates happen
	// only here, never inside worker goroutines.
	for result := range results {
		if !result.Success() {
			stats.RecordFailure(result.Country)
			s.reporter.Failure(result)
			continue
		}

		if err := s.storage.Save(result); err != nil {
			// The fetch itself succeeded; a save problem is reported but
			// does not turn the unit into a failed request.
			s.logger.Error("failed to save result",
				zap.String("country", result.Country),
				zap.String("type", result.Type.String()),
				zap.Error(err))
			s.reporter.Progress(fmt.Sprintf("Failed to save %s data for %s: %v",
				result.Type.Upper(), result.Country, err))
		} else {
			if s.exporter != nil {
				if err := s.exporter.Export(result); err != nil {
					s.logger.Error("failed to export router script",
						zap.String("country", result.Country),
						zap.String("type", result.Type.String()),
						zap.Error(err))
				}
			}
			s.reporter.Success(result)
		}
		stats.RecordSuccess(result.Country)
	}

	return stats
}
