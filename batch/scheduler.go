// Package batch fans a list of URLs out across the session orchestrator
// under a fixed concurrency ceiling. Every submitted URL, valid or not,
// yields exactly one result, and output order always mirrors input order.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/models"
)

// Processor handles one URL end to end. Implemented by session.Orchestrator;
// a test double suffices to exercise the scheduler without a browser.
type Processor interface {
	Process(ctx context.Context, req *models.ScrapeRequest) *models.SessionResult
	Resolve(ctx context.Context, rawURL string) *models.SessionResult
}

// Scheduler runs batches under a counting admission gate. The semaphore is
// the only shared resource: sessions own their data exclusively.
type Scheduler struct {
	cfg  config.BatchConfig
	proc Processor
	sem  *semaphore.Weighted
}

// NewScheduler builds a Scheduler from an explicit config so tests can
// instantiate several with different ceilings in-process.
func NewScheduler(cfg config.BatchConfig, proc Processor) *Scheduler {
	ceiling := cfg.MaxConcurrency
	if ceiling < 1 {
		ceiling = 1
	}
	return &Scheduler{
		cfg:  cfg,
		proc: proc,
		sem:  semaphore.NewWeighted(int64(ceiling)),
	}
}

// MaxBatchSize exposes the configured batch cap for request validation.
func (s *Scheduler) MaxBatchSize() int {
	return s.cfg.MaxBatchSize
}

// ProcessBatch scrapes every URL with shared options.
func (s *Scheduler) ProcessBatch(ctx context.Context, urls []string, opts models.ScrapeOptions) ([]*models.SessionResult, error) {
	return s.run(ctx, urls, func(ctx context.Context, rawURL string) *models.SessionResult {
		return s.proc.Process(ctx, &models.ScrapeRequest{URL: rawURL, Options: opts})
	})
}

// ResolveBatch resolves every URL without extraction.
func (s *Scheduler) ResolveBatch(ctx context.Context, urls []string) ([]*models.SessionResult, error) {
	return s.run(ctx, urls, s.proc.Resolve)
}

// run is the shared fan-out. The whole batch is rejected only for a count
// violation; individual failures land in their result slot and never abort
// siblings. Invalid URLs fail immediately without consuming a slot.
func (s *Scheduler) run(ctx context.Context, urls []string, op func(context.Context, string) *models.SessionResult) ([]*models.SessionResult, error) {
	if len(urls) == 0 {
		return nil, models.NewSessionError(models.ErrCodeInvalidInput,
			"urls must not be empty", nil)
	}
	if len(urls) > s.cfg.MaxBatchSize {
		return nil, models.NewSessionError(models.ErrCodeInvalidInput,
			fmt.Sprintf("batch of %d URLs exceeds the maximum of %d", len(urls), s.cfg.MaxBatchSize), nil)
	}

	results := make([]*models.SessionResult, len(urls))
	var wg sync.WaitGroup

	for i, rawURL := range urls {
		if err := models.ValidateURL(rawURL); err != nil {
			results[i] = models.Failure(rawURL, "", err)
			continue
		}

		wg.Add(1)
		go func(idx int, target string) {
			defer wg.Done()

			if err := s.sem.Acquire(ctx, 1); err != nil {
				results[idx] = models.Failure(target, "", models.NewSessionError(
					models.ErrCodeInternal, "canceled while waiting for a session slot", err))
				return
			}
			defer s.sem.Release(1)

			results[idx] = op(ctx, target)
		}(i, rawURL)
	}

	wg.Wait()
	return results, nil
}
