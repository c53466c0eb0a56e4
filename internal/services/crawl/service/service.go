// Package service runs the crawl pipeline: fan out to every source,
// reconcile the batch against the store snapshot, apply the plan
package service

import (
	"context"
	"sync"
	"time"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/platform/logger"
	"bangcheong/internal/services/crawl/domain"
	pdom "bangcheong/internal/services/programs/domain"
)

// Service is the public crawl port
type Service interface {
	domain.ServicePort
}

// Svc implements the pipeline
type Svc struct {
	registry source.Registry
	programs pdom.StorePort
	log      *logger.Logger
	now      func() time.Time
}

// New constructs the service. A nil clock defaults to time.Now
func New(registry source.Registry, programs pdom.StorePort, now func() time.Time) *Svc {
	if programs == nil {
		panic("crawl.Service requires a non nil programs store")
	}
	if now == nil {
		now = time.Now
	}
	return &Svc{
		registry: registry,
		programs: programs,
		log:      logger.Named("crawl"),
		now:      now,
	}
}

// Run implements domain.ServicePort
func (s *Svc) Run(ctx context.Context) (domain.RunSummary, error) {
	return s.run(ctx, true)
}

// Preview implements domain.ServicePort
func (s *Svc) Preview(ctx context.Context) (domain.RunSummary, error) {
	return s.run(ctx, false)
}

func (s *Svc) run(ctx context.Context, apply bool) (domain.RunSummary, error) {
	listings, perSource := s.collect(ctx)

	snapshot, err := s.programs.ListAll(ctx)
	if err != nil {
		return domain.RunSummary{PerSource: perSource, TotalCrawled: len(listings)}, err
	}

	p := reconcile(listings, snapshot, s.now())

	created, updated, failed := len(p.creates), len(p.updates), 0
	if apply {
		created, updated, failed = s.applyPlan(ctx, p)
	}

	applying := 0
	for _, l := range listings {
		if l.Applying {
			applying++
		}
	}

	summary := domain.RunSummary{
		Success:       true,
		TotalCrawled:  len(listings),
		ApplyingCount: applying,
		CreatedCount:  created,
		UpdatedCount:  updated,
		SkippedLocked: p.skippedLocked,
		DroppedCount:  p.dropped,
		FailedCount:   failed,
		PerSource:     perSource,
	}
	s.log.Info().
		Int("total", summary.TotalCrawled).
		Int("applying", summary.ApplyingCount).
		Int("created", summary.CreatedCount).
		Int("updated", summary.UpdatedCount).
		Int("skipped_locked", summary.SkippedLocked).
		Int("dropped", summary.DroppedCount).
		Int("failed", summary.FailedCount).
		Bool("applied", apply).
		Msg("crawl run complete")
	return summary, nil
}

// collect fans out one goroutine per source and joins on all of them.
// A source error is logged and degraded to an empty result so one outage
// never takes down the batch
func (s *Svc) collect(ctx context.Context) ([]source.Listing, map[string]int) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		all []source.Listing
	)
	perSource := make(map[string]int, s.registry.Len())

	for _, src := range s.registry.All() {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			listings, err := src.Fetch(ctx)
			if err != nil {
				s.log.Warn().Err(err).Str("source", src.Name()).Msg("source fetch failed")
				listings = nil
			}
			mu.Lock()
			perSource[src.Name()] = len(listings)
			all = append(all, listings...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return all, perSource
}

// applyPlan writes creates and updates one by one. A failed write is
// logged and counted; the rest of the plan still goes through
func (s *Svc) applyPlan(ctx context.Context, p plan) (created, updated, failed int) {
	for _, c := range p.creates {
		if _, err := s.programs.Create(ctx, c); err != nil {
			s.log.Error().Err(err).Str("title", c.Title).Msg("create failed")
			failed++
			continue
		}
		created++
	}
	for _, u := range p.updates {
		if err := s.programs.Update(ctx, u.id, u.fields); err != nil {
			s.log.Error().Err(err).Str("id", u.id.String()).Msg("update failed")
			failed++
			continue
		}
		updated++
	}
	return created, updated, failed
}
