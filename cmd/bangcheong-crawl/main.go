// bangcheong-crawl runs one crawl pass from the command line, for cron-less
// deployments and for debugging a single source
package main

import (
	"context"
	"flag"
	"time"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/adapters/source/fetchkit"
	"bangcheong/internal/platform/config"
	"bangcheong/internal/platform/logger"
	"bangcheong/internal/platform/store"

	crawlmod "bangcheong/internal/services/crawl/module"
	crawlsvc "bangcheong/internal/services/crawl/service"
	progrepo "bangcheong/internal/services/programs/repo"
	progsvc "bangcheong/internal/services/programs/service"
)

func main() {
	var (
		fDryRun = flag.Bool("dry-run", false, "compute the plan without writing to the store")
		fSource = flag.String("source", "", "run only the named source (kbs, kbs-discovery, sbs, jtbc, tvchosun, mbc)")
	)
	flag.Parse()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	timeout := root.Prefix("CRAWL_").MayDuration("HTTP_TIMEOUT", fetchkit.DefaultTimeout)
	registry := crawlmod.DefaultRegistry(fetchkit.New(timeout), time.Now)

	if *fSource != "" {
		src, ok := registry.Get(*fSource)
		if !ok {
			l.Fatal().Str("source", *fSource).Msg("unknown source")
		}
		reg, err := source.NewRegistry(src)
		if err != nil {
			l.Fatal().Err(err).Msg("registry build failed")
		}
		registry = reg
	}

	programs := progsvc.New(progrepo.NewPG(st.PG))
	svc := crawlsvc.New(registry, programs, time.Now)

	ctx, cancel := context.WithTimeout(context.Background(), root.Prefix("CRAWL_").MayDuration("RUN_TIMEOUT", 2*time.Minute))
	defer cancel()

	run := svc.Run
	if *fDryRun {
		run = svc.Preview
	}
	sum, err := run(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("crawl run failed")
	}

	l.Info().
		Bool("dry_run", *fDryRun).
		Int("total", sum.TotalCrawled).
		Int("applying", sum.ApplyingCount).
		Int("created", sum.CreatedCount).
		Int("updated", sum.UpdatedCount).
		Int("skipped_locked", sum.SkippedLocked).
		Int("dropped", sum.DroppedCount).
		Int("failed", sum.FailedCount).
		Interface("per_source", sum.PerSource).
		Msg("crawl finished")
}
