package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bangcheong/internal/platform/config"
	"bangcheong/internal/platform/logger"
	phttp "bangcheong/internal/platform/net/http"
	"bangcheong/internal/platform/net/middleware"
	"bangcheong/internal/platform/store"

	crawlmod "bangcheong/internal/services/crawl/module"
	metahttp "bangcheong/internal/services/meta/http"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
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

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(chimw.RequestID)
		m.Use(middleware.RecoverJSON)
		m.Use(middleware.AccessLog(middleware.AccessLogOptions{
			Slow: apiCfg.MayDuration("SLOW_REQUEST", 2 * time.Second),
		}))
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{apiCfg.MayString("CORS_ORIGIN", "*")},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	})

	mod := crawlmod.New(crawlmod.Deps{DB: st, Cfg: root})
	mod.MountRoutes(srv.Router())

	metahttp.Register(srv.Router(), metahttp.Deps{
		ServiceName: "bangcheong-api",
		StartedAt:   time.Now(),
		PG:          st.PG,
	})

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
