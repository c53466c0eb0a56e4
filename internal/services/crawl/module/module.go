// Package module wires the crawl pipeline: sources, programs store, crawl
// service and transport
package module

import (
	"time"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/adapters/source/fetchkit"
	"bangcheong/internal/adapters/source/jtbc"
	"bangcheong/internal/adapters/source/kbs"
	"bangcheong/internal/adapters/source/mbc"
	"bangcheong/internal/adapters/source/sbs"
	"bangcheong/internal/adapters/source/tvchosun"
	"bangcheong/internal/platform/config"
	phttp "bangcheong/internal/platform/net/http"
	"bangcheong/internal/platform/store"
	crawlhttp "bangcheong/internal/services/crawl/http"
	crawlsvc "bangcheong/internal/services/crawl/service"
	progrepo "bangcheong/internal/services/programs/repo"
	progsvc "bangcheong/internal/services/programs/service"
)

// Deps are the module dependencies
type Deps struct {
	DB *store.Store

	// Cfg is the root config view; the module reads CRAWL_HTTP_TIMEOUT
	// and CORE_API_CRON_SECRET from it
	Cfg config.Conf
}

// Module owns the wired crawl pipeline
type Module struct {
	crawl    crawlsvc.Service
	programs progsvc.Service
	secret   string
}

// New constructs the module against the production sources
func New(deps Deps) *Module {
	if deps.DB == nil || deps.DB.PG == nil {
		panic("crawl.Module requires an open postgres store")
	}

	timeout := deps.Cfg.Prefix("CRAWL_").MayDuration("HTTP_TIMEOUT", fetchkit.DefaultTimeout)
	registry := DefaultRegistry(fetchkit.New(timeout), time.Now)

	programs := progsvc.New(progrepo.NewPG(deps.DB.PG))

	return &Module{
		crawl:    crawlsvc.New(registry, programs, time.Now),
		programs: programs,
		secret:   deps.Cfg.Prefix("CORE_API_").MayString("CRON_SECRET", ""),
	}
}

// MountRoutes mounts the crawl transport on the given router
func (m *Module) MountRoutes(r phttp.Router) {
	crawlhttp.Register(r, crawlhttp.Deps{
		Crawl:      m.crawl,
		Programs:   m.programs,
		CronSecret: m.secret,
	})
}

// Crawl exposes the pipeline port
func (m *Module) Crawl() crawlsvc.Service { return m.crawl }

// Programs exposes the programs port
func (m *Module) Programs() progsvc.Service { return m.programs }

// DefaultRegistry assembles the production source set in its canonical
// order. It panics on construction errors because the set is static
func DefaultRegistry(client *fetchkit.Client, now func() time.Time) source.Registry {
	r, err := source.NewRegistry(
		kbs.New(client),
		kbs.NewDiscovery(client, now),
		sbs.New(now),
		jtbc.New(client, now),
		tvchosun.New(client),
		mbc.New(),
	)
	if err != nil {
		panic(err)
	}
	return r
}
