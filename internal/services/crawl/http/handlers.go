// Package http provides the crawl trigger and program read transport
package http

import (
	stdhttp "net/http"
	"time"

	phttp "bangcheong/internal/platform/net/http"
	"bangcheong/internal/platform/net/middleware"
	crawlsvc "bangcheong/internal/services/crawl/service"
	progdom "bangcheong/internal/services/programs/domain"
	progsvc "bangcheong/internal/services/programs/service"
)

// Deps are the handler dependencies
type Deps struct {
	Crawl    crawlsvc.Service
	Programs progsvc.Service

	// CronSecret gates the scheduled trigger. Empty fails closed
	CronSecret string
}

// TriggerRequest is the optional manual trigger body
type TriggerRequest struct {
	// DryRun computes the plan without writing anything
	DryRun bool `json:"dryRun"`
}

// Register mounts the crawl routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}

	// Manual trigger, unauthenticated; body is optional
	r.Post("/crawl", phttp.JSONHandler(h.trigger))

	// Scheduled trigger, shared-secret gated before any source runs
	r.Group(func(rr phttp.Router) {
		rr.Use(middleware.SharedSecret(d.CronSecret, phttp.JSON))
		rr.Get("/cron/update", phttp.JSONHandlerNoBody(h.cron))
	})

	r.Get("/programs", phttp.Handle(h.list))
}

type handlers struct{ deps Deps }

func (h *handlers) trigger(r *stdhttp.Request, in TriggerRequest) (any, error) {
	if in.DryRun {
		return h.deps.Crawl.Preview(r.Context())
	}
	return h.deps.Crawl.Run(r.Context())
}

func (h *handlers) cron(r *stdhttp.Request) (any, error) {
	return h.deps.Crawl.Run(r.Context())
}

// ProgramView is the wire shape of one persisted program
type ProgramView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Broadcaster string    `json:"broadcaster"`
	Category    string    `json:"category"`
	RecordDate  time.Time `json:"recordDate"`
	ApplyStart  time.Time `json:"applyStartDate"`
	ApplyEnd    time.Time `json:"applyEndDate"`
	Link        string    `json:"link,omitempty"`
	ImageURL    string    `json:"image,omitempty"`
	ExtraData   string    `json:"extraData,omitempty"`
	ManualLock  bool      `json:"isManual"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *handlers) list(r *stdhttp.Request) phttp.Response {
	rows, err := h.deps.Programs.ListAll(r.Context())
	if err != nil {
		return phttp.Error(err)
	}
	out := make([]ProgramView, 0, len(rows))
	for _, p := range rows {
		out = append(out, viewOf(p))
	}
	return phttp.OK(out)
}

func viewOf(p progdom.Program) ProgramView {
	return ProgramView{
		ID:          p.ID.String(),
		Title:       p.Title,
		Broadcaster: p.Broadcaster,
		Category:    p.Category,
		RecordDate:  p.RecordDate,
		ApplyStart:  p.ApplyStart,
		ApplyEnd:    p.ApplyEnd,
		Link:        p.Link,
		ImageURL:    p.ImageURL,
		ExtraData:   p.ExtraData,
		ManualLock:  p.ManualLock,
		UpdatedAt:   p.UpdatedAt,
	}
}
