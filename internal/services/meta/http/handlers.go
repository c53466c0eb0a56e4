// Package http provides the service meta endpoints
package http

import (
	stdctx "context"
	stdhttp "net/http"
	"time"

	"bangcheong/internal/core/version"
	phttp "bangcheong/internal/platform/net/http"
)

// Pinger is satisfied by store seams that can report readiness
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
}

type handlers struct{ deps Deps }

// Register mounts the meta routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}

	r.Get("/meta/health", phttp.JSONHandlerNoBody(h.health))
	r.Get("/meta/ready", phttp.JSONHandlerNoBody(h.ready))
	r.Get("/meta/version", phttp.JSONHandlerNoBody(h.version))
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

func (h *handlers) health(_ *stdhttp.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(_ *stdhttp.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	pg := ReadyCheck{Name: "pg", Status: "skipped"}
	if h.deps.PG != nil {
		pg.Status = "unknown"
		if p, ok := h.deps.PG.(Pinger); ok {
			pg.Status = "ok"
			if err := p.Ping(ctx); err != nil {
				pg.Status = "fail"
				pg.Error = err.Error()
			}
		}
	}

	overall := "ok"
	if pg.Status == "fail" {
		overall = "fail"
	} else if pg.Status != "ok" {
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pg},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *stdhttp.Request) (any, error) {
	return version.Info(), nil
}
