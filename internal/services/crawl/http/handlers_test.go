package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	phttp "bangcheong/internal/platform/net/http"
	crawldom "bangcheong/internal/services/crawl/domain"
	progdom "bangcheong/internal/services/programs/domain"
)

type fakeCrawl struct {
	sum      crawldom.RunSummary
	err      error
	runs     int
	previews int
}

func (f *fakeCrawl) Run(ctx context.Context) (crawldom.RunSummary, error) {
	f.runs++
	return f.sum, f.err
}

func (f *fakeCrawl) Preview(ctx context.Context) (crawldom.RunSummary, error) {
	f.previews++
	return f.sum, f.err
}

type fakePrograms struct {
	rows []progdom.Program
	err  error
}

func (f *fakePrograms) ListAll(ctx context.Context) ([]progdom.Program, error) {
	return f.rows, f.err
}

func (f *fakePrograms) Create(ctx context.Context, p progdom.NewProgram) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (f *fakePrograms) Update(ctx context.Context, id uuid.UUID, u progdom.Update) error {
	return nil
}

func newTestRouter(crawl *fakeCrawl, programs *fakePrograms) stdhttp.Handler {
	r := phttp.AdaptChi(chi.NewMux())
	Register(r, Deps{Crawl: crawl, Programs: programs, CronSecret: "s3cret"})
	return r.Mux()
}

func TestTrigger_ManualCrawl(t *testing.T) {
	crawl := &fakeCrawl{sum: crawldom.RunSummary{
		Success: true, TotalCrawled: 4, CreatedCount: 2, UpdatedCount: 1,
	}}
	mux := newTestRouter(crawl, &fakePrograms{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodPost, "/crawl", nil))

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if crawl.runs != 1 {
		t.Fatalf("runs = %d", crawl.runs)
	}

	var env struct {
		Data crawldom.RunSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Data.Success || env.Data.CreatedCount != 2 {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestTrigger_CronRequiresSecret(t *testing.T) {
	crawl := &fakeCrawl{sum: crawldom.RunSummary{Success: true}}
	mux := newTestRouter(crawl, &fakePrograms{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/cron/update", nil))
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 before any source runs", rec.Code)
	}
	if crawl.runs != 0 {
		t.Fatal("crawl must not run without the secret")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/cron/update?secret=s3cret", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodGet, "/cron/update", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	mux.ServeHTTP(rec, req)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d with bearer token", rec.Code)
	}

	if crawl.runs != 2 {
		t.Fatalf("runs = %d", crawl.runs)
	}
}

func TestList_Programs(t *testing.T) {
	rows := []progdom.Program{{
		ID:          uuid.New(),
		Title:       "가요무대",
		Broadcaster: "KBS1",
		Category:    "음악방송",
		RecordDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		ManualLock:  true,
	}}
	mux := newTestRouter(&fakeCrawl{}, &fakePrograms{rows: rows})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/programs", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var env struct {
		Data []ProgramView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 {
		t.Fatalf("len = %d", len(env.Data))
	}
	if env.Data[0].Title != "가요무대" || !env.Data[0].ManualLock {
		t.Fatalf("view = %+v", env.Data[0])
	}
}

func TestTrigger_DryRunBody(t *testing.T) {
	crawl := &fakeCrawl{sum: crawldom.RunSummary{Success: true}}
	mux := newTestRouter(crawl, &fakePrograms{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodPost, "/crawl", strings.NewReader(`{"dryRun":true}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if crawl.previews != 1 || crawl.runs != 0 {
		t.Fatalf("previews = %d runs = %d, want dry run routed to preview", crawl.previews, crawl.runs)
	}
}

func TestTrigger_ManualIsPostOnly(t *testing.T) {
	mux := newTestRouter(&fakeCrawl{}, &fakePrograms{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/crawl", nil))
	if rec.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
