package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/platform/testkit"
	pdom "bangcheong/internal/services/programs/domain"
)

type stubSource struct {
	name     string
	listings []source.Listing
	err      error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context) ([]source.Listing, error) {
	return s.listings, s.err
}

type memStore struct {
	mu       sync.Mutex
	rows     []pdom.Program
	listErr  error
	creates  int
	updates  int
	failWith error
}

func (m *memStore) ListAll(ctx context.Context) ([]pdom.Program, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pdom.Program, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memStore) Create(ctx context.Context, p pdom.NewProgram) (uuid.UUID, error) {
	if m.failWith != nil {
		return uuid.Nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	id := uuid.New()
	m.rows = append(m.rows, pdom.Program{
		ID: id, Title: p.Title, Broadcaster: p.Broadcaster, Category: p.Category,
		RecordDate: p.RecordDate, ApplyStart: p.ApplyStart, ApplyEnd: p.ApplyEnd,
		Link: p.Link, ImageURL: p.ImageURL, ExtraData: p.ExtraData,
	})
	return id, nil
}

func (m *memStore) Update(ctx context.Context, id uuid.UUID, u pdom.Update) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	return nil
}

func fixedNow() time.Time { return time.Date(2025, 1, 2, 12, 0, 0, 0, time.Local) }

func mustRegistry(t *testing.T, sources ...source.Source) source.Registry {
	t.Helper()
	r, err := source.NewRegistry(sources...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestNew_NilProgramsPanics(t *testing.T) {
	testkit.MustPanic(t, func() { New(source.Registry{}, nil, fixedNow) })
}

func TestRun_FailingSourceIsIsolated(t *testing.T) {
	rd := fixedNow().AddDate(0, 0, 3)
	reg := mustRegistry(t,
		stubSource{name: "good", listings: []source.Listing{{
			Title: "가요무대", Broadcaster: "KBS1", RecordDate: &rd, Applying: true,
		}}},
		stubSource{name: "broken", err: errors.New("connection refused")},
	)
	st := &memStore{}

	sum, err := New(reg, st, fixedNow).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sum.Success {
		t.Error("run must succeed despite a broken source")
	}
	if sum.TotalCrawled != 1 || sum.CreatedCount != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.ApplyingCount != 1 {
		t.Errorf("applyingCount = %d, want 1", sum.ApplyingCount)
	}
	if sum.PerSource["good"] != 1 || sum.PerSource["broken"] != 0 {
		t.Fatalf("perSource = %v", sum.PerSource)
	}
	if st.creates != 1 {
		t.Fatalf("store creates = %d", st.creates)
	}
}

func TestRun_CountsDropsAndLockSkips(t *testing.T) {
	rd := time.Date(2025, 1, 5, 19, 0, 0, 0, time.Local)
	reg := mustRegistry(t, stubSource{name: "kbs", listings: []source.Listing{
		{Title: "뮤직뱅크", Broadcaster: "KBS2", RecordDate: &rd},
		{Title: "미정", Broadcaster: "KBS2"},
	}})
	st := &memStore{rows: []pdom.Program{{
		ID: uuid.New(), Title: "뮤직뱅크", Broadcaster: "KBS2",
		RecordDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local),
		ManualLock: true,
	}}}

	sum, err := New(reg, st, fixedNow).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.SkippedLocked != 1 {
		t.Errorf("skippedLocked = %d", sum.SkippedLocked)
	}
	if sum.DroppedCount != 1 {
		t.Errorf("dropped = %d", sum.DroppedCount)
	}
	if sum.ApplyingCount != 0 {
		t.Errorf("applyingCount = %d, want 0 for closed windows", sum.ApplyingCount)
	}
	if sum.CreatedCount != 0 || sum.UpdatedCount != 0 {
		t.Errorf("summary = %+v, locked row must stay untouched", sum)
	}
}

func TestRun_WriteFailureDoesNotAbort(t *testing.T) {
	rd1 := time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local)
	rd2 := time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)
	reg := mustRegistry(t, stubSource{name: "kbs", listings: []source.Listing{
		{Title: "가요무대", Broadcaster: "KBS1", RecordDate: &rd1},
		{Title: "개그콘서트", Broadcaster: "KBS2", RecordDate: &rd2},
	}})
	st := &memStore{failWith: errors.New("disk full")}

	sum, err := New(reg, st, fixedNow).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.FailedCount != 2 || sum.CreatedCount != 0 {
		t.Fatalf("summary = %+v, want both failures counted", sum)
	}
	if !sum.Success {
		t.Error("partial write failure still reports a summary")
	}
}

func TestPreview_DoesNotWrite(t *testing.T) {
	rd := fixedNow().AddDate(0, 0, 3)
	reg := mustRegistry(t, stubSource{name: "kbs", listings: []source.Listing{{
		Title: "가요무대", Broadcaster: "KBS1", RecordDate: &rd,
	}}})
	st := &memStore{}

	sum, err := New(reg, st, fixedNow).Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if sum.CreatedCount != 1 {
		t.Fatalf("summary = %+v, preview still reports the plan", sum)
	}
	if st.creates != 0 || st.updates != 0 {
		t.Fatal("preview must not touch the store")
	}
}

func TestRun_SnapshotFailureSurfaces(t *testing.T) {
	reg := mustRegistry(t, stubSource{name: "kbs"})
	st := &memStore{listErr: errors.New("db down")}

	if _, err := New(reg, st, fixedNow).Run(context.Background()); err == nil {
		t.Fatal("snapshot failure must surface")
	}
}
