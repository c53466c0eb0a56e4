package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"bangcheong/internal/adapters/source"
	pdom "bangcheong/internal/services/programs/domain"
)

var now = time.Date(2025, 1, 2, 12, 0, 0, 0, time.Local)

func tp(t time.Time) *time.Time { return &t }

func TestReconcile_CreateOnFirstSighting(t *testing.T) {
	rd := time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local)
	listing := source.Listing{
		Title:       "가요무대",
		Broadcaster: "KBS1",
		RecordDate:  tp(rd),
		Link:        "https://program.kbs.co.kr/gayo",
	}

	p := reconcile([]source.Listing{listing}, nil, now)
	if len(p.creates) != 1 || len(p.updates) != 0 {
		t.Fatalf("plan = %d creates %d updates, want 1/0", len(p.creates), len(p.updates))
	}

	c := p.creates[0]
	if !c.RecordDate.Equal(rd) {
		t.Errorf("record date = %v", c.RecordDate)
	}
	if !c.ApplyStart.Equal(now) {
		t.Errorf("apply start = %v, want now", c.ApplyStart)
	}
	if !c.ApplyEnd.Equal(now.Add(applyEndFallback)) {
		t.Errorf("apply end = %v, want now+7d fallback", c.ApplyEnd)
	}
	if c.Category != "음악방송" {
		t.Errorf("category = %q", c.Category)
	}
	if c.ExtraData != `{"link":"https://program.kbs.co.kr/gayo"}` {
		t.Errorf("extra data = %q", c.ExtraData)
	}
}

func TestReconcile_CategoryHeuristic(t *testing.T) {
	listing := source.Listing{
		Title:       "개그콘서트 공개녹화",
		Broadcaster: "KBS2",
		RecordDate:  tp(now),
	}
	p := reconcile([]source.Listing{listing}, nil, now)
	if len(p.creates) != 1 {
		t.Fatalf("creates = %d", len(p.creates))
	}
	if p.creates[0].Category != "공개방송" {
		t.Errorf("category = %q", p.creates[0].Category)
	}
}

func TestReconcile_SameDayDifferentTimeUpdatesInPlace(t *testing.T) {
	newTime := time.Date(2025, 1, 5, 19, 0, 0, 0, time.Local)
	listing := source.Listing{
		Title:       "뮤직뱅크",
		Broadcaster: "KBS2",
		RecordDate:  tp(newTime),
		Link:        "https://program.kbs.co.kr/musicbank",
	}
	stored := pdom.Program{
		ID:          uuid.New(),
		Title:       "뮤직뱅크",
		Broadcaster: "KBS2",
		RecordDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local),
		ExtraData:   extraData(listing),
	}

	p := reconcile([]source.Listing{listing}, []pdom.Program{stored}, now)
	if len(p.creates) != 0 {
		t.Fatalf("creates = %d, want same-day match instead of duplicate", len(p.creates))
	}
	if len(p.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(p.updates))
	}

	u := p.updates[0]
	if u.id != stored.ID {
		t.Error("update must target the matched row")
	}
	if u.fields.RecordDate == nil || !u.fields.RecordDate.Equal(newTime) {
		t.Errorf("record date = %v, want %v", u.fields.RecordDate, newTime)
	}
	if u.fields.ApplyEnd != nil || u.fields.ExtraData != nil {
		t.Errorf("fields = %+v, want only record date", u.fields)
	}
}

func TestReconcile_LockedMatchIsSkipped(t *testing.T) {
	listing := source.Listing{
		Title:       "뮤직뱅크",
		Broadcaster: "KBS2",
		RecordDate:  tp(time.Date(2025, 1, 5, 19, 0, 0, 0, time.Local)),
	}
	stored := pdom.Program{
		ID:          uuid.New(),
		Title:       "뮤직뱅크",
		Broadcaster: "KBS2",
		RecordDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local),
		ManualLock:  true,
	}

	p := reconcile([]source.Listing{listing}, []pdom.Program{stored}, now)
	if len(p.creates) != 0 || len(p.updates) != 0 {
		t.Fatalf("plan = %d/%d, want locked row untouched", len(p.creates), len(p.updates))
	}
	if p.skippedLocked != 1 {
		t.Fatalf("skippedLocked = %d, want 1", p.skippedLocked)
	}
}

func TestReconcile_UnusableListingIsDropped(t *testing.T) {
	listing := source.Listing{Title: "미정", Broadcaster: "MBC", RawDate: "추후 공지"}
	p := reconcile([]source.Listing{listing}, nil, now)
	if len(p.creates) != 0 || p.dropped != 1 {
		t.Fatalf("creates = %d dropped = %d, want 0/1", len(p.creates), p.dropped)
	}
}

func TestReconcile_NilRecordDateMatchesAgainstNow(t *testing.T) {
	// Degraded fallback: a listing without a record date compares its
	// calendar day as today
	listing := source.Listing{
		Title:       "더 시즌즈 방청신청",
		Broadcaster: "KBS2",
		ApplyEnd:    tp(time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local)),
	}
	stored := pdom.Program{
		ID:          uuid.New(),
		Title:       "더 시즌즈 방청신청",
		Broadcaster: "KBS2",
		RecordDate:  now,
		ApplyEnd:    time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local),
		ExtraData:   extraData(listing),
	}

	p := reconcile([]source.Listing{listing}, []pdom.Program{stored}, now)
	if len(p.creates) != 0 || len(p.updates) != 0 {
		t.Fatalf("plan = %d/%d, want clean no-op match", len(p.creates), len(p.updates))
	}
}

func TestReconcile_ExtraDataRefreshAlone(t *testing.T) {
	rd := time.Date(2025, 1, 5, 19, 0, 0, 0, time.Local)
	listing := source.Listing{
		Title:       "개그콘서트",
		Broadcaster: "KBS2",
		RecordDate:  tp(rd),
		Link:        "https://program.kbs.co.kr/gagcon",
		GuideLink:   "https://kbsticket.kbs.co.kr/popupnew/guide.do",
	}
	stored := pdom.Program{
		ID:          uuid.New(),
		Title:       "개그콘서트",
		Broadcaster: "KBS2",
		RecordDate:  rd,
		ExtraData:   `{"link":"https://old.example.com"}`,
	}

	p := reconcile([]source.Listing{listing}, []pdom.Program{stored}, now)
	if len(p.updates) != 1 {
		t.Fatalf("updates = %d, want extra data refresh", len(p.updates))
	}
	u := p.updates[0].fields
	if u.RecordDate != nil || u.ApplyEnd != nil {
		t.Errorf("fields = %+v, want only extra data", u)
	}
	if u.ExtraData == nil || *u.ExtraData != extraData(listing) {
		t.Errorf("extra data = %v", u.ExtraData)
	}
}

func TestReconcile_BatchDuplicateFoldsIntoOneCreate(t *testing.T) {
	listing := source.Listing{
		Title:       "전국노래자랑",
		Broadcaster: "KBS1",
		RecordDate:  tp(time.Date(2025, 1, 12, 0, 0, 0, 0, time.Local)),
	}
	p := reconcile([]source.Listing{listing, listing}, nil, now)
	if len(p.creates) != 1 {
		t.Fatalf("creates = %d, want batch duplicate folded", len(p.creates))
	}
}

// applyToSnapshot simulates the store applying a plan, for the idempotence
// property
func applyToSnapshot(snapshot []pdom.Program, p plan) []pdom.Program {
	out := make([]pdom.Program, len(snapshot))
	copy(out, snapshot)
	for _, c := range p.creates {
		out = append(out, pdom.Program{
			ID:          uuid.New(),
			Title:       c.Title,
			Broadcaster: c.Broadcaster,
			Category:    c.Category,
			RecordDate:  c.RecordDate,
			ApplyStart:  c.ApplyStart,
			ApplyEnd:    c.ApplyEnd,
			Link:        c.Link,
			ImageURL:    c.ImageURL,
			ExtraData:   c.ExtraData,
		})
	}
	for _, u := range p.updates {
		for i := range out {
			if out[i].ID != u.id {
				continue
			}
			if u.fields.RecordDate != nil {
				out[i].RecordDate = *u.fields.RecordDate
			}
			if u.fields.ApplyEnd != nil {
				out[i].ApplyEnd = *u.fields.ApplyEnd
			}
			if u.fields.ExtraData != nil {
				out[i].ExtraData = *u.fields.ExtraData
			}
		}
	}
	return out
}

func TestReconcile_Idempotence(t *testing.T) {
	listings := []source.Listing{
		{
			Title:       "가요무대",
			Broadcaster: "KBS1",
			RecordDate:  tp(time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local)),
			Link:        "https://program.kbs.co.kr/gayo",
		},
		{
			Title:       "뮤직뱅크",
			Broadcaster: "KBS2",
			RecordDate:  tp(time.Date(2025, 1, 9, 19, 0, 0, 0, time.Local)),
			ApplyEnd:    tp(time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local)),
			Link:        "https://program.kbs.co.kr/musicbank",
			GuideLink:   "https://kbsticket.kbs.co.kr/popupnew/guide.do",
		},
		{
			Title:       "SBS 인기가요 (앱 신청)",
			Broadcaster: "SBS",
			RecordDate:  tp(time.Date(2025, 1, 5, 15, 50, 0, 0, time.Local)),
			ApplyEnd:    tp(time.Date(2025, 1, 2, 23, 59, 59, 0, time.Local)),
			Link:        "https://programs.sbs.co.kr/enter/gayo",
		},
	}

	snapshot := []pdom.Program{{
		ID:          uuid.New(),
		Title:       "뮤직뱅크",
		Broadcaster: "KBS2",
		RecordDate:  time.Date(2025, 1, 9, 0, 0, 0, 0, time.Local),
		ApplyEnd:    time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
	}}

	first := reconcile(listings, snapshot, now)
	if len(first.creates) != 2 || len(first.updates) != 1 {
		t.Fatalf("first plan = %d creates %d updates", len(first.creates), len(first.updates))
	}

	second := reconcile(listings, applyToSnapshot(snapshot, first), now)
	if len(second.creates) != 0 || len(second.updates) != 0 || second.skippedLocked != 0 {
		t.Fatalf("second plan = %d/%d/%d, want all zero",
			len(second.creates), len(second.updates), second.skippedLocked)
	}
}
