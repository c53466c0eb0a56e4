package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/core/kdate"
	pdom "bangcheong/internal/services/programs/domain"
)

// applyEndFallback pads a missing application deadline. It is a documented
// default, not a real deadline
const applyEndFallback = 7 * 24 * time.Hour

// plan is the set of store mutations one reconcile pass decided on
type plan struct {
	creates       []pdom.NewProgram
	updates       []plannedUpdate
	skippedLocked int
	dropped       int
}

type plannedUpdate struct {
	id     uuid.UUID
	fields pdom.Update
}

// extraBlob is the persisted extra_data shape
type extraBlob struct {
	Link      string `json:"link"`
	GuideLink string `json:"guideLink,omitempty"`
}

func extraData(l source.Listing) string {
	b, _ := json.Marshal(extraBlob{Link: l.Link, GuideLink: l.GuideLink})
	return string(b)
}

// category guesses a default category from the title on first sighting
func category(title string) string {
	if strings.Contains(title, "개그") {
		return "공개방송"
	}
	return "음악방송"
}

// reconcile matches listings against a snapshot of the store and decides
// per listing whether to create, update or skip. It is pure: the caller
// applies the plan.
//
// Matching key is title + broadcaster + same calendar day of the record
// date, with the listing's missing record date degrading to now. The key
// is not truly unique; the first snapshot candidate wins, which is
// deterministic because the snapshot is ordered
func reconcile(listings []source.Listing, snapshot []pdom.Program, now time.Time) plan {
	var p plan

	for _, l := range listings {
		if !l.Usable() {
			p.dropped++
			continue
		}

		day := now
		if l.RecordDate != nil {
			day = *l.RecordDate
		}

		match := findMatch(snapshot, l, day)
		if match == nil {
			if c := findPending(p.creates, l, day); c != nil {
				// Duplicate within the batch folds into the planned create
				continue
			}
			p.creates = append(p.creates, newProgram(l, now))
			continue
		}

		if match.ManualLock {
			p.skippedLocked++
			continue
		}

		var u pdom.Update
		if l.RecordDate != nil && !l.RecordDate.Equal(match.RecordDate) {
			u.RecordDate = l.RecordDate
		}
		if l.ApplyEnd != nil && !l.ApplyEnd.Equal(match.ApplyEnd) {
			u.ApplyEnd = l.ApplyEnd
		}
		// Links are refreshed through extra_data every run so they stay
		// current even when the dates are stable
		if extra := extraData(l); extra != match.ExtraData {
			u.ExtraData = &extra
		}
		if !u.Empty() {
			p.updates = append(p.updates, plannedUpdate{id: match.ID, fields: u})
		}
	}

	return p
}

func findMatch(snapshot []pdom.Program, l source.Listing, day time.Time) *pdom.Program {
	for i := range snapshot {
		c := &snapshot[i]
		if c.Title != l.Title || c.Broadcaster != l.Broadcaster {
			continue
		}
		if kdate.SameDay(c.RecordDate, day) {
			return c
		}
	}
	return nil
}

func findPending(creates []pdom.NewProgram, l source.Listing, day time.Time) *pdom.NewProgram {
	for i := range creates {
		c := &creates[i]
		if c.Title == l.Title && c.Broadcaster == l.Broadcaster && kdate.SameDay(c.RecordDate, day) {
			return c
		}
	}
	return nil
}

func newProgram(l source.Listing, now time.Time) pdom.NewProgram {
	recordDate := now
	if l.RecordDate != nil {
		recordDate = *l.RecordDate
	}
	applyEnd := now.Add(applyEndFallback)
	if l.ApplyEnd != nil {
		applyEnd = *l.ApplyEnd
	}
	return pdom.NewProgram{
		Title:       l.Title,
		Broadcaster: l.Broadcaster,
		Category:    category(l.Title),
		RecordDate:  recordDate,
		ApplyStart:  now,
		ApplyEnd:    applyEnd,
		Link:        l.Link,
		ImageURL:    l.ImageURL,
		ExtraData:   extraData(l),
	}
}
