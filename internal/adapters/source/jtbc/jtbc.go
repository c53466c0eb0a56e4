// Package jtbc crawls the JTBC event page for audience recruitment. The
// page is free text, so taping date and application window are pulled out
// with label-anchored patterns
package jtbc

import (
	"context"
	"regexp"
	"strings"
	"time"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/adapters/source/fetchkit"
	"bangcheong/internal/core/kdate"
)

const (
	defaultEventURL = "https://tv.jtbc.co.kr/event/pr10011781/pm10071222"

	fallbackTitle = "싱어게인4 파이널 관객 모집"

	// unscheduled marks pages where no taping date could be extracted
	unscheduled = "일정 확인 필요"
)

var (
	recordRe = regexp.MustCompile(`녹화\s*:?\s*(\d{4}년\s*\d{1,2}월\s*\d{1,2}일)`)
	// the window end may omit the year when it matches the start's year
	applyRe = regexp.MustCompile(`신청\s*기간\s*:?[^~]*~\s*(\d{4}년)?\s*(\d{1,2}월\s*\d{1,2}일)`)
)

// JTBC crawls a single event page. EventURL is overridable for tests
type JTBC struct {
	client *fetchkit.Client
	now    func() time.Time

	EventURL string
}

// New builds the JTBC source against the production event page
func New(client *fetchkit.Client, now func() time.Time) *JTBC {
	if now == nil {
		now = time.Now
	}
	return &JTBC{client: client, now: now, EventURL: defaultEventURL}
}

// Name implements source.Source
func (j *JTBC) Name() string { return "jtbc" }

// Fetch implements source.Source
func (j *JTBC) Fetch(ctx context.Context) ([]source.Listing, error) {
	doc, err := j.client.GetDocument(ctx, j.EventURL, nil)
	if err != nil {
		return nil, err
	}

	title := fallbackTitle
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(strings.Replace(og, " | JTBC", "", 1))
	}

	image, _ := doc.Find(`meta[property="og:image"]`).Attr("content")

	text := doc.Find("div.cont_area").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Find("div.event_view").Text()
	}
	if strings.TrimSpace(text) == "" {
		text = doc.Find("body").Text()
	}

	now := j.now()

	rawDate := unscheduled
	if m := recordRe.FindStringSubmatch(text); m != nil {
		rawDate = m[1]
	}

	var applyEnd *time.Time
	if m := applyRe.FindStringSubmatch(text); m != nil {
		year := m[1]
		if year == "" {
			// Window end without a year inherits the current one
			year = now.Format("2006") + "년"
		}
		if d, ok := kdate.Normalize(year + " " + m[2]); ok {
			applyEnd = &d
		}
	}

	l := source.Listing{
		Title:       title,
		Broadcaster: "JTBC",
		RawDate:     rawDate,
		ApplyEnd:    applyEnd,
		Link:        j.EventURL,
		ImageURL:    image,
		Applying:    applyEnd == nil || !now.After(*applyEnd),
	}
	if d, ok := kdate.Normalize(rawDate); ok {
		l.RecordDate = &d
	}
	return []source.Listing{l}, nil
}
