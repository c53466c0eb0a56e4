// Package sbs emits the weekly Inkigayo audience schedule. SBS takes
// applications only through its app, on a fixed weekly cadence, so there
// is nothing to crawl: the listing is generated from a rule.
//
// The rule: applications open Tuesday 10:00 and close Thursday 23:59, the
// show tapes Sunday 15:50 of the same week. Once the current window has
// closed the whole schedule rolls forward a week
package sbs

import (
	"context"
	"time"

	"bangcheong/internal/adapters/source"
)

const (
	listingTitle = "SBS 인기가요 (앱 신청)"
	infoLink     = "https://programs.sbs.co.kr/enter/gayo/basicinfo/83552"
	imageURL     = "https://img2.sbs.co.kr/img/sbs_cms/WE/2025/10/29/gPm1761716656469-640-360.jpg"
)

// SBS generates the recurring Inkigayo listing from the injected clock
type SBS struct {
	now func() time.Time
}

// New builds the SBS source. A nil clock defaults to time.Now
func New(now func() time.Time) *SBS {
	if now == nil {
		now = time.Now
	}
	return &SBS{now: now}
}

// Name implements source.Source
func (s *SBS) Name() string { return "sbs" }

// Fetch implements source.Source. It never performs network I/O
func (s *SBS) Fetch(ctx context.Context) ([]source.Listing, error) {
	applyEnd, showTime := schedule(s.now())
	return []source.Listing{{
		Title:       listingTitle,
		Broadcaster: "SBS",
		RawDate:     "매주 일요일 15:50",
		RecordDate:  &showTime,
		ApplyEnd:    &applyEnd,
		Link:        infoLink,
		ImageURL:    imageURL,
		Applying:    true,
	}}, nil
}

// schedule computes the application deadline and show time for the week
// that now falls into, weeks running Sunday through Saturday
func schedule(now time.Time) (applyEnd, showTime time.Time) {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	tuesday := today.AddDate(0, 0, 2-int(now.Weekday()))
	tuesday = time.Date(tuesday.Year(), tuesday.Month(), tuesday.Day(), 10, 0, 0, 0, loc)

	thursday := tuesday.AddDate(0, 0, 2)
	thursday = time.Date(thursday.Year(), thursday.Month(), thursday.Day(), 23, 59, 59, 0, loc)

	if now.After(thursday) {
		tuesday = tuesday.AddDate(0, 0, 7)
		thursday = thursday.AddDate(0, 0, 7)
	}

	sunday := tuesday.AddDate(0, 0, 5)
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 15, 50, 0, 0, loc)

	return thursday, sunday
}
