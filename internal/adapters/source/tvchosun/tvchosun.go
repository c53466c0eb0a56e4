// Package tvchosun crawls the TV Chosun bulletin post for audience
// recruitment. The post body is free text inside .cont-box, with the
// actual application form usually linked out to a naver.me short URL
package tvchosun

import (
	"context"
	"regexp"
	"strings"
	"time"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/adapters/source/fetchkit"
	"bangcheong/internal/core/kdate"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultPostURL = "https://broadcast.tvchosun.com/broadcast/program/2/C202500100/bbs/11600/C202500100_7/705835.cstv"

	listingTitle = "미스터트롯4 본선 3차 방청"

	unscheduled = "일정 확인 필요"
)

var (
	fullDateRe = regexp.MustCompile(`(\d{4}년\s*\d{1,2}월\s*\d{1,2}일)`)
	applyEndRe = regexp.MustCompile(`~\s*(\d{4}년\s*\d{1,2}월\s*\d{1,2}일)`)
)

// TVChosun crawls a single bulletin post. PostURL is overridable for tests
type TVChosun struct {
	client *fetchkit.Client

	PostURL string
}

// New builds the TV Chosun source against the production post
func New(client *fetchkit.Client) *TVChosun {
	return &TVChosun{client: client, PostURL: defaultPostURL}
}

// Name implements source.Source
func (t *TVChosun) Name() string { return "tvchosun" }

// Fetch implements source.Source
func (t *TVChosun) Fetch(ctx context.Context) ([]source.Listing, error) {
	doc, err := t.client.GetDocument(ctx, t.PostURL, nil)
	if err != nil {
		return nil, err
	}

	image, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	if strings.HasPrefix(image, "//") {
		image = "https:" + image
	}

	rawDate := unscheduled
	var applyEnd *time.Time
	link := t.PostURL

	doc.Find(".cont-box").Find("div, p, span").Each(func(_ int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())

		if strings.Contains(text, "녹화 일시") || strings.Contains(text, "녹화일") {
			if m := fullDateRe.FindStringSubmatch(text); m != nil {
				rawDate = m[1]
			}
		}

		if strings.Contains(text, "신청 기간") {
			if m := applyEndRe.FindStringSubmatch(text); m != nil {
				if d, ok := kdate.Normalize(m[1]); ok {
					applyEnd = &d
				}
			}
		}

		// The form link lives on whatever element mentions naver.me
		if strings.Contains(text, "naver.me") {
			if href, ok := el.Find("a").Attr("href"); ok && href != "" {
				link = href
			}
		}
	})

	l := source.Listing{
		Title:       listingTitle,
		Broadcaster: "TV CHOSUN",
		RawDate:     rawDate,
		ApplyEnd:    applyEnd,
		Link:        link,
		ImageURL:    image,
		Applying:    true,
	}
	if d, ok := kdate.Normalize(rawDate); ok {
		l.RecordDate = &d
	}
	return []source.Listing{l}, nil
}
