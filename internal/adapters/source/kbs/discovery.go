package kbs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/adapters/source/fetchkit"
	"bangcheong/internal/platform/logger"
)

const defaultEventURL = "https://event.kbs.co.kr/"

// payloadRe matches the JSON blob the event portal embeds in an inline
// script as var json = JSON.parse('...')
var payloadRe = regexp.MustCompile(`var json = JSON\.parse\('([^']+)'\)`)

// Discovery scans the KBS event portal for program links not covered by
// the tracked program list. Discovered entries are advisory: they carry a
// "[New] " title prefix, no application window and Applying false
type Discovery struct {
	client *fetchkit.Client
	log    *logger.Logger
	now    func() time.Time

	// EventURL is overridable for tests
	EventURL string
}

// NewDiscovery builds the discovery source against the production portal
func NewDiscovery(client *fetchkit.Client, now func() time.Time) *Discovery {
	if now == nil {
		now = time.Now
	}
	return &Discovery{
		client:   client,
		log:      logger.Named("source.kbs-discovery"),
		now:      now,
		EventURL: defaultEventURL,
	}
}

// Name implements source.Source
func (d *Discovery) Name() string { return "kbs-discovery" }

// Fetch implements source.Source
func (d *Discovery) Fetch(ctx context.Context) ([]source.Listing, error) {
	body, err := d.client.GetBytes(ctx, d.EventURL, nil)
	if err != nil {
		return nil, err
	}

	payload, ok := extractPayload(string(body))
	if !ok {
		// Not an error: the portal periodically ships without the blob
		d.log.Info().Msg("no embedded payload on event portal")
		return nil, nil
	}

	var root any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	now := d.now()
	seen := make(map[string]struct{})
	var out []source.Listing
	walkPayload(root, func(title, link string) {
		if !strings.Contains(link, "program.kbs.co.kr") {
			return
		}
		if utf8.RuneCountInString(title) <= 2 || strings.Contains(title, "로그인") {
			return
		}
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}
		out = append(out, source.Listing{
			Title:       "[New] " + title,
			Broadcaster: "KBS",
			RawDate:     "일정 확인 필요",
			RecordDate:  &now,
			Link:        link,
			Applying:    false,
		})
	})
	return out, nil
}

// extractPayload pulls the embedded JSON string out of the page and
// repairs the escaped quotes the inline script carries
func extractPayload(html string) (string, bool) {
	m := payloadRe.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], `\"`, `"`), true
}

// walkPayload visits every object in the payload tree and emits each
// title plus target_url pair it finds
func walkPayload(node any, emit func(title, link string)) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			walkPayload(item, emit)
		}
	case map[string]any:
		link, hasLink := v["target_url"].(string)
		title, hasTitle := v["title"].(string)
		if hasLink && hasTitle {
			emit(title, link)
		}
		for _, item := range v {
			walkPayload(item, emit)
		}
	}
}
