// Package kbs crawls KBS audience recruitment through two strategies: the
// board JSON API used by newer program sites and the legacy EUC-KR ticket
// pages, plus a discovery pass over the KBS event portal
package kbs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"bangcheong/internal/adapters/source"
	"bangcheong/internal/adapters/source/fetchkit"
	"bangcheong/internal/core/kdate"
	"bangcheong/internal/platform/logger"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultAPIURL    = "https://pbbsapi.kbs.co.kr/board/v1/list_board"
	defaultTicketURL = "https://kbsticket.kbs.co.kr/requestnew/list.do"

	// ticketGuideLink is the shared application guide popup for every
	// program on the ticket site
	ticketGuideLink = "https://kbsticket.kbs.co.kr/popupnew/guide.do"

	referer = "https://program.kbs.co.kr/"
)

type strategy int

const (
	strategyAPI strategy = iota
	strategyTicket
)

// program is one tracked KBS show. Code is a program_code for the API
// strategy and an m_seq for the ticket strategy
type program struct {
	code        string
	name        string
	broadcaster string
	kind        strategy
	link        string
}

var programs = []program{
	{
		code:        "T2000-0027",
		name:        "뮤직뱅크",
		broadcaster: "KBS2",
		kind:        strategyAPI,
		link:        "https://program.kbs.co.kr/2tv/enter/musicbank/pc/board.html?smenu=3b7ca1&m_seq=",
	},
	{
		code:        "8",
		name:        "개그콘서트",
		broadcaster: "KBS2",
		kind:        strategyTicket,
		link:        "https://program.kbs.co.kr/2tv/enter/gagcon/pc/board.html?smenu=3b7ca1&m_seq=8",
	},
	{
		code:        "7",
		name:        "가요무대",
		broadcaster: "KBS1",
		kind:        strategyTicket,
		link:        "https://program.kbs.co.kr/1tv/enter/gayo/pc/board.html?smenu=3b7ca1&m_seq=7",
	},
	{
		code:        "139",
		name:        "더 시즌즈",
		broadcaster: "KBS2",
		kind:        strategyTicket,
		link:        "https://program.kbs.co.kr/2tv/enter/theseasons/pc/board.html?smenu=8c80ee&bbs_loc=139,list,none,1,0",
	},
}

// KBS crawls the tracked program list. APIURL and TicketURL are
// overridable for tests
type KBS struct {
	client    *fetchkit.Client
	log       *logger.Logger
	APIURL    string
	TicketURL string
}

// New builds the KBS source against the production endpoints
func New(client *fetchkit.Client) *KBS {
	return &KBS{
		client:    client,
		log:       logger.Named("source.kbs"),
		APIURL:    defaultAPIURL,
		TicketURL: defaultTicketURL,
	}
}

// Name implements source.Source
func (k *KBS) Name() string { return "kbs" }

// Fetch crawls every tracked program. A single program failure is logged
// and skipped so the rest of the list still comes through
func (k *KBS) Fetch(ctx context.Context) ([]source.Listing, error) {
	var out []source.Listing
	for _, p := range programs {
		var (
			listings []source.Listing
			err      error
		)
		switch p.kind {
		case strategyAPI:
			listings, err = k.fetchBoard(ctx, p)
		case strategyTicket:
			listings, err = k.fetchTicket(ctx, p)
		}
		if err != nil {
			k.log.Warn().Err(err).Str("program", p.name).Msg("program crawl failed")
			continue
		}
		out = append(out, listings...)
	}
	return out, nil
}

// boardResponse is the list_board API envelope. ret != 0 signals a soft
// failure the API reports with HTTP 200
type boardResponse struct {
	Ret  int    `json:"ret"`
	Msg  string `json:"msg"`
	Data []struct {
		Title          string      `json:"title"`
		DateEventStart string      `json:"date_event_start"`
		PostID         json.Number `json:"post_id"`
	} `json:"data"`
}

func (k *KBS) fetchBoard(ctx context.Context, p program) ([]source.Listing, error) {
	q := url.Values{}
	q.Set("program_code", p.code)
	q.Set("bbs_db", "01")
	q.Set("attr", "01,02,10")
	q.Set("event_state", "ing")
	q.Set("page", "1")
	q.Set("page_size", "10")

	body, err := k.client.GetBytes(ctx, k.APIURL+"?"+q.Encode(), map[string]string{"Referer": referer})
	if err != nil {
		return nil, err
	}

	var resp boardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode board response: %w", err)
	}
	if resp.Ret != 0 || len(resp.Data) == 0 {
		return nil, nil
	}

	out := make([]source.Listing, 0, len(resp.Data))
	for _, item := range resp.Data {
		l := source.Listing{
			Title:       item.Title,
			Broadcaster: p.broadcaster,
			RawDate:     item.DateEventStart,
			Link:        p.link + item.PostID.String(),
			Applying:    true,
		}
		// The board posts carry the taping date in the title, not in a
		// dedicated field
		if d, ok := kdate.Normalize(item.Title); ok {
			l.RecordDate = &d
		}
		out = append(out, l)
	}
	return out, nil
}

func (k *KBS) fetchTicket(ctx context.Context, p program) ([]source.Listing, error) {
	u := k.TicketURL + "?m_seq=" + url.QueryEscape(p.code)
	doc, err := k.client.GetDocumentEUCKR(ctx, u, map[string]string{"Referer": referer})
	if err != nil {
		return nil, err
	}

	var out []source.Listing
	doc.Find("li.attend-list-box").Each(func(_ int, el *goquery.Selection) {
		state := strings.TrimSpace(el.Find(".state").Text())
		if !strings.Contains(state, "신청가능") {
			return
		}

		dateStr := strings.TrimSpace(strings.Join(strings.Fields(el.Find(".date").Text()), " "))
		title := strings.TrimSpace(el.Find(".tit").Text())
		if title == "" {
			title = p.name + " 방청신청"
		}

		l := source.Listing{
			Title:       title,
			Broadcaster: p.broadcaster,
			RawDate:     dateStr,
			Link:        p.link,
			GuideLink:   ticketGuideLink,
			Applying:    true,
		}
		if d, ok := kdate.Normalize(dateStr); ok {
			l.RecordDate = &d
		}

		// The result announcement date doubles as the application cutoff
		el.Find("dl").Each(func(_ int, dl *goquery.Selection) {
			if !strings.Contains(strings.TrimSpace(dl.Find("dt").Text()), "발표") {
				return
			}
			if d, ok := kdate.Normalize(strings.TrimSpace(dl.Find("dd").Text())); ok {
				l.ApplyEnd = &d
			}
		})

		out = append(out, l)
	})
	return out, nil
}
