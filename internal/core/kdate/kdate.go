// Package kdate parses the free-text Korean date strings the broadcaster
// sites publish into concrete timestamps
//
// Accepted forms include
//
//	2024.01.05 (금) 19:00
//	2024-01-05
//	2026년 1월 6일
//	2024.01.05 19:00
//	뮤직뱅크 방청 안내 2026.01.09 (금)
//
// The date may sit anywhere in the text; board post titles carry it after a
// free-form prefix and sometimes inside parentheses. Parsing is best effort:
// anything that does not yield a year, month and day reports ok=false instead
// of an error. A missing time-of-day defaults to 00:00, which downstream
// treats as "no time specified" rather than midnight
package kdate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	// year-first calendar date, dotted/dashed/slashed or with 년/월/일
	// unit markers, embedded anywhere in the surrounding text
	dateRe = regexp.MustCompile(`(\d{4})\s*[.\-/년]\s*(\d{1,2})\s*[.\-/월]\s*(\d{1,2})`)
)

// Normalize converts a Korean date/time string into a local timestamp.
// ok is false when no calendar date could be extracted; Normalize never panics
func Normalize(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if m := timeRe.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		s = strings.Replace(s, m[0], "", 1)
	}

	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
}

// SameDay reports whether a and b fall on the same local calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
