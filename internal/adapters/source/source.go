// Package source defines the contract every broadcaster adapter implements
// and the listing record they all map into. Each site keeps its scraping
// quirks inside its own subpackage; the crawl pipeline only sees Listings
package source

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Listing is one crawled, not-yet-persisted audience recruitment entry
type Listing struct {
	// Title and Broadcaster are always non-empty for a well-formed listing
	Title       string
	Broadcaster string

	// RawDate keeps the site's original date text for diagnostics
	RawDate string

	// RecordDate is the normalized taping date, nil when unparseable
	RecordDate *time.Time

	// ApplyEnd is the application deadline or result announcement, nil when
	// the site does not expose one
	ApplyEnd *time.Time

	Link      string
	GuideLink string
	ImageURL  string

	// Applying marks entries whose application window looks open
	Applying bool
}

// Usable reports whether the listing carries at least one reconcilable date.
// Listings with neither date are dropped before reconciliation
func (l Listing) Usable() bool { return l.RecordDate != nil || l.ApplyEnd != nil }

// Source produces the current listings for one broadcaster.
// Fetch errors are isolated by the orchestrator; a source outage must never
// take down the batch. An empty result is indistinguishable from "nothing
// currently open" and callers must not treat it as a failure signal
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Listing, error)
}

// Registry is a read-only, ordered collection of sources
type Registry struct {
	ordered []Source
	byName  map[string]Source
}

// NewRegistry validates and indexes the given sources
func NewRegistry(sources ...Source) (Registry, error) {
	byName := make(map[string]Source, len(sources))
	ordered := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s == nil {
			return Registry{}, fmt.Errorf("source: nil source")
		}
		name := strings.ToLower(strings.TrimSpace(s.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("source: empty source name")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("source: duplicate source %q", name)
		}
		byName[name] = s
		ordered = append(ordered, s)
	}
	return Registry{ordered: ordered, byName: byName}, nil
}

// All returns the sources in registration order
func (r Registry) All() []Source { return r.ordered }

// Get looks a source up by name
func (r Registry) Get(name string) (Source, bool) {
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Len returns the number of registered sources
func (r Registry) Len() int { return len(r.ordered) }
