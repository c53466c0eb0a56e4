// Package domain holds the persisted program types independent of transport
// or storage
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Program is one canonical audience recruitment record. Rows are created
// and mutated by the crawl pipeline and never deleted by it
type Program struct {
	ID          uuid.UUID
	Title       string
	Broadcaster string
	Category    string
	RecordDate  time.Time
	ApplyStart  time.Time
	ApplyEnd    time.Time
	Link        string
	ImageURL    string

	// ExtraData is an opaque JSON blob for adapter extras such as guideLink
	ExtraData string

	// ManualLock is set by a human editor; locked rows are never overwritten
	// by the pipeline
	ManualLock bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProgram carries the fields for a first sighting insert
type NewProgram struct {
	Title       string
	Broadcaster string
	Category    string
	RecordDate  time.Time
	ApplyStart  time.Time
	ApplyEnd    time.Time
	Link        string
	ImageURL    string
	ExtraData   string
}

// Update is a partial mutation; nil fields are left untouched
type Update struct {
	RecordDate *time.Time
	ApplyEnd   *time.Time
	Link       *string
	ImageURL   *string
	ExtraData  *string
}

// Empty reports whether the update would change nothing
func (u Update) Empty() bool {
	return u.RecordDate == nil && u.ApplyEnd == nil && u.Link == nil && u.ImageURL == nil && u.ExtraData == nil
}
