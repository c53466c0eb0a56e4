// Package domain holds the crawl pipeline types independent of transport
package domain

import "context"

// RunSummary is the externally observable result of one pipeline run.
// A run always completes and reports a summary, even when every source
// came back empty
type RunSummary struct {
	Success       bool           `json:"success"`
	TotalCrawled  int            `json:"totalCrawled"`
	ApplyingCount int            `json:"applyingCount"`
	CreatedCount  int            `json:"createdCount"`
	UpdatedCount  int            `json:"updatedCount"`
	SkippedLocked int            `json:"skippedLocked"`
	DroppedCount  int            `json:"droppedCount"`
	FailedCount   int            `json:"failedCount"`
	PerSource     map[string]int `json:"perSource"`
}

// ServicePort is the interface implemented by the crawl service
type ServicePort interface {
	// Run crawls all sources, reconciles against the store and applies
	// the resulting creates and updates
	Run(ctx context.Context) (RunSummary, error)

	// Preview computes the same summary without writing anything
	Preview(ctx context.Context) (RunSummary, error)
}
