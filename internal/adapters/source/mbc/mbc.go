// Package mbc is the MBC Show! Music Core source. The viewer committee
// recruitment is seasonal and currently closed, and the program site is
// client-rendered with an unstable API, so the source is kept registered
// but emits nothing.
//
// TODO: re-enable scraping once a stable weekly audience source exists at
// https://program.imbc.com/Apply/musiccore
package mbc

import (
	"context"

	"bangcheong/internal/adapters/source"
)

// MBC is a registered but dormant source
type MBC struct{}

// New builds the MBC source
func New() *MBC { return &MBC{} }

// Name implements source.Source
func (m *MBC) Name() string { return "mbc" }

// Fetch implements source.Source and always returns an empty result
func (m *MBC) Fetch(ctx context.Context) ([]source.Listing, error) {
	return nil, nil
}
