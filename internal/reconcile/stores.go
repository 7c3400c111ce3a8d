// Package reconcile turns cumulative ticket-sales snapshots scraped from
// platform back-offices into an idempotent daily sales ledger. It matches
// each snapshot to a canonical show, diffs the cumulative counters against
// the prior ledger row and replaces the (show, day) record in place.
// Persistence is injected through the ShowStore and LedgerStore interfaces
// so the engine never touches a global database handle.
package reconcile

import (
	"context"
	"time"

	"github.com/showtix/salesledger/internal/model"
)

// UpsertStatus reports how the ledger store resolved a write.
type UpsertStatus string

const (
	UpsertInserted UpsertStatus = "INSERTED"
	UpsertUpdated  UpsertStatus = "UPDATED"
)

// ShowStore is the registry view the engine needs: candidate lookup for
// the matcher, creation for policy-gated auto-registration, and capacity
// refinement when a snapshot proves the recorded capacity stale.
type ShowStore interface {
	// ActiveByPlatform returns every ACTIVE show sold on the given platform.
	ActiveByPlatform(ctx context.Context, platform string) ([]model.Show, error)
	// Create registers a new show and fills in its generated fields.
	Create(ctx context.Context, s *model.Show) error
	// RaiseCapacity grows a show's capacity_total. It must never shrink it.
	RaiseCapacity(ctx context.Context, id uint64, capacity uint32) error
}

// LedgerStore persists daily ledger rows keyed by (show_id, sale_date).
type LedgerStore interface {
	// LatestBefore returns the most recent record whose sale date is
	// strictly earlier than day, or (nil, nil) when no prior history
	// exists. Same-day rows are excluded so a rerun never diffs against
	// its own earlier output.
	LatestBefore(ctx context.Context, showID uint64, day time.Time) (*model.DailySalesRecord, error)
	// Upsert inserts or fully replaces the row for (rec.ShowID,
	// rec.SaleDate) inside a single transaction and reports which of the
	// two happened. Fields are overwritten, never accumulated.
	Upsert(ctx context.Context, rec *model.DailySalesRecord) (UpsertStatus, error)
}
