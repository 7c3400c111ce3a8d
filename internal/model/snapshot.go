package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleSnapshot is one extraction's reading of a show's cumulative
// sales counters, in the single canonical shape every platform
// adapter must produce. It is transient: snapshots arrive over HTTP
// or the sales.snapshot queue, are reconciled into the daily ledger,
// and are never persisted as-is.
//
// ArtistRaw/VenueRaw carry whatever the back-office page displayed;
// the matcher normalizes them before comparing against the registry.
// DateHint, when present, identifies the performance date, not the
// extraction date.
type SaleSnapshot struct {
	ArtistRaw         string          `json:"artist"`
	VenueRaw          string          `json:"venue"`
	DateHint          string          `json:"date_hint,omitempty"`
	Platform          string          `json:"platform"`
	CumulativeSold    int64           `json:"cumulative_sold"`
	CumulativeRevenue decimal.Decimal `json:"cumulative_revenue"`
	ExtractedAt       time.Time       `json:"extracted_at"`
}
