package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySalesRecord is one row of the derived daily ledger, keyed
// uniquely by (ShowID, SaleDate). Daily figures are increments over
// the previous calendar day; cumulative figures mirror the platform's
// running counters at extraction time. Later snapshots for the same
// day replace every computed field in place, they never add to it,
// which is what makes reruns of the scraping pipeline safe.
//
// Fields:
//  ID                – primary key identifier.
//  ShowID            – show this row belongs to.
//  SaleDate          – calendar day in the reporting timezone.
//  DailySold         – tickets sold on this day (never negative).
//  DailyRevenue      – revenue taken on this day (never negative).
//  CumulativeSold    – platform counter as of the latest snapshot.
//  CumulativeRevenue – platform revenue counter, ditto.
//  TicketsAvailable  – capacity minus cumulative sold, floored at 0.
//  OccupancyPct      – percentage of capacity sold, 2 decimals.
//  AvgPrice          – daily revenue per daily ticket; carried forward
//                      from the previous row on zero-sale days.
//  Platform          – ticketing source, denormalized for reporting.
//  ExtractedAt       – timestamp of the snapshot that produced the row.
type DailySalesRecord struct {
	ID                uint64          // daily_sales.id
	ShowID            uint64          // daily_sales.show_id
	SaleDate          time.Time       // daily_sales.sale_date
	DailySold         uint32          // daily_sales.daily_sold
	DailyRevenue      decimal.Decimal // daily_sales.daily_revenue
	CumulativeSold    uint32          // daily_sales.cumulative_sold
	CumulativeRevenue decimal.Decimal // daily_sales.cumulative_revenue
	TicketsAvailable  uint32          // daily_sales.tickets_available
	OccupancyPct      float64         // daily_sales.occupancy_pct
	AvgPrice          decimal.Decimal // daily_sales.avg_price
	Platform          string          // daily_sales.platform
	ExtractedAt       time.Time       // daily_sales.extracted_at
	CreatedAt         time.Time       // daily_sales.created_at
	UpdatedAt         time.Time       // daily_sales.updated_at
}
