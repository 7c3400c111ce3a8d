// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains the snapshot ingest queue.
package queue

const (
	// SnapshotQueueName carries raw sales snapshots pushed by scraper fleets.
	SnapshotQueueName = "sales.snapshot"
	// ReconciledQueueName carries events published after a snapshot lands
	// in the ledger.
	ReconciledQueueName = "sales.reconciled"
)

// SalesReconciledEvent is published when a snapshot has been matched and
// its daily row upserted. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type SalesReconciledEvent struct {
	ShowID            uint64  `json:"show_id"`
	Artist            string  `json:"artist"`
	Venue             string  `json:"venue"`
	Platform          string  `json:"platform"`
	SaleDate          string  `json:"sale_date"`
	DailySold         uint32  `json:"daily_sold"`
	DailyRevenue      string  `json:"daily_revenue"`
	CumulativeSold    uint32  `json:"cumulative_sold"`
	CumulativeRevenue string  `json:"cumulative_revenue"`
	OccupancyPct      float64 `json:"occupancy_pct"`
	Upsert            string  `json:"upsert"`
	ReconciledAt      string  `json:"reconciled_at"`
}
