package model

import "time"

// Show statuses as stored in the `shows.status` column.
const (
	ShowStatusActive   = "ACTIVE"
	ShowStatusInactive = "INACTIVE"
)

// Show is the canonical identity of one performance tracked by the
// registry. Every scraped snapshot must be resolved to exactly one
// Show before any ledger row is written. A Show is immutable once
// registered except for CapacityTotal, which may be raised when a
// snapshot reports more tickets sold than the recorded capacity.
//
// Fields:
//  ID            – primary key identifier.
//  Artist        – performing artist or act name.
//  Venue         – venue name as registered.
//  ShowDate      – calendar date of the performance (day granularity).
//  ShowTime      – optional start time ("19:30:00"), empty when unknown.
//  Platform      – ticketing source the show is sold on.
//  CapacityTotal – total sellable tickets; only ever grows.
//  Status        – ACTIVE or INACTIVE; only active shows are matchable.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Show struct {
	ID            uint64    // shows.id
	Artist        string    // shows.artist
	Venue         string    // shows.venue
	ShowDate      time.Time // shows.show_date
	ShowTime      string    // shows.show_time (nullable TIME)
	Platform      string    // shows.platform
	CapacityTotal uint32    // shows.capacity_total
	Status        string    // shows.status
	CreatedAt     time.Time // shows.created_at
	UpdatedAt     time.Time // shows.updated_at
}
