// Package repository contains the data access layer for the show
// registry, the daily sales ledger and the API account tables. Shared
// sentinel errors live here so handlers and the reconciliation engine
// can branch on meaning instead of inspecting driver error strings.
package repository

import "errors"

// ErrShowNotFound is returned when a show id has no matching row.
var ErrShowNotFound = errors.New("show not found")

// ErrShowExists is returned when registering a show that collides with
// the unique (platform, artist, venue, show_date) key.
var ErrShowExists = errors.New("show already exists")
