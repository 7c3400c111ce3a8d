package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/showtix/salesledger/internal/model"
)

// Status tags the overall outcome of reconciling one snapshot.
type Status string

const (
	StatusPersisted Status = "PERSISTED"
	StatusUnmatched Status = "UNMATCHED"
	StatusAmbiguous Status = "AMBIGUOUS"
	StatusInvalid   Status = "INVALID"
)

// Outcome is the tagged result of Process. Record, Show and Upsert are
// set only when Status is PERSISTED; Reason explains every other status.
// None of the non-persisted statuses is an error: the caller logs them
// and moves on to the next snapshot.
type Outcome struct {
	Status     Status
	Reason     string
	Show       *model.Show
	Candidates []model.Show
	Upsert     UpsertStatus
	Record     *model.DailySalesRecord
}

// Config tunes per-deployment engine behavior.
type Config struct {
	// ReportingTZ is the fixed timezone extraction timestamps are
	// converted into before deriving the sale date. Defaults to UTC.
	ReportingTZ *time.Location
	// AutoRegisterPlatforms lists the platforms allowed to create a show
	// from a first-seen snapshot. Empty means auto-registration is off.
	AutoRegisterPlatforms []string
	// AutoRegisterMinCapacity floors the capacity guessed for an
	// auto-registered show.
	AutoRegisterMinCapacity uint32
}

// Engine composes the matcher, the delta and occupancy calculators and
// the ledger upsert into the one entry point callers use. Both stores
// are injected; the engine holds no global state, so unit tests run it
// against in-memory fakes.
type Engine struct {
	shows   ShowStore
	ledger  LedgerStore
	matcher *Matcher
	tz      *time.Location
}

// NewEngine wires an Engine from its stores and config.
func NewEngine(shows ShowStore, ledger LedgerStore, cfg Config) *Engine {
	tz := cfg.ReportingTZ
	if tz == nil {
		tz = time.UTC
	}
	return &Engine{
		shows:   shows,
		ledger:  ledger,
		matcher: NewMatcher(shows, cfg.AutoRegisterPlatforms, cfg.AutoRegisterMinCapacity),
		tz:      tz,
	}
}

// Process reconciles a single snapshot end to end: validate, match
// against the registry, diff against the prior ledger row, compute
// occupancy and replace the (show, day) record. Unmatched, ambiguous
// and invalid snapshots come back as non-error Outcomes; only registry
// lookups and the upsert transaction can fail with an error.
func (e *Engine) Process(ctx context.Context, snap model.SaleSnapshot) (Outcome, error) {
	if reason := validateSnapshot(snap); reason != "" {
		// Preserve the raw input in the log so a human can review what
		// the adapter actually scraped.
		log.Printf("reconcile: invalid snapshot dropped (%s): artist=%q venue=%q platform=%q date_hint=%q sold=%d revenue=%s",
			reason, snap.ArtistRaw, snap.VenueRaw, snap.Platform, snap.DateHint, snap.CumulativeSold, snap.CumulativeRevenue)
		return Outcome{Status: StatusInvalid, Reason: reason}, nil
	}

	saleDate := dayOf(snap.ExtractedAt.In(e.tz))

	showDate := saleDate
	hasDate := false
	if strings.TrimSpace(snap.DateHint) != "" {
		parsed, err := parseDateHint(snap.DateHint)
		if err != nil {
			log.Printf("reconcile: invalid snapshot dropped (bad date hint): artist=%q venue=%q platform=%q date_hint=%q",
				snap.ArtistRaw, snap.VenueRaw, snap.Platform, snap.DateHint)
			return Outcome{Status: StatusInvalid, Reason: "unparseable date_hint"}, nil
		}
		showDate = parsed
		hasDate = true
	}

	match, err := e.matcher.Match(ctx, snap, showDate, hasDate)
	if err != nil {
		return Outcome{}, fmt.Errorf("match artist=%q platform=%q: %w", snap.ArtistRaw, snap.Platform, err)
	}
	switch match.Status {
	case MatchUnmatched:
		log.Printf("reconcile: no show matches artist=%q venue=%q platform=%q; nearest: %s",
			snap.ArtistRaw, snap.VenueRaw, snap.Platform, candidateList(match.Candidates))
		return Outcome{Status: StatusUnmatched, Reason: "no registry candidate", Candidates: match.Candidates}, nil
	case MatchAmbiguous:
		log.Printf("reconcile: refusing ambiguous match for artist=%q venue=%q platform=%q; candidates: %s",
			snap.ArtistRaw, snap.VenueRaw, snap.Platform, candidateList(match.Candidates))
		return Outcome{Status: StatusAmbiguous, Reason: "multiple equally valid candidates", Candidates: match.Candidates}, nil
	}

	show := match.Show
	if match.Created {
		log.Printf("reconcile: auto-registered show id=%d artist=%q platform=%q capacity=%d",
			show.ID, show.Artist, show.Platform, show.CapacityTotal)
	}

	cumSold := uint32(snap.CumulativeSold)

	// A platform reporting more sold than our recorded capacity means the
	// registry is stale; grow it before occupancy is computed.
	if cumSold > show.CapacityTotal {
		if err := e.shows.RaiseCapacity(ctx, show.ID, cumSold); err != nil {
			return Outcome{}, fmt.Errorf("raise capacity for show %d: %w", show.ID, err)
		}
		show.CapacityTotal = cumSold
	}

	prev, err := e.ledger.LatestBefore(ctx, show.ID, saleDate)
	if err != nil {
		return Outcome{}, fmt.Errorf("load prior ledger row for show %d: %w", show.ID, err)
	}

	delta := computeDelta(prev, cumSold, snap.CumulativeRevenue)
	if delta.Clamped {
		log.Printf("reconcile: negative cumulative drift clamped for show %d on %s: prev sold=%d revenue=%s, snapshot sold=%d revenue=%s",
			show.ID, saleDate.Format("2006-01-02"), prev.CumulativeSold, prev.CumulativeRevenue, cumSold, snap.CumulativeRevenue)
	}

	available, occupancy := computeOccupancy(show.CapacityTotal, cumSold)

	rec := &model.DailySalesRecord{
		ShowID:            show.ID,
		SaleDate:          saleDate,
		DailySold:         delta.DailySold,
		DailyRevenue:      delta.DailyRevenue,
		CumulativeSold:    cumSold,
		CumulativeRevenue: snap.CumulativeRevenue,
		TicketsAvailable:  available,
		OccupancyPct:      occupancy,
		AvgPrice:          delta.AvgPrice,
		Platform:          snap.Platform,
		ExtractedAt:       snap.ExtractedAt,
	}
	status, err := e.ledger.Upsert(ctx, rec)
	if err != nil {
		return Outcome{}, fmt.Errorf("upsert ledger row show=%d day=%s: %w", show.ID, saleDate.Format("2006-01-02"), err)
	}
	return Outcome{Status: StatusPersisted, Show: show, Upsert: status, Record: rec}, nil
}

// RunSummary aggregates one batch run. The counts are what an operator
// needs for monitoring without digging through per-snapshot logs.
type RunSummary struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Persisted int    `json:"persisted"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unmatched int    `json:"unmatched"`
	Ambiguous int    `json:"ambiguous"`
	Invalid   int    `json:"invalid"`
	Failed    int    `json:"failed"`
}

// ProcessBatch runs every snapshot through Process with per-show error
// isolation: a persistence failure for one show is counted and logged,
// and the batch continues with the next snapshot.
func (e *Engine) ProcessBatch(ctx context.Context, snaps []model.SaleSnapshot) RunSummary {
	sum := RunSummary{RunID: uuid.NewString(), Total: len(snaps)}
	for _, snap := range snaps {
		out, err := e.Process(ctx, snap)
		if err != nil {
			sum.Failed++
			log.Printf("reconcile: snapshot failed: artist=%q platform=%q: %v", snap.ArtistRaw, snap.Platform, err)
			continue
		}
		switch out.Status {
		case StatusPersisted:
			sum.Persisted++
			if out.Upsert == UpsertInserted {
				sum.Inserted++
			} else {
				sum.Updated++
			}
		case StatusUnmatched:
			sum.Unmatched++
		case StatusAmbiguous:
			sum.Ambiguous++
		case StatusInvalid:
			sum.Invalid++
		}
	}
	log.Printf("reconcile: run %s done: total=%d persisted=%d (inserted=%d updated=%d) unmatched=%d ambiguous=%d invalid=%d failed=%d",
		sum.RunID, sum.Total, sum.Persisted, sum.Inserted, sum.Updated, sum.Unmatched, sum.Ambiguous, sum.Invalid, sum.Failed)
	return sum
}

// validateSnapshot returns a short reason when a snapshot cannot be
// reconciled; the empty string means it passed.
func validateSnapshot(snap model.SaleSnapshot) string {
	if strings.TrimSpace(snap.ArtistRaw) == "" {
		return "missing artist"
	}
	if strings.TrimSpace(snap.Platform) == "" {
		return "missing platform"
	}
	if snap.CumulativeSold < 0 {
		return "negative cumulative_sold"
	}
	if snap.CumulativeRevenue.IsNegative() {
		return "negative cumulative_revenue"
	}
	if snap.ExtractedAt.IsZero() {
		return "missing extraction timestamp"
	}
	return ""
}

// dateHintLayouts are the formats platform adapters are known to emit.
var dateHintLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDateHint(hint string) (time.Time, error) {
	hint = strings.TrimSpace(hint)
	for _, layout := range dateHintLayouts {
		if t, err := time.Parse(layout, hint); err == nil {
			return dayOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date hint %q", hint)
}

// dayOf truncates a timestamp to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func candidateList(shows []model.Show) string {
	if len(shows) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(shows))
	for _, s := range shows {
		parts = append(parts, fmt.Sprintf("#%d %s @ %s (%s)", s.ID, s.Artist, s.Venue, s.ShowDate.Format("2006-01-02")))
	}
	return strings.Join(parts, "; ")
}
