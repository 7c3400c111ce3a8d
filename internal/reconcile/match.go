package reconcile

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/showtix/salesledger/internal/model"
)

// MatchStatus tags the outcome of resolving a snapshot identity.
type MatchStatus string

const (
	MatchFound     MatchStatus = "MATCHED"
	MatchUnmatched MatchStatus = "UNMATCHED"
	MatchAmbiguous MatchStatus = "AMBIGUOUS"
)

// MatchResult is the tagged result of a registry lookup. Show is set only
// when Status is MATCHED. For AMBIGUOUS results Candidates holds the
// equally valid shows; for UNMATCHED it holds the nearest names found,
// ranked by similarity, to make manual review of dropped snapshots cheap.
type MatchResult struct {
	Status     MatchStatus
	Show       *model.Show
	Candidates []model.Show
	Created    bool // the show was auto-registered from this snapshot
}

// Matcher resolves loosely-identified snapshots to canonical shows using
// ranked strategies. It refuses to guess: when several candidates remain
// equally valid the result is AMBIGUOUS and nothing is written, because a
// wrong guess would corrupt another show's ledger.
type Matcher struct {
	shows        ShowStore
	autoRegister map[string]bool
	minCapacity  uint32
}

// NewMatcher builds a Matcher. Platforms listed in autoRegister may create
// a show on a first-seen snapshot; everywhere else an unknown artist is
// simply reported as UNMATCHED.
func NewMatcher(shows ShowStore, autoRegister []string, minCapacity uint32) *Matcher {
	allowed := make(map[string]bool, len(autoRegister))
	for _, p := range autoRegister {
		p = strings.TrimSpace(p)
		if p != "" {
			allowed[p] = true
		}
	}
	return &Matcher{shows: shows, autoRegister: allowed, minCapacity: minCapacity}
}

// Match applies the strategies in rank order, first success wins:
//
//  1. artist + venue + performance date, all normalized
//  2. artist + performance date, venue ignored; disabled as soon as two
//     shows share the artist on that date, since only the venue can then
//     tell them apart
//  3. artist only, and only when the registry holds a single active
//     candidate for that artist on the platform
//
// showDate is the resolved performance date; hasDate is false when the
// snapshot carried no usable date hint, which skips strategies 1 and 2.
func (m *Matcher) Match(ctx context.Context, snap model.SaleSnapshot, showDate time.Time, hasDate bool) (MatchResult, error) {
	candidates, err := m.shows.ActiveByPlatform(ctx, snap.Platform)
	if err != nil {
		return MatchResult{}, err
	}

	artist := normalizeName(snap.ArtistRaw)
	venue := normalizeName(snap.VenueRaw)

	var byArtist []model.Show
	for _, c := range candidates {
		if normalizeName(c.Artist) == artist {
			byArtist = append(byArtist, c)
		}
	}

	if hasDate {
		var exact, onDate []model.Show
		for _, c := range byArtist {
			if !sameDay(c.ShowDate, showDate) {
				continue
			}
			onDate = append(onDate, c)
			if normalizeName(c.Venue) == venue {
				exact = append(exact, c)
			}
		}
		if len(exact) == 1 {
			return MatchResult{Status: MatchFound, Show: &exact[0]}, nil
		}
		if len(exact) > 1 {
			return MatchResult{Status: MatchAmbiguous, Candidates: exact}, nil
		}
		if len(onDate) == 1 {
			return MatchResult{Status: MatchFound, Show: &onDate[0]}, nil
		}
		// Two or more shows by this artist on the same date and the venue
		// matched none of them: fall through to the last resort, which
		// will refuse rather than pick one.
	}

	switch len(byArtist) {
	case 1:
		return MatchResult{Status: MatchFound, Show: &byArtist[0]}, nil
	case 0:
		if m.autoRegister[snap.Platform] {
			show, err := m.register(ctx, snap, showDate)
			if err != nil {
				return MatchResult{}, err
			}
			return MatchResult{Status: MatchFound, Show: show, Created: true}, nil
		}
		return MatchResult{Status: MatchUnmatched, Candidates: nearestByArtist(candidates, artist)}, nil
	default:
		return MatchResult{Status: MatchAmbiguous, Candidates: byArtist}, nil
	}
}

// register creates a show from a first-seen snapshot. The initial capacity
// is whatever the snapshot already proves sold, floored at the configured
// minimum, so occupancy stays meaningful until an operator refines it.
func (m *Matcher) register(ctx context.Context, snap model.SaleSnapshot, showDate time.Time) (*model.Show, error) {
	capacity := m.minCapacity
	if snap.CumulativeSold > int64(capacity) {
		capacity = uint32(snap.CumulativeSold)
	}
	show := &model.Show{
		Artist:        strings.TrimSpace(snap.ArtistRaw),
		Venue:         strings.TrimSpace(snap.VenueRaw),
		ShowDate:      showDate,
		Platform:      snap.Platform,
		CapacityTotal: capacity,
		Status:        model.ShowStatusActive,
	}
	if err := m.shows.Create(ctx, show); err != nil {
		return nil, err
	}
	return show, nil
}

// nearestByArtist returns up to three candidates ranked by Jaro-Winkler
// similarity of the normalized artist names. Purely diagnostic; the
// similarity score never decides a match.
func nearestByArtist(candidates []model.Show, artist string) []model.Show {
	type scored struct {
		show model.Show
		sim  float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{c, matchr.JaroWinkler(artist, normalizeName(c.Artist), false)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })
	n := len(ranked)
	if n > 3 {
		n = 3
	}
	out := make([]model.Show, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, r.show)
	}
	return out
}

// normalizeName lower-cases a name, trims it and collapses internal
// whitespace so cosmetic differences between a back-office page and the
// registry do not break matching.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// sameDay compares two timestamps at calendar-day granularity.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
