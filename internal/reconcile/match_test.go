package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showtix/salesledger/internal/model"
)

func snapshotFor(artist, venue, platform string) model.SaleSnapshot {
	return model.SaleSnapshot{
		ArtistRaw:   artist,
		VenueRaw:    venue,
		Platform:    platform,
		ExtractedAt: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMatchExactArtistVenueDate(t *testing.T) {
	shows := &memShowStore{}
	want := shows.add(model.Show{Artist: "The Midnight", Venue: "Budokan", ShowDate: date(2025, time.July, 10), Platform: "eplus"})
	shows.add(model.Show{Artist: "The Midnight", Venue: "Osaka-Jo Hall", ShowDate: date(2025, time.July, 12), Platform: "eplus"})

	m := NewMatcher(shows, nil, 0)
	// Messy casing and whitespace must normalize away.
	res, err := m.Match(context.Background(), snapshotFor("  the  MIDNIGHT ", "budokan", "eplus"), date(2025, time.July, 10), true)
	require.NoError(t, err)
	require.Equal(t, MatchFound, res.Status)
	assert.Equal(t, want, res.Show.ID)
	assert.False(t, res.Created)
}

func TestMatchArtistDateIgnoresVenue(t *testing.T) {
	shows := &memShowStore{}
	want := shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia"})

	m := NewMatcher(shows, nil, 0)
	// Venue scraped differently from how the show was registered.
	res, err := m.Match(context.Background(), snapshotFor("Aurora", "ZEPP HANEDA (TOKYO)", "pia"), date(2025, time.July, 10), true)
	require.NoError(t, err)
	require.Equal(t, MatchFound, res.Status)
	assert.Equal(t, want, res.Show.ID)
}

func TestMatchRefusesSameArtistTwoVenues(t *testing.T) {
	shows := &memShowStore{}
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia"})
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Nagoya", ShowDate: date(2025, time.July, 10), Platform: "pia"})

	m := NewMatcher(shows, nil, 0)
	// The venue matches neither candidate, so there is no field left to
	// disambiguate on: the matcher must refuse rather than guess.
	res, err := m.Match(context.Background(), snapshotFor("Aurora", "Shibuya O-East", "pia"), date(2025, time.July, 10), true)
	require.NoError(t, err)
	assert.Equal(t, MatchAmbiguous, res.Status)
	assert.Nil(t, res.Show)
	assert.Len(t, res.Candidates, 2)
}

func TestMatchVenueResolvesSameArtistSameDate(t *testing.T) {
	shows := &memShowStore{}
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia"})
	want := shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Nagoya", ShowDate: date(2025, time.July, 10), Platform: "pia"})

	m := NewMatcher(shows, nil, 0)
	res, err := m.Match(context.Background(), snapshotFor("Aurora", "zepp nagoya", "pia"), date(2025, time.July, 10), true)
	require.NoError(t, err)
	require.Equal(t, MatchFound, res.Status)
	assert.Equal(t, want, res.Show.ID)
}

func TestMatchArtistOnlyLastResort(t *testing.T) {
	shows := &memShowStore{}
	want := shows.add(model.Show{Artist: "Kikagaku Moyo", Venue: "Liquidroom", ShowDate: date(2025, time.August, 2), Platform: "lawson"})

	m := NewMatcher(shows, nil, 0)
	// No date hint at all: strategies 1 and 2 are skipped, but a single
	// active candidate still resolves.
	res, err := m.Match(context.Background(), snapshotFor("KIKAGAKU MOYO", "", "lawson"), date(2025, time.June, 1), false)
	require.NoError(t, err)
	require.Equal(t, MatchFound, res.Status)
	assert.Equal(t, want, res.Show.ID)
}

func TestMatchArtistOnlyRefusesMultipleCandidates(t *testing.T) {
	shows := &memShowStore{}
	shows.add(model.Show{Artist: "Kikagaku Moyo", Venue: "Liquidroom", ShowDate: date(2025, time.August, 2), Platform: "lawson"})
	shows.add(model.Show{Artist: "Kikagaku Moyo", Venue: "Umeda Club Quattro", ShowDate: date(2025, time.August, 5), Platform: "lawson"})

	m := NewMatcher(shows, nil, 0)
	res, err := m.Match(context.Background(), snapshotFor("Kikagaku Moyo", "", "lawson"), date(2025, time.June, 1), false)
	require.NoError(t, err)
	assert.Equal(t, MatchAmbiguous, res.Status)
	assert.Len(t, res.Candidates, 2)
}

func TestMatchInactiveShowsIgnored(t *testing.T) {
	shows := &memShowStore{}
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia", Status: model.ShowStatusInactive})

	m := NewMatcher(shows, nil, 0)
	res, err := m.Match(context.Background(), snapshotFor("Aurora", "Zepp Haneda", "pia"), date(2025, time.July, 10), true)
	require.NoError(t, err)
	assert.Equal(t, MatchUnmatched, res.Status)
}

func TestMatchUnmatchedReportsNearestCandidates(t *testing.T) {
	shows := &memShowStore{}
	shows.add(model.Show{Artist: "The Midnight", Venue: "Budokan", ShowDate: date(2025, time.July, 10), Platform: "eplus"})
	shows.add(model.Show{Artist: "Perfume", Venue: "Tokyo Dome", ShowDate: date(2025, time.July, 20), Platform: "eplus"})

	m := NewMatcher(shows, nil, 0)
	res, err := m.Match(context.Background(), snapshotFor("The Midnite", "Budokan", "eplus"), date(2025, time.July, 10), true)
	require.NoError(t, err)
	require.Equal(t, MatchUnmatched, res.Status)
	// Nearest-name diagnostics put the likely typo first.
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "The Midnight", res.Candidates[0].Artist)
}

func TestMatchAutoRegisterGatedByPlatform(t *testing.T) {
	shows := &memShowStore{}
	m := NewMatcher(shows, []string{"eplus"}, 100)

	snap := snapshotFor("New Act", "Shinkiba Studio Coast", "eplus")
	snap.CumulativeSold = 250
	res, err := m.Match(context.Background(), snap, date(2025, time.September, 1), true)
	require.NoError(t, err)
	require.Equal(t, MatchFound, res.Status)
	assert.True(t, res.Created)
	// Capacity starts at the observed sold count when it beats the floor.
	assert.Equal(t, uint32(250), res.Show.CapacityTotal)
	assert.Equal(t, model.ShowStatusActive, res.Show.Status)
	assert.Equal(t, date(2025, time.September, 1), res.Show.ShowDate)

	// The same platform with fewer observed sales gets the floor instead.
	snap2 := snapshotFor("Another Act", "Club Asia", "eplus")
	snap2.CumulativeSold = 30
	res2, err := m.Match(context.Background(), snap2, date(2025, time.September, 2), true)
	require.NoError(t, err)
	require.True(t, res2.Created)
	assert.Equal(t, uint32(100), res2.Show.CapacityTotal)
}

func TestMatchAutoRegisterOffByDefault(t *testing.T) {
	shows := &memShowStore{}
	m := NewMatcher(shows, nil, 100)

	res, err := m.Match(context.Background(), snapshotFor("New Act", "Somewhere", "eplus"), date(2025, time.September, 1), true)
	require.NoError(t, err)
	assert.Equal(t, MatchUnmatched, res.Status)
	assert.Empty(t, shows.shows)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "the midnight", normalizeName("  The   MIDNIGHT \t"))
	assert.Equal(t, "", normalizeName("   "))
}
