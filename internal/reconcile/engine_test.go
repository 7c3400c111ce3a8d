package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showtix/salesledger/internal/model"
)

func newTestEngine(cfg Config) (*Engine, *memShowStore, *memLedgerStore) {
	shows := &memShowStore{}
	ledger := &memLedgerStore{}
	return NewEngine(shows, ledger, cfg), shows, ledger
}

func scenarioSnapshot(extracted time.Time, sold int64, revenue int64) model.SaleSnapshot {
	return model.SaleSnapshot{
		ArtistRaw:         "Yoasobi",
		VenueRaw:          "Tokyo Dome",
		DateHint:          "2025-07-10",
		Platform:          "eplus",
		CumulativeSold:    sold,
		CumulativeRevenue: decimal.NewFromInt(revenue),
		ExtractedAt:       extracted,
	}
}

// The reference scenario: capacity 5285, two extraction days, then a
// rerun of day two that must change nothing.
func TestEngineScenario(t *testing.T) {
	e, shows, ledger := newTestEngine(Config{})
	shows.add(model.Show{Artist: "Yoasobi", Venue: "Tokyo Dome", ShowDate: date(2025, time.July, 10), Platform: "eplus", CapacityTotal: 5285})

	ctx := context.Background()

	day1 := time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)
	out, err := e.Process(ctx, scenarioSnapshot(day1, 4500, 13200000))
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, UpsertInserted, out.Upsert)
	assert.Equal(t, uint32(4500), out.Record.DailySold)
	assert.Equal(t, uint32(4500), out.Record.CumulativeSold)
	assert.Equal(t, uint32(785), out.Record.TicketsAvailable)
	assert.InDelta(t, 85.15, out.Record.OccupancyPct, 0.001)

	day2 := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	out, err = e.Process(ctx, scenarioSnapshot(day2, 4581, 13515200))
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, UpsertInserted, out.Upsert)
	assert.Equal(t, uint32(81), out.Record.DailySold)
	assert.True(t, out.Record.DailyRevenue.Equal(decimal.NewFromInt(315200)), "got %s", out.Record.DailyRevenue)
	assert.Equal(t, uint32(4581), out.Record.CumulativeSold)
	assert.Equal(t, uint32(704), out.Record.TicketsAvailable)
	assert.InDelta(t, 86.68, out.Record.OccupancyPct, 0.001)

	first := ledger.get(out.Record.ShowID, out.Record.SaleDate)
	require.NotNil(t, first)

	// Rerunning the identical day-two snapshot replaces the row with the
	// same values: daily_sold stays 81, it does not become 162.
	out, err = e.Process(ctx, scenarioSnapshot(day2, 4581, 13515200))
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, UpsertUpdated, out.Upsert)

	second := ledger.get(out.Record.ShowID, out.Record.SaleDate)
	require.NotNil(t, second)
	assert.Equal(t, first.DailySold, second.DailySold)
	assert.Equal(t, uint32(81), second.DailySold)
	assert.True(t, first.DailyRevenue.Equal(second.DailyRevenue))
	assert.True(t, first.CumulativeRevenue.Equal(second.CumulativeRevenue))
	assert.Equal(t, first.TicketsAvailable, second.TicketsAvailable)
	assert.Equal(t, first.OccupancyPct, second.OccupancyPct)
	assert.True(t, first.AvgPrice.Equal(second.AvgPrice))
	assert.Len(t, ledger.rows, 2)
}

func TestEngineBootstrapFirstSnapshot(t *testing.T) {
	e, shows, _ := newTestEngine(Config{})
	shows.add(model.Show{Artist: "Perfume", Venue: "Saitama Super Arena", ShowDate: date(2025, time.August, 1), Platform: "pia", CapacityTotal: 30000})

	snap := model.SaleSnapshot{
		ArtistRaw:         "Perfume",
		VenueRaw:          "Saitama Super Arena",
		DateHint:          "2025-08-01",
		Platform:          "pia",
		CumulativeSold:    1200,
		CumulativeRevenue: decimal.NewFromInt(9600000),
		ExtractedAt:       time.Date(2025, time.June, 5, 8, 0, 0, 0, time.UTC),
	}
	out, err := e.Process(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, uint32(1200), out.Record.DailySold)
	assert.True(t, out.Record.DailyRevenue.Equal(decimal.NewFromInt(9600000)))
}

func TestEngineMultipleRunsSameDayDiffAgainstPriorDayOnly(t *testing.T) {
	e, shows, ledger := newTestEngine(Config{})
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia", CapacityTotal: 3000})

	ctx := context.Background()
	mk := func(hour int, sold int64, revenue int64) model.SaleSnapshot {
		return model.SaleSnapshot{
			ArtistRaw:         "Aurora",
			VenueRaw:          "Zepp Haneda",
			DateHint:          "2025-07-10",
			Platform:          "pia",
			CumulativeSold:    sold,
			CumulativeRevenue: decimal.NewFromInt(revenue),
			ExtractedAt:       time.Date(2025, time.June, 2, hour, 0, 0, 0, time.UTC),
		}
	}

	// Seed the prior day.
	prior := mk(10, 100, 500000)
	prior.ExtractedAt = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	_, err := e.Process(ctx, prior)
	require.NoError(t, err)

	// Two runs on the same day: the second diffs against June 1, not
	// against the morning run's own output.
	_, err = e.Process(ctx, mk(9, 130, 650000))
	require.NoError(t, err)
	out, err := e.Process(ctx, mk(18, 150, 750000))
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, UpsertUpdated, out.Upsert)
	assert.Equal(t, uint32(50), out.Record.DailySold)
	assert.True(t, out.Record.DailyRevenue.Equal(decimal.NewFromInt(250000)))
	assert.Len(t, ledger.rows, 2)
}

func TestEngineAmbiguityWritesNothing(t *testing.T) {
	e, shows, ledger := newTestEngine(Config{})
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia", CapacityTotal: 3000})
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Nagoya", ShowDate: date(2025, time.July, 10), Platform: "pia", CapacityTotal: 3000})

	snap := model.SaleSnapshot{
		ArtistRaw:         "Aurora",
		VenueRaw:          "Somewhere Else",
		DateHint:          "2025-07-10",
		Platform:          "pia",
		CumulativeSold:    10,
		CumulativeRevenue: decimal.NewFromInt(50000),
		ExtractedAt:       time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
	out, err := e.Process(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, StatusAmbiguous, out.Status)
	assert.Len(t, out.Candidates, 2)
	assert.Empty(t, ledger.rows)
}

func TestEngineInvalidSnapshots(t *testing.T) {
	e, _, ledger := newTestEngine(Config{})

	base := model.SaleSnapshot{
		ArtistRaw:         "Aurora",
		Platform:          "pia",
		CumulativeRevenue: decimal.Zero,
		ExtractedAt:       time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}

	missingArtist := base
	missingArtist.ArtistRaw = "   "
	negativeSold := base
	negativeSold.CumulativeSold = -5
	negativeRevenue := base
	negativeRevenue.CumulativeRevenue = decimal.NewFromInt(-1)
	badHint := base
	badHint.DateHint = "next friday"

	for name, snap := range map[string]model.SaleSnapshot{
		"missing artist":   missingArtist,
		"negative sold":    negativeSold,
		"negative revenue": negativeRevenue,
		"bad date hint":    badHint,
	} {
		out, err := e.Process(context.Background(), snap)
		require.NoError(t, err, name)
		assert.Equal(t, StatusInvalid, out.Status, name)
	}
	assert.Empty(t, ledger.rows)
}

func TestEngineRaisesStaleCapacity(t *testing.T) {
	e, shows, _ := newTestEngine(Config{})
	id := shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia", CapacityTotal: 500})

	snap := model.SaleSnapshot{
		ArtistRaw:         "Aurora",
		VenueRaw:          "Zepp Haneda",
		DateHint:          "2025-07-10",
		Platform:          "pia",
		CumulativeSold:    620,
		CumulativeRevenue: decimal.NewFromInt(3100000),
		ExtractedAt:       time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
	out, err := e.Process(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, uint32(620), shows.byID(id).CapacityTotal)
	assert.Equal(t, uint32(0), out.Record.TicketsAvailable)
	assert.InDelta(t, 100.0, out.Record.OccupancyPct, 0.001)
}

func TestEngineSaleDateUsesReportingTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	e, shows, _ := newTestEngine(Config{ReportingTZ: tokyo})
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia", CapacityTotal: 3000})

	// 23:30 UTC on June 1 is already June 2 in Tokyo.
	snap := model.SaleSnapshot{
		ArtistRaw:         "Aurora",
		VenueRaw:          "Zepp Haneda",
		DateHint:          "2025-07-10",
		Platform:          "pia",
		CumulativeSold:    10,
		CumulativeRevenue: decimal.NewFromInt(50000),
		ExtractedAt:       time.Date(2025, time.June, 1, 23, 30, 0, 0, time.UTC),
	}
	out, err := e.Process(context.Background(), snap)
	require.NoError(t, err)
	require.Equal(t, StatusPersisted, out.Status)
	assert.Equal(t, 2025, out.Record.SaleDate.Year())
	assert.Equal(t, time.June, out.Record.SaleDate.Month())
	assert.Equal(t, 2, out.Record.SaleDate.Day())
}

func TestEngineBatchIsolatesFailures(t *testing.T) {
	e, shows, ledger := newTestEngine(Config{})
	shows.add(model.Show{Artist: "Aurora", Venue: "Zepp Haneda", ShowDate: date(2025, time.July, 10), Platform: "pia", CapacityTotal: 3000})
	failing := shows.add(model.Show{Artist: "Perfume", Venue: "Tokyo Dome", ShowDate: date(2025, time.July, 20), Platform: "pia", CapacityTotal: 50000})
	ledger.failShowID = failing
	ledger.failErr = errors.New("deadlock found when trying to get lock")

	extracted := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	snaps := []model.SaleSnapshot{
		{ArtistRaw: "Aurora", VenueRaw: "Zepp Haneda", DateHint: "2025-07-10", Platform: "pia", CumulativeSold: 10, CumulativeRevenue: decimal.NewFromInt(50000), ExtractedAt: extracted},
		{ArtistRaw: "Perfume", VenueRaw: "Tokyo Dome", DateHint: "2025-07-20", Platform: "pia", CumulativeSold: 99, CumulativeRevenue: decimal.NewFromInt(990000), ExtractedAt: extracted},
		{ArtistRaw: "Unknown Act", VenueRaw: "Nowhere", Platform: "pia", CumulativeSold: 1, CumulativeRevenue: decimal.NewFromInt(5000), ExtractedAt: extracted},
		{ArtistRaw: "", Platform: "pia", ExtractedAt: extracted},
	}

	sum := e.ProcessBatch(context.Background(), snaps)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 1, sum.Persisted)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 0, sum.Updated)
	assert.Equal(t, 1, sum.Unmatched)
	assert.Equal(t, 1, sum.Invalid)
	assert.Equal(t, 1, sum.Failed)
	// The failing show's error did not stop the first one from landing.
	assert.Len(t, ledger.rows, 1)
}
