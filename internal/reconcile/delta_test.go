package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showtix/salesledger/internal/model"
)

func prevRecord(sold uint32, revenue, avg int64) *model.DailySalesRecord {
	return &model.DailySalesRecord{
		ShowID:            1,
		SaleDate:          date(2025, time.July, 1),
		CumulativeSold:    sold,
		CumulativeRevenue: decimal.NewFromInt(revenue),
		AvgPrice:          decimal.NewFromInt(avg),
	}
}

func TestDeltaBootstrap(t *testing.T) {
	d := computeDelta(nil, 4500, decimal.NewFromInt(13200000))
	assert.Equal(t, uint32(4500), d.DailySold)
	assert.True(t, d.DailyRevenue.Equal(decimal.NewFromInt(13200000)), "got %s", d.DailyRevenue)
	assert.True(t, d.AvgPrice.Equal(decimal.RequireFromString("2933.33")), "got %s", d.AvgPrice)
	assert.False(t, d.Clamped)
}

func TestDeltaBootstrapZeroSales(t *testing.T) {
	d := computeDelta(nil, 0, decimal.Zero)
	assert.Equal(t, uint32(0), d.DailySold)
	assert.True(t, d.DailyRevenue.IsZero())
	assert.True(t, d.AvgPrice.IsZero())
}

func TestDeltaIncrement(t *testing.T) {
	prev := prevRecord(4500, 13200000, 2933)
	d := computeDelta(prev, 4581, decimal.NewFromInt(13515200))
	assert.Equal(t, uint32(81), d.DailySold)
	assert.True(t, d.DailyRevenue.Equal(decimal.NewFromInt(315200)), "got %s", d.DailyRevenue)
	// 315200 / 81 rounded to two decimals.
	assert.True(t, d.AvgPrice.Equal(decimal.RequireFromString("3891.36")), "got %s", d.AvgPrice)
	assert.False(t, d.Clamped)
}

func TestDeltaClampsNegativeDrift(t *testing.T) {
	prev := prevRecord(4500, 13200000, 2933)
	// Refunds shrank both counters; the day records zero, not negatives.
	d := computeDelta(prev, 4490, decimal.NewFromInt(13170000))
	assert.Equal(t, uint32(0), d.DailySold)
	assert.True(t, d.DailyRevenue.IsZero())
	assert.True(t, d.Clamped)
	// Average carries forward from the previous day.
	assert.True(t, d.AvgPrice.Equal(decimal.NewFromInt(2933)))
}

func TestDeltaZeroSaleDayCarriesAvgPrice(t *testing.T) {
	prev := prevRecord(4500, 13200000, 2933)
	d := computeDelta(prev, 4500, decimal.NewFromInt(13200000))
	assert.Equal(t, uint32(0), d.DailySold)
	assert.True(t, d.DailyRevenue.IsZero())
	assert.False(t, d.Clamped)
	assert.True(t, d.AvgPrice.Equal(decimal.NewFromInt(2933)))
}

func TestDeltaConservation(t *testing.T) {
	// For a monotone cumulative series the daily increments must sum back
	// to the cumulative total.
	sold := []uint32{120, 120, 340, 800, 805}
	revenue := []int64{600000, 600000, 1700000, 4000000, 4030000}

	var prev *model.DailySalesRecord
	var totalSold uint32
	totalRevenue := decimal.Zero
	for i := range sold {
		rev := decimal.NewFromInt(revenue[i])
		d := computeDelta(prev, sold[i], rev)
		require.False(t, d.Clamped)
		totalSold += d.DailySold
		totalRevenue = totalRevenue.Add(d.DailyRevenue)
		prev = &model.DailySalesRecord{
			SaleDate:          date(2025, time.July, 1+i),
			CumulativeSold:    sold[i],
			CumulativeRevenue: rev,
			AvgPrice:          d.AvgPrice,
		}
	}
	assert.Equal(t, sold[len(sold)-1], totalSold)
	assert.True(t, totalRevenue.Equal(decimal.NewFromInt(revenue[len(revenue)-1])))
}
