package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/showtix/salesledger/internal/model"
)

// Delta is the incremental sold/revenue for one (show, day) plus the
// day's average ticket price.
type Delta struct {
	DailySold    uint32
	DailyRevenue decimal.Decimal
	AvgPrice     decimal.Decimal
	// Clamped marks that a raw cumulative difference was negative
	// (refunds shrinking the platform counter) and got floored at zero.
	Clamped bool
}

// computeDelta diffs a cumulative snapshot against the most recent
// strictly-earlier ledger row. prev == nil is the bootstrap case: the
// whole cumulative total becomes day one's figures. Negative raw
// differences are absorbed as zero-sale days rather than recorded; the
// caller logs them for audit.
func computeDelta(prev *model.DailySalesRecord, cumulativeSold uint32, cumulativeRevenue decimal.Decimal) Delta {
	if prev == nil {
		d := Delta{DailySold: cumulativeSold, DailyRevenue: cumulativeRevenue}
		if cumulativeSold > 0 {
			d.AvgPrice = cumulativeRevenue.Div(decimal.NewFromInt(int64(cumulativeSold))).Round(2)
		}
		return d
	}

	var d Delta
	if cumulativeSold >= prev.CumulativeSold {
		d.DailySold = cumulativeSold - prev.CumulativeSold
	} else {
		d.Clamped = true
	}
	if diff := cumulativeRevenue.Sub(prev.CumulativeRevenue); diff.IsNegative() {
		d.Clamped = true
	} else {
		d.DailyRevenue = diff
	}

	if d.DailySold > 0 {
		d.AvgPrice = d.DailyRevenue.Div(decimal.NewFromInt(int64(d.DailySold))).Round(2)
	} else {
		// No sales today: carry the previous day's average forward so
		// reporting never divides by zero.
		d.AvgPrice = prev.AvgPrice
	}
	return d
}
