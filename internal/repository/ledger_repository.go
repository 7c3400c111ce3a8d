package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/showtix/salesledger/internal/model"
	"github.com/showtix/salesledger/internal/reconcile"
)

// LedgerRepo manages persistence for the daily sales ledger. It
// implements the reconcile.LedgerStore interface on top of MySQL.
//
// Dates are always passed to the driver as "YYYY-MM-DD" strings: the
// sale_date column is a DATE and the engine computes calendar days in
// the reporting timezone, so letting the driver convert a time.Time to
// UTC could silently shift the day.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo constructs a LedgerRepo with the given DB handle.
func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

const ledgerColumns = `id, show_id, sale_date, daily_sold, daily_revenue, cumulative_sold,
	cumulative_revenue, tickets_available, occupancy_pct, avg_price, platform,
	extracted_at, created_at, updated_at`

func scanLedgerRow(row interface{ Scan(...any) error }, rec *model.DailySalesRecord) error {
	return row.Scan(
		&rec.ID,
		&rec.ShowID,
		&rec.SaleDate,
		&rec.DailySold,
		&rec.DailyRevenue,
		&rec.CumulativeSold,
		&rec.CumulativeRevenue,
		&rec.TicketsAvailable,
		&rec.OccupancyPct,
		&rec.AvgPrice,
		&rec.Platform,
		&rec.ExtractedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
}

// LatestBefore returns the most recent ledger row for the show with a
// sale date strictly earlier than day, or (nil, nil) when the show has
// no prior history. Same-day rows are deliberately excluded: when the
// engine runs several times in one day the later runs must diff
// against the previous calendar day, not against their own output.
func (r *LedgerRepo) LatestBefore(ctx context.Context, showID uint64, day time.Time) (*model.DailySalesRecord, error) {
	const q = `SELECT ` + ledgerColumns + `
	           FROM daily_sales
	           WHERE show_id = ? AND sale_date < ?
	           ORDER BY sale_date DESC
	           LIMIT 1`
	var rec model.DailySalesRecord
	err := scanLedgerRow(r.db.QueryRowContext(ctx, q, showID, day.Format("2006-01-02")), &rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert inserts or fully replaces the ledger row for (rec.ShowID,
// rec.SaleDate). The read-decide-write sequence runs inside one
// transaction with the existing row locked, so concurrent runs for the
// same show serialize on the unique (show_id, sale_date) key and a
// failure leaves the prior row intact. Every computed field is
// overwritten: the row always reflects the latest cumulative values
// observed, never a sum over runs.
func (r *LedgerRepo) Upsert(ctx context.Context, rec *model.DailySalesRecord) (reconcile.UpsertStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	saleDate := rec.SaleDate.Format("2006-01-02")

	var existingID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM daily_sales WHERE show_id = ? AND sale_date = ? FOR UPDATE`,
		rec.ShowID, saleDate).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		const ins = `INSERT INTO daily_sales
		             (show_id, sale_date, daily_sold, daily_revenue, cumulative_sold, cumulative_revenue,
		              tickets_available, occupancy_pct, avg_price, platform, extracted_at)
		             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, ins,
			rec.ShowID, saleDate, rec.DailySold, rec.DailyRevenue, rec.CumulativeSold, rec.CumulativeRevenue,
			rec.TicketsAvailable, rec.OccupancyPct, rec.AvgPrice, rec.Platform, rec.ExtractedAt.UTC())
		if err != nil {
			return "", err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return "", err
		}
		rec.ID = uint64(id)
		if err := tx.Commit(); err != nil {
			return "", err
		}
		return reconcile.UpsertInserted, nil

	case err != nil:
		return "", err

	default:
		const upd = `UPDATE daily_sales
		             SET daily_sold = ?, daily_revenue = ?, cumulative_sold = ?, cumulative_revenue = ?,
		                 tickets_available = ?, occupancy_pct = ?, avg_price = ?, platform = ?,
		                 extracted_at = ?, updated_at = CURRENT_TIMESTAMP
		             WHERE id = ?`
		if _, err := tx.ExecContext(ctx, upd,
			rec.DailySold, rec.DailyRevenue, rec.CumulativeSold, rec.CumulativeRevenue,
			rec.TicketsAvailable, rec.OccupancyPct, rec.AvgPrice, rec.Platform,
			rec.ExtractedAt.UTC(), existingID); err != nil {
			return "", err
		}
		rec.ID = existingID
		if err := tx.Commit(); err != nil {
			return "", err
		}
		return reconcile.UpsertUpdated, nil
	}
}

// ListByShow returns the ledger rows for one show ordered by sale
// date, optionally bounded by inclusive from/to dates ("YYYY-MM-DD",
// empty means unbounded).
func (r *LedgerRepo) ListByShow(ctx context.Context, showID uint64, from, to string) ([]model.DailySalesRecord, error) {
	q := `SELECT ` + ledgerColumns + ` FROM daily_sales WHERE show_id = ?`
	args := []any{showID}
	if from != "" {
		q += ` AND sale_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		q += ` AND sale_date <= ?`
		args = append(args, to)
	}
	q += ` ORDER BY sale_date ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.DailySalesRecord
	for rows.Next() {
		var rec model.DailySalesRecord
		if err := scanLedgerRow(rows, &rec); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
