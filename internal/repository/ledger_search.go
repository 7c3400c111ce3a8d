package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// LedgerSearchQuery defines filters & pagination for searching the
// daily sales ledger across shows.
type LedgerSearchQuery struct {
	Artist   string
	Venue    string
	Platform string
	From     string
	To       string
	Page     int
	PageSize int
}

// LedgerSearchRow is one ledger entry joined with its show, shaped for
// the search endpoint.
type LedgerSearchRow struct {
	ShowID            uint64          `json:"show_id"`
	Artist            string          `json:"artist"`
	Venue             string          `json:"venue"`
	Platform          string          `json:"platform"`
	SaleDate          string          `json:"sale_date"`
	DailySold         uint32          `json:"daily_sold"`
	DailyRevenue      decimal.Decimal `json:"daily_revenue"`
	CumulativeSold    uint32          `json:"cumulative_sold"`
	CumulativeRevenue decimal.Decimal `json:"cumulative_revenue"`
	TicketsAvailable  uint32          `json:"tickets_available"`
	OccupancyPct      float64         `json:"occupancy_pct"`
	AvgPrice          decimal.Decimal `json:"avg_price"`
}

func (r *LedgerRepo) Search(ctx context.Context, q LedgerSearchQuery) ([]LedgerSearchRow, int64, error) {
	where := []string{}
	args := []any{}

	if q.Artist != "" {
		where = append(where, "LOWER(s.artist) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Artist)+"%")
	}
	if q.Venue != "" {
		where = append(where, "LOWER(s.venue) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Venue)+"%")
	}
	if q.Platform != "" {
		where = append(where, "s.platform = ?")
		args = append(args, q.Platform)
	}
	if q.From != "" {
		where = append(where, "d.sale_date >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		where = append(where, "d.sale_date <= ?")
		args = append(args, q.To)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM daily_sales d
		JOIN shows s ON s.id = d.show_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			d.show_id,
			s.artist,
			s.venue,
			s.platform,
			DATE_FORMAT(d.sale_date, '%Y-%m-%d') AS sale_date,
			d.daily_sold,
			d.daily_revenue,
			d.cumulative_sold,
			d.cumulative_revenue,
			d.tickets_available,
			d.occupancy_pct,
			d.avg_price
		FROM daily_sales d
		JOIN shows s ON s.id = d.show_id
		WHERE ` + cond + `
		ORDER BY d.sale_date DESC, d.show_id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]LedgerSearchRow, 0, limit)
	for rows.Next() {
		var d LedgerSearchRow
		if err := rows.Scan(
			&d.ShowID,
			&d.Artist,
			&d.Venue,
			&d.Platform,
			&d.SaleDate,
			&d.DailySold,
			&d.DailyRevenue,
			&d.CumulativeSold,
			&d.CumulativeRevenue,
			&d.TicketsAvailable,
			&d.OccupancyPct,
			&d.AvgPrice,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
