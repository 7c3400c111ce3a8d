package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/showtix/salesledger/internal/model"
)

// ShowRepo manages persistence for the canonical show registry. It
// implements the reconcile.ShowStore interface on top of MySQL; the
// engine only ever sees the interface.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

const showColumns = `id, artist, venue, show_date, COALESCE(show_time, ''), platform, capacity_total, status, created_at, updated_at`

func scanShow(row interface{ Scan(...any) error }, s *model.Show) error {
	return row.Scan(
		&s.ID,
		&s.Artist,
		&s.Venue,
		&s.ShowDate,
		&s.ShowTime,
		&s.Platform,
		&s.CapacityTotal,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// Create registers a new show and assigns the generated ID plus the
// DB-default fields (status, timestamps) back onto the struct. The
// unique (platform, artist, venue, show_date) key turns duplicate
// registrations into ErrShowExists.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	showTime := sql.NullString{String: s.ShowTime, Valid: s.ShowTime != ""}
	const q = `INSERT INTO shows (artist, venue, show_date, show_time, platform, capacity_total)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.Artist, s.Venue, s.ShowDate.Format("2006-01-02"), showTime, s.Platform, s.CapacityTotal)
	if err != nil {
		// MySQL reports duplicate-key violations as error 1062.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrShowExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	return scanShow(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a show by its ID. It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	var s model.Show
	if err := scanShow(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ActiveByPlatform returns every ACTIVE show sold on the given
// platform, the candidate set the matcher normalizes and compares
// against. Registries hold at most a few dozen live shows per
// platform, so filtering happens in memory, not in SQL.
func (r *ShowRepo) ActiveByPlatform(ctx context.Context, platform string) ([]model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows
	           WHERE platform = ? AND status = 'ACTIVE'
	           ORDER BY show_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, platform)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Show
	for rows.Next() {
		var s model.Show
		if err := scanShow(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// List returns shows ordered by date, optionally narrowed to one
// platform. Used by the browse endpoints; inactive shows are included
// so operators can audit the whole registry.
func (r *ShowRepo) List(ctx context.Context, platform string) ([]model.Show, error) {
	q := `SELECT ` + showColumns + ` FROM shows`
	var args []any
	if platform != "" {
		q += ` WHERE platform = ?`
		args = append(args, platform)
	}
	q += ` ORDER BY show_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Show
	for rows.Next() {
		var s model.Show
		if err := scanShow(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RaiseCapacity grows a show's capacity_total to the given value. The
// guard in the WHERE clause makes it a no-op when the stored capacity
// is already at least as large, so capacity never shrinks no matter
// how stale the caller's view was. A no-op against an existing row is
// success; only a missing row is an error.
func (r *ShowRepo) RaiseCapacity(ctx context.Context, id uint64, capacity uint32) error {
	const q = `UPDATE shows
	           SET capacity_total = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND capacity_total < ?`
	res, err := r.db.ExecContext(ctx, q, capacity, id, capacity)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrShowNotFound
	}
	return err
}
