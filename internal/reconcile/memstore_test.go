package reconcile

import (
	"context"
	"time"

	"github.com/showtix/salesledger/internal/model"
)

// memShowStore and memLedgerStore are in-memory stand-ins for the MySQL
// repositories, good enough to exercise every engine path without a
// database.

type memShowStore struct {
	nextID uint64
	shows  []model.Show
}

// add seeds a show and returns its generated id.
func (s *memShowStore) add(show model.Show) uint64 {
	if show.Status == "" {
		show.Status = model.ShowStatusActive
	}
	s.nextID++
	show.ID = s.nextID
	s.shows = append(s.shows, show)
	return show.ID
}

func (s *memShowStore) ActiveByPlatform(_ context.Context, platform string) ([]model.Show, error) {
	var out []model.Show
	for _, sh := range s.shows {
		if sh.Platform == platform && sh.Status == model.ShowStatusActive {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *memShowStore) Create(_ context.Context, show *model.Show) error {
	s.nextID++
	show.ID = s.nextID
	s.shows = append(s.shows, *show)
	return nil
}

func (s *memShowStore) RaiseCapacity(_ context.Context, id uint64, capacity uint32) error {
	for i := range s.shows {
		if s.shows[i].ID == id && s.shows[i].CapacityTotal < capacity {
			s.shows[i].CapacityTotal = capacity
		}
	}
	return nil
}

func (s *memShowStore) byID(id uint64) *model.Show {
	for i := range s.shows {
		if s.shows[i].ID == id {
			return &s.shows[i]
		}
	}
	return nil
}

type memLedgerStore struct {
	nextID uint64
	rows   []model.DailySalesRecord
	// failShowID makes Upsert fail for one show, to test that batch
	// processing isolates per-show persistence errors.
	failShowID uint64
	failErr    error
}

func (l *memLedgerStore) LatestBefore(_ context.Context, showID uint64, day time.Time) (*model.DailySalesRecord, error) {
	var best *model.DailySalesRecord
	for i := range l.rows {
		r := &l.rows[i]
		if r.ShowID != showID || !r.SaleDate.Before(day) {
			continue
		}
		if best == nil || r.SaleDate.After(best.SaleDate) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (l *memLedgerStore) Upsert(_ context.Context, rec *model.DailySalesRecord) (UpsertStatus, error) {
	if l.failShowID != 0 && rec.ShowID == l.failShowID {
		return "", l.failErr
	}
	for i := range l.rows {
		if l.rows[i].ShowID == rec.ShowID && sameDay(l.rows[i].SaleDate, rec.SaleDate) {
			rec.ID = l.rows[i].ID
			l.rows[i] = *rec
			return UpsertUpdated, nil
		}
	}
	l.nextID++
	rec.ID = l.nextID
	l.rows = append(l.rows, *rec)
	return UpsertInserted, nil
}

func (l *memLedgerStore) get(showID uint64, day time.Time) *model.DailySalesRecord {
	for i := range l.rows {
		if l.rows[i].ShowID == showID && sameDay(l.rows[i].SaleDate, day) {
			cp := l.rows[i]
			return &cp
		}
	}
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
