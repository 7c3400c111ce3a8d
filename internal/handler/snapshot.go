package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/salesledger/internal/model"
	"github.com/showtix/salesledger/internal/queue"
	"github.com/showtix/salesledger/internal/reconcile"
	queue_publisher "github.com/showtix/salesledger/internal/service"
)

// SnapshotHandler receives scraped sales snapshots and runs them through
// the reconciliation engine.
type SnapshotHandler struct {
	Engine *reconcile.Engine
}

func NewSnapshotHandler(engine *reconcile.Engine) *SnapshotHandler {
	return &SnapshotHandler{Engine: engine}
}

// candidatePart is the slimmed-down show shape returned with refusals so
// an operator can see what the matcher considered.
type candidatePart struct {
	ID       uint64 `json:"id"`
	Artist   string `json:"artist"`
	Venue    string `json:"venue"`
	ShowDate string `json:"show_date"`
	Platform string `json:"platform"`
}

func candidateParts(shows []model.Show) []candidatePart {
	out := make([]candidatePart, 0, len(shows))
	for _, s := range shows {
		out = append(out, candidatePart{
			ID:       s.ID,
			Artist:   s.Artist,
			Venue:    s.Venue,
			ShowDate: s.ShowDate.Format("2006-01-02"),
			Platform: s.Platform,
		})
	}
	return out
}

// Ingest processes one snapshot. A persisted snapshot answers 201 when a
// new ledger row was inserted and 200 when an existing row was replaced.
// Unmatched, ambiguous and invalid snapshots answer 422 with the reason
// and the candidates the matcher refused to choose between; the scraper
// is expected to log and move on, not retry.
func (h *SnapshotHandler) Ingest(c echo.Context) error {
	var snap model.SaleSnapshot
	if err := c.Bind(&snap); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	out, err := h.Engine.Process(c.Request().Context(), snap)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconcile failed"})
	}
	if out.Status != reconcile.StatusPersisted {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"status":     out.Status,
			"reason":     out.Reason,
			"candidates": candidateParts(out.Candidates),
		})
	}

	// Best effort: a broker outage never fails a snapshot that already
	// landed in the ledger.
	go func(show model.Show, rec model.DailySalesRecord, upsert reconcile.UpsertStatus) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishSalesReconciled(ctx, queue.SalesReconciledEvent{
			ShowID:            show.ID,
			Artist:            show.Artist,
			Venue:             show.Venue,
			Platform:          rec.Platform,
			SaleDate:          rec.SaleDate.Format("2006-01-02"),
			DailySold:         rec.DailySold,
			DailyRevenue:      rec.DailyRevenue.StringFixed(2),
			CumulativeSold:    rec.CumulativeSold,
			CumulativeRevenue: rec.CumulativeRevenue.StringFixed(2),
			OccupancyPct:      rec.OccupancyPct,
			Upsert:            string(upsert),
			ReconciledAt:      time.Now().UTC().Format(time.RFC3339),
		})
	}(*out.Show, *out.Record, out.Upsert)

	code := http.StatusOK
	if out.Upsert == reconcile.UpsertInserted {
		code = http.StatusCreated
	}
	return c.JSON(code, echo.Map{
		"status": out.Status,
		"upsert": out.Upsert,
		"show": candidatePart{
			ID:       out.Show.ID,
			Artist:   out.Show.Artist,
			Venue:    out.Show.Venue,
			ShowDate: out.Show.ShowDate.Format("2006-01-02"),
			Platform: out.Show.Platform,
		},
		"record": out.Record,
	})
}

// IngestBatch processes a whole scrape run in one call and returns the
// per-status counts. Individual failures are isolated inside the engine,
// so the response is always 200 with a summary.
func (h *SnapshotHandler) IngestBatch(c echo.Context) error {
	var snaps []model.SaleSnapshot
	if err := c.Bind(&snaps); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(snaps) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty batch"})
	}
	sum := h.Engine.ProcessBatch(c.Request().Context(), snaps)
	return c.JSON(http.StatusOK, sum)
}
