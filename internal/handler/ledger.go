package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/salesledger/internal/model"
	"github.com/showtix/salesledger/internal/repository"
)

// LedgerHandler exposes read access to the daily sales ledger.
type LedgerHandler struct {
	Shows  *repository.ShowRepo
	Ledger *repository.LedgerRepo
}

func NewLedgerHandler(shows *repository.ShowRepo, ledger *repository.LedgerRepo) *LedgerHandler {
	return &LedgerHandler{Shows: shows, Ledger: ledger}
}

// dateParam validates an optional YYYY-MM-DD query parameter. The empty
// string passes through as "unbounded".
func dateParam(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", true
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return "", false
	}
	return v, true
}

// ShowLedger returns the full sales history of one show ordered by sale
// date, bounded by optional ?from= and ?to= dates.
func (h *LedgerHandler) ShowLedger(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	from, ok := dateParam(c.QueryParam("from"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, ok := dateParam(c.QueryParam("to"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	show, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}

	rows, err := h.Ledger.ListByShow(ctx, id, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ledger failed"})
	}
	if rows == nil {
		rows = []model.DailySalesRecord{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show":   show,
		"ledger": rows,
		"total":  len(rows),
	})
}

// Search queries the ledger across shows with artist/venue/platform
// filters, a date window and pagination.
func (h *LedgerHandler) Search(c echo.Context) error {
	q := repository.LedgerSearchQuery{
		Artist:   strings.TrimSpace(c.QueryParam("artist")),
		Venue:    strings.TrimSpace(c.QueryParam("venue")),
		Platform: strings.TrimSpace(c.QueryParam("platform")),
	}
	var ok bool
	if q.From, ok = dateParam(c.QueryParam("from")); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	if q.To, ok = dateParam(c.QueryParam("to")); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}

	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	if q.Page < 1 {
		q.Page = 1
	}
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = 50
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Ledger.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"results":   rows,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}
