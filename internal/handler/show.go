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

// ShowHandler exposes the canonical show registry to operators.
type ShowHandler struct {
	Shows *repository.ShowRepo
}

func NewShowHandler(shows *repository.ShowRepo) *ShowHandler {
	return &ShowHandler{Shows: shows}
}

type registerShowReq struct {
	Artist        string `json:"artist"`
	Venue         string `json:"venue"`
	ShowDate      string `json:"show_date"` // YYYY-MM-DD
	ShowTime      string `json:"show_time"` // optional, HH:MM
	Platform      string `json:"platform"`
	CapacityTotal uint32 `json:"capacity_total"`
}

type refineCapacityReq struct {
	CapacityTotal uint32 `json:"capacity_total"`
}

// Register creates a show in the registry. Artist, venue, date, platform
// and capacity are all required; duplicates on the natural key answer 409.
func (h *ShowHandler) Register(c echo.Context) error {
	var req registerShowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Artist = strings.TrimSpace(req.Artist)
	req.Venue = strings.TrimSpace(req.Venue)
	req.Platform = strings.TrimSpace(req.Platform)
	if req.Artist == "" || req.Venue == "" || req.Platform == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "artist/venue/platform required"})
	}
	if req.CapacityTotal == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity_total must be positive"})
	}
	showDate, err := time.Parse("2006-01-02", req.ShowDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	show := &model.Show{
		Artist:        req.Artist,
		Venue:         req.Venue,
		ShowDate:      showDate,
		ShowTime:      strings.TrimSpace(req.ShowTime),
		Platform:      req.Platform,
		CapacityTotal: req.CapacityTotal,
	}
	if err := h.Shows.Create(ctx, show); err != nil {
		if err == repository.ErrShowExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "show already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create show failed"})
	}
	return c.JSON(http.StatusCreated, show)
}

// List returns the registry, optionally filtered by ?platform=.
func (h *ShowHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shows, err := h.Shows.List(ctx, strings.TrimSpace(c.QueryParam("platform")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list shows failed"})
	}
	if shows == nil {
		shows = []model.Show{}
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": shows, "total": len(shows)})
}

// Get returns one show by id.
func (h *ShowHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
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
	return c.JSON(http.StatusOK, show)
}

// RefineCapacity raises a show's capacity once the real figure is known.
// Capacity only ever grows; a request below the stored value is accepted
// and ignored so stale operators cannot shrink availability.
func (h *ShowHandler) RefineCapacity(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req refineCapacityReq
	if err := c.Bind(&req); err != nil || req.CapacityTotal == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity_total must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Shows.RaiseCapacity(ctx, id, req.CapacityTotal); err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update capacity failed"})
	}
	show, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	return c.JSON(http.StatusOK, show)
}
