package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// DashboardHandler serves snapshot reads for clients that want the current
// state without waiting for the next broadcast.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Snapshot handles GET /v1/dashboard.
//
// @Summary      Current dashboard snapshot
// @Tags         dashboard
// @Produce      json
// @Param        start_date  query  string  false  "Range start (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Range end (YYYY-MM-DD)"
// @Success      200  {object}  ports.Snapshot
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Snapshot(c echo.Context) error {
	start := c.QueryParam("start_date")
	end := c.QueryParam("end_date")

	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
	}
	if start != "" && end != "" && end < start {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date precedes start_date")
	}

	snap, err := h.service.Build(c.Request().Context(), start, end)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snap)
}

// DayDetail handles GET /v1/dashboard/day/:date.
//
// @Summary      Attendance detail for a single day
// @Tags         dashboard
// @Produce      json
// @Param        date  path  string  true  "Day to inspect (YYYY-MM-DD)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /v1/dashboard/day/{date} [get]
func (h *DashboardHandler) DayDetail(c echo.Context) error {
	date := c.Param("date")
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	rows, err := h.service.DayDetail(c.Request().Context(), date)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"date":    date,
		"data":    rows,
	})
}
