package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// AttendanceHandler serves the ledger read endpoints.
type AttendanceHandler struct {
	repo ports.AttendanceRepository
}

func NewAttendanceHandler(repo ports.AttendanceRepository) *AttendanceHandler {
	return &AttendanceHandler{repo: repo}
}

// Today handles GET /v1/attendance/today — the rows shown on the lab screen.
//
// @Summary      Today's attendance rows
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/attendance/today [get]
func (h *AttendanceHandler) Today(c echo.Context) error {
	today := time.Now().Format(domain.DateLayout)

	ctx := c.Request().Context()
	rows, err := h.repo.ListWithUsers(ctx, today, today)
	if err != nil {
		return err
	}
	checkins, err := h.repo.CountByAction(ctx, domain.ActionCheckIn, today, today)
	if err != nil {
		return err
	}
	checkouts, err := h.repo.CountByAction(ctx, domain.ActionCheckOut, today, today)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"date":    today,
		"data":    rows,
		"summary": map[string]int64{
			"checkins":  checkins,
			"checkouts": checkouts,
		},
	})
}

// List handles GET /v1/attendance — paginated history, optionally filtered
// to a single date.
//
// @Summary      Attendance history
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        date   query  string  false  "Filter to a single date (YYYY-MM-DD)"
// @Param        page   query  int     false  "Page number, starting at 1"
// @Param        limit  query  int     false  "Rows per page"
// @Success      200    {object}  map[string]any
// @Router       /v1/attendance [get]
func (h *AttendanceHandler) List(c echo.Context) error {
	filter := ports.ListAttendanceFilter{
		Date:  c.QueryParam("date"),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 15),
	}

	if filter.Date != "" {
		if _, err := time.Parse(domain.DateLayout, filter.Date); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
	}

	rows, total, err := h.repo.ListRange(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    rows,
		"meta": map[string]any{
			"page":  filter.Page,
			"limit": filter.Limit,
			"total": total,
		},
	})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
