package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

type scheduleEntryRequest struct {
	UserID   string `json:"user_id"   validate:"required"`
	PiketDay string `json:"piket_day" validate:"omitempty,oneof=senin selasa rabu kamis jumat"`
}

type batchScheduleRequest struct {
	Schedules []scheduleEntryRequest `json:"schedules" validate:"required,min=1,dive"`
}

type swapScheduleRequest struct {
	UserID   string `json:"user_id"   validate:"required"`
	PiketDay string `json:"piket_day" validate:"required,oneof=senin selasa rabu kamis jumat"`
}

type scheduleUserResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Prodi    string           `json:"prodi,omitempty"`
	PiketDay *domain.PiketDay `json:"piket_day"`
}

// ScheduleHandler serves the weekly duty roster endpoints.
type ScheduleHandler struct {
	service ports.ScheduleService
}

func NewScheduleHandler(service ports.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func toScheduleUser(u domain.User) scheduleUserResponse {
	return scheduleUserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Prodi:    u.Prodi,
		PiketDay: u.PiketDay,
	}
}

// List handles GET /v1/schedule.
//
// @Summary      Current duty roster grouped by day
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/schedule [get]
func (h *ScheduleHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	grouped := make(map[domain.PiketDay][]scheduleUserResponse, len(domain.PiketDays))
	for _, day := range domain.PiketDays {
		grouped[day] = []scheduleUserResponse{}
	}
	unassigned := make([]scheduleUserResponse, 0)
	for _, u := range users {
		if u.PiketDay == nil {
			unassigned = append(unassigned, toScheduleUser(u))
			continue
		}
		grouped[*u.PiketDay] = append(grouped[*u.PiketDay], toScheduleUser(u))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       grouped,
		"unassigned": unassigned,
	})
}

// Batch handles POST /v1/schedule/batch — all entries apply or none do.
//
// @Summary      Apply a batch of roster changes atomically
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      batchScheduleRequest  true  "Roster changes"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]any
// @Router       /v1/schedule/batch [post]
func (h *ScheduleHandler) Batch(c echo.Context) error {
	var req batchScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	updates := make([]ports.ScheduleUpdate, 0, len(req.Schedules))
	for _, entry := range req.Schedules {
		u := ports.ScheduleUpdate{UserID: entry.UserID}
		if entry.PiketDay != "" {
			day := domain.PiketDay(entry.PiketDay)
			u.NewPiketDay = &day
		}
		updates = append(updates, u)
	}

	applied, err := h.service.ApplyBatch(c.Request().Context(), updates)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Jadwal piket berhasil diperbarui",
		"applied": applied,
	})
}

// Swap handles POST /v1/schedule/swap — move one aslab to another day.
//
// @Summary      Move a single aslab to a different duty day
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      swapScheduleRequest  true  "Target user and day"
// @Success      200   {object}  map[string]any
// @Router       /v1/schedule/swap [post]
func (h *ScheduleHandler) Swap(c echo.Context) error {
	var req swapScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	day := domain.PiketDay(req.PiketDay)
	user, err := h.service.Swap(c.Request().Context(), req.UserID, &day)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Jadwal piket berhasil dipindahkan",
		"data":    toScheduleUser(*user),
	})
}

// Generate handles POST /v1/schedule/generate — rebuild a balanced roster.
//
// @Summary      Generate a balanced roster across weekdays
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/schedule/generate [post]
func (h *ScheduleHandler) Generate(c echo.Context) error {
	assigned, err := h.service.Generate(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Jadwal piket berhasil digenerate",
		"assigned": assigned,
	})
}

// Reset handles POST /v1/schedule/reset — clear every assignment.
//
// @Summary      Clear the entire duty roster
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/schedule/reset [post]
func (h *ScheduleHandler) Reset(c echo.Context) error {
	if err := h.service.Reset(c.Request().Context()); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Jadwal piket berhasil direset",
	})
}
