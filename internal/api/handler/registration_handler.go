package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/ports"
)

type bindCardRequest struct {
	RFIDCode string `json:"rfid_code" validate:"required"`
	UserID   string `json:"user_id"   validate:"required"`
}

// RegistrationHandler exposes the explicit card bind flow.
type RegistrationHandler struct {
	service ports.RegistrationService
}

func NewRegistrationHandler(service ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Bind handles POST /v1/rfid/register — attach a free code to a user.
//
// @Summary      Register an RFID card to a user
// @Tags         registration
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bindCardRequest  true  "Code and target user"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /v1/rfid/register [post]
func (h *RegistrationHandler) Bind(c echo.Context) error {
	var req bindCardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Bind(c.Request().Context(), req.RFIDCode, req.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "RFID berhasil didaftarkan",
		"data": map[string]any{
			"user": map[string]any{
				"id":        user.ID,
				"name":      user.Name,
				"rfid_code": user.RFIDCode,
			},
		},
	})
}

// Probe handles POST /v1/rfid/scan-register — availability check that also
// records the last-scan bridge so the registration form can auto-fill.
//
// @Summary      Probe a scanned code for registration
// @Tags         registration
// @Accept       json
// @Produce      json
// @Param        body  body      scanRequest  true  "Observed RFID code"
// @Success      200   {object}  map[string]any
// @Router       /v1/rfid/scan-register [post]
func (h *RegistrationHandler) Probe(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	probe, err := h.service.Probe(c.Request().Context(), req.RFIDCode)
	if err != nil {
		return err
	}

	msg := "RFID tersedia untuk registrasi"
	if probe.IsRegistered {
		msg = "RFID sudah terdaftar"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": !probe.IsRegistered,
		"message": msg,
		"data":    probe,
	})
}

// LastScan handles GET /v1/rfid/last-scan — polled by the registration UI.
// The stored value is consumed on read.
//
// @Summary      Most recently observed raw scan code
// @Tags         registration
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/rfid/last-scan [get]
func (h *RegistrationHandler) LastScan(c echo.Context) error {
	last, err := h.service.LastScan(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Last scan retrieved",
		"data":    last,
	})
}

// Users handles GET /v1/rfid/users — the registration picker list.
//
// @Summary      Aslab accounts for card registration
// @Tags         registration
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/rfid/users [get]
func (h *RegistrationHandler) Users(c echo.Context) error {
	users, err := h.service.Users(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    users,
	})
}
