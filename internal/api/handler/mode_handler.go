package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/ports"
)

// ModeHandler exposes the global scanner mode register. The GET side is
// polled by the scanner device; the POST side is an operator action.
type ModeHandler struct {
	service ports.ModeService
}

func NewModeHandler(service ports.ModeService) *ModeHandler {
	return &ModeHandler{service: service}
}

// Get handles GET /v1/mode.
//
// @Summary      Current scanner mode
// @Tags         mode
// @Produce      json
// @Success      200  {object}  modeResponse
// @Router       /v1/mode [get]
func (h *ModeHandler) Get(c echo.Context) error {
	mode, err := h.service.Current(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, modeResponse{Mode: string(mode)})
}

// Set handles POST /v1/mode.
//
// @Summary      Switch scanner mode
// @Tags         mode
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setModeRequest  true  "Target mode"
// @Success      200   {object}  setModeResponse
// @Failure      400   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /v1/mode [post]
func (h *ModeHandler) Set(c echo.Context) error {
	var req setModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	mode, err := h.service.Switch(c.Request().Context(), req.Mode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, setModeResponse{
		Success: true,
		Mode:    string(mode),
		Message: fmt.Sprintf("Mode set to %s", mode),
	})
}
