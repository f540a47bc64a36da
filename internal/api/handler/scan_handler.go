package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/silab/attendance-system/internal/core/ports"
)

// displayDateLayout matches what the scanning surface renders under the banner.
const displayDateLayout = "02/01/2006"

const clockLayout = "15:04:05"

// ScanHandler handles attendance scan ingestion.
type ScanHandler struct {
	service ports.ScanService
}

func NewScanHandler(service ports.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// Scan handles POST /v1/scan — one observed tap.
//
// @Summary      Ingest an RFID attendance scan
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        body  body      scanRequest  true  "Observed RFID code"
// @Success      200   {object}  scanResponse
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /v1/scan [post]
func (h *ScanHandler) Scan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.Ingest(c.Request().Context(), ports.ScanInput{
		RFIDCode:   req.RFIDCode,
		ObservedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, scanResponse{
		Success: true,
		Message: result.Message,
		Data: scanData{
			User: scanUserResponse{
				Name:     result.User.Name,
				Prodi:    result.User.Prodi,
				Semester: result.User.Semester,
			},
			Attendance: scanAttendanceResponse{
				Type:      string(result.Action),
				Timestamp: result.Timestamp.Local().Format(clockLayout),
				Date:      result.Timestamp.Local().Format(displayDateLayout),
			},
		},
	})
}

// Status handles POST /v1/scan/status — today's record for a card, no mutation.
//
// @Summary      Get today's attendance status for a card
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        body  body      scanRequest  true  "RFID code"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /v1/scan/status [post]
func (h *ScanHandler) Status(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	status, err := h.service.Status(c.Request().Context(), req.RFIDCode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    status,
	})
}
