package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUnknownCard):
		return http.StatusNotFound, "RFID tidak terdaftar atau tidak aktif"
	case errors.Is(err, domain.ErrWrongMode):
		return http.StatusConflict, "scanner sedang dalam mode registrasi"
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		return http.StatusConflict, "sudah check-in hari ini"
	case errors.Is(err, domain.ErrAlreadyCheckedOut):
		return http.StatusConflict, "sudah check-in dan check-out hari ini"
	case errors.Is(err, domain.ErrNotCheckedInYet):
		return http.StatusConflict, "belum check-in hari ini"
	case errors.Is(err, domain.ErrInvalidMode):
		return http.StatusBadRequest, "mode tidak dikenal"
	case errors.Is(err, domain.ErrBatchConflict):
		return http.StatusBadRequest, "batch mengandung entri yang bertentangan"
	case errors.Is(err, domain.ErrInvalidPiketDay):
		return http.StatusBadRequest, "hari piket tidak valid"
	case errors.Is(err, domain.ErrCardAlreadyBound):
		return http.StatusConflict, "RFID sudah terdaftar"
	case errors.Is(err, ports.ErrNoRecentScan):
		return http.StatusNotFound, "tidak ada scan terbaru"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "data absensi tidak ditemukan"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user tidak ditemukan"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user sudah terdaftar"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "kredensial tidak valid"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "akses ditolak"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "terjadi kesalahan sistem"
}
