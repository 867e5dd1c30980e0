package handler

import (
	"errors"
	"net/http"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/employee"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/scan"
	"github.com/gin-gonic/gin"
)

// errorResponse はエラー応答の JSON ボディです。
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError はドメインエラーを HTTP ステータスとエラー種別へ変換します。
func writeError(c *gin.Context, err error) {
	status, kind := classify(err)
	c.JSON(status, errorResponse{Error: kind, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, employee.ErrInvalidID):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, scan.ErrInvalidDevice):
		return http.StatusBadRequest, "invalid_device"
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound, "invalid_employee"
	case errors.Is(err, employee.ErrEmployeeInactive):
		return http.StatusForbidden, "inactive_employee"
	case errors.Is(err, attendance.ErrMaxSequenceReached):
		return http.StatusConflict, "max_reached"
	case errors.Is(err, attendance.ErrNoActiveRoster):
		return http.StatusConflict, "no_active_roster"
	case errors.Is(err, attendance.ErrRecordNotFound):
		return http.StatusNotFound, "record_not_found"
	case errors.Is(err, scan.ErrScanDebounced):
		return http.StatusTooManyRequests, "scan_debounced"
	case errors.Is(err, scan.ErrScanInFlight):
		return http.StatusTooManyRequests, "scan_in_flight"
	case errors.Is(err, scan.ErrCooldownActive):
		return http.StatusTooManyRequests, "cooldown_active"
	case errors.Is(err, attendance.ErrTransitionFailed):
		return http.StatusInternalServerError, "transition_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
