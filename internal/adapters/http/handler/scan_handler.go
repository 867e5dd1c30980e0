package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/scan"
	"github.com/gin-gonic/gin"
)

// ScanProcessor はスキャンパイプラインの抽象です。
type ScanProcessor interface {
	Process(ctx context.Context, deviceID, employeeID string) (*scan.Result, error)
}

// ScanHandler はスキャン地点からの打刻要求を受け付けます。
type ScanHandler struct {
	processor ScanProcessor
}

// NewScanHandler は ScanHandler を生成します。
func NewScanHandler(processor ScanProcessor) *ScanHandler {
	return &ScanHandler{processor: processor}
}

type scanRequest struct {
	DeviceID   string `json:"device_id" binding:"required"`
	EmployeeID string `json:"employee_id" binding:"required"`
}

type scanResponse struct {
	ScanID         string     `json:"scan_id"`
	DeviceID       string     `json:"device_id"`
	Action         string     `json:"action"`
	EmployeeID     string     `json:"employee_id"`
	EmployeeName   string     `json:"employee_name"`
	Timestamp      time.Time  `json:"timestamp"`
	CheckInTime    *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	Sequence       int        `json:"sequence"`
	Status         string     `json:"status"`
	MinutesLate    int        `json:"minutes_late"`
	BreakMinutes   int        `json:"break_minutes"`
	WorkingMinutes int        `json:"working_minutes"`
	ComplianceRate float64    `json:"compliance_rate"`
	DurationLabel  string     `json:"duration_label,omitempty"`
	EarlyDeparture bool       `json:"early_departure"`
}

// Scan は1回の物理スキャンを処理します。
func (h *ScanHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	res, err := h.processor.Process(c.Request.Context(), req.DeviceID, req.EmployeeID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, scanResponse{
		ScanID:         res.ScanID,
		DeviceID:       res.DeviceID,
		Action:         string(res.Action),
		EmployeeID:     res.EmployeeID,
		EmployeeName:   res.EmployeeName,
		Timestamp:      res.Timestamp,
		CheckInTime:    res.CheckInTime,
		CheckOutTime:   res.CheckOutTime,
		Sequence:       res.Sequence,
		Status:         string(res.Status),
		MinutesLate:    res.MinutesLate,
		BreakMinutes:   res.BreakMinutes,
		WorkingMinutes: res.WorkingMinutes,
		ComplianceRate: res.ComplianceRate,
		DurationLabel:  res.DurationLabel,
		EarlyDeparture: res.EarlyDeparture,
	})
}
