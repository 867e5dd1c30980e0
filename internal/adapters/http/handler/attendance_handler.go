package handler

import (
	"net/http"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
	"github.com/gin-gonic/gin"
)

// AttendanceHandler は当日レコードの読み取り系エンドポイントを提供します。
type AttendanceHandler struct {
	sequencer attendance.UseCase
}

// NewAttendanceHandler は AttendanceHandler を生成します。
func NewAttendanceHandler(sequencer attendance.UseCase) *AttendanceHandler {
	return &AttendanceHandler{sequencer: sequencer}
}

type stateResponse struct {
	EmployeeID string `json:"employee_id"`
	State      string `json:"state"`
}

type nextActionResponse struct {
	EmployeeID string `json:"employee_id"`
	NextAction string `json:"next_action,omitempty"`
	Completed  bool   `json:"completed"`
}

type recordView struct {
	ID                     string     `json:"id"`
	RecordDate             time.Time  `json:"record_date"`
	FirstCheckInTime       *time.Time `json:"first_check_in_time,omitempty"`
	FirstCheckOutTime      *time.Time `json:"first_check_out_time,omitempty"`
	SecondCheckInTime      *time.Time `json:"second_check_in_time,omitempty"`
	SecondCheckOutTime     *time.Time `json:"second_check_out_time,omitempty"`
	Status                 string     `json:"status"`
	MinutesLate            int        `json:"minutes_late"`
	BreakDurationMinutes   int        `json:"break_duration_minutes"`
	WorkingDurationMinutes int        `json:"working_duration_minutes"`
}

type dailySummaryResponse struct {
	EmployeeID     string      `json:"employee_id"`
	State          string      `json:"state"`
	WorkingMinutes int         `json:"working_minutes"`
	BreakMinutes   int         `json:"break_minutes"`
	WorkingLabel   string      `json:"working_label"`
	ComplianceRate float64     `json:"compliance_rate"`
	Record         *recordView `json:"record,omitempty"`
}

// GetState は当日の進行状態を返します。
func (h *AttendanceHandler) GetState(c *gin.Context) {
	employeeID := c.Param("employee_id")

	state, err := h.sequencer.GetCurrentState(c.Request.Context(), employeeID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stateResponse{EmployeeID: employeeID, State: string(state)})
}

// GetNextAction は次のスキャンで実行されるアクションを返します。
func (h *AttendanceHandler) GetNextAction(c *gin.Context) {
	employeeID := c.Param("employee_id")

	action, ok, err := h.sequencer.GetNextAction(c.Request.Context(), employeeID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, nextActionResponse{
		EmployeeID: employeeID,
		NextAction: string(action),
		Completed:  !ok,
	})
}

// GetToday は当日レコードのサマリを返します。勤務中の実働は現在時刻
// まで計上されます。
func (h *AttendanceHandler) GetToday(c *gin.Context) {
	employeeID := c.Param("employee_id")

	summary, err := h.sequencer.GetDailyRecord(c.Request.Context(), employeeID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := dailySummaryResponse{
		EmployeeID:     employeeID,
		State:          string(summary.State),
		WorkingMinutes: summary.WorkingMinutes,
		BreakMinutes:   summary.BreakMinutes,
		WorkingLabel:   summary.WorkingLabel,
		ComplianceRate: summary.ComplianceRate,
	}

	if rec := summary.Record; rec != nil {
		resp.Record = &recordView{
			ID:                     rec.ID,
			RecordDate:             rec.RecordDate,
			FirstCheckInTime:       rec.FirstCheckInTime,
			FirstCheckOutTime:      rec.FirstCheckOutTime,
			SecondCheckInTime:      rec.SecondCheckInTime,
			SecondCheckOutTime:     rec.SecondCheckOutTime,
			Status:                 string(rec.Status),
			MinutesLate:            rec.MinutesLate,
			BreakDurationMinutes:   rec.BreakDurationMinutes,
			WorkingDurationMinutes: rec.WorkingDurationMinutes,
		}
	}

	c.JSON(http.StatusOK, resp)
}
