package handler

import (
	"net/http"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/cooldown"
	"github.com/gin-gonic/gin"
)

// CooldownHandler はスキャン地点ごとのクールダウン状態を公開します。
type CooldownHandler struct {
	registry *cooldown.Registry
}

// NewCooldownHandler は CooldownHandler を生成します。
func NewCooldownHandler(registry *cooldown.Registry) *CooldownHandler {
	return &CooldownHandler{registry: registry}
}

type cooldownResponse struct {
	DeviceID         string     `json:"device_id"`
	Active           bool       `json:"active"`
	Type             string     `json:"type,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds,omitempty"`
	Message          string     `json:"message,omitempty"`
}

// Get は指定デバイスのクールダウン状態を返します。
func (h *CooldownHandler) Get(c *gin.Context) {
	deviceID := c.Param("device_id")
	coord := h.registry.ForDevice(deviceID)

	state := coord.State()
	if state == nil {
		c.JSON(http.StatusOK, cooldownResponse{DeviceID: deviceID, Active: false})
		return
	}

	startedAt := state.StartedAt
	c.JSON(http.StatusOK, cooldownResponse{
		DeviceID:         deviceID,
		Active:           true,
		Type:             string(state.Type),
		StartedAt:        &startedAt,
		RemainingSeconds: int(state.Remaining.Round(time.Second).Seconds()),
		Message:          coord.Message(),
	})
}

// Cancel はアクティブなクールダウンを破棄します。管理者向けの操作です。
func (h *CooldownHandler) Cancel(c *gin.Context) {
	deviceID := c.Param("device_id")
	h.registry.ForDevice(deviceID).Cancel()
	c.Status(http.StatusNoContent)
}
