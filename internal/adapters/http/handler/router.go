// Package handler は gin を用いた HTTP アダプタを実装します。ドメイン
// エラーと HTTP ステータスの対応はこの層で閉じます。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter はルーティング済みの gin.Engine を生成します。
func NewRouter(scans *ScanHandler, attendance *AttendanceHandler, cooldowns *CooldownHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/scans", scans.Scan)

		v1.GET("/attendance/:employee_id/state", attendance.GetState)
		v1.GET("/attendance/:employee_id/next-action", attendance.GetNextAction)
		v1.GET("/attendance/:employee_id/today", attendance.GetToday)

		v1.GET("/devices/:device_id/cooldown", cooldowns.Get)
		v1.DELETE("/devices/:device_id/cooldown", cooldowns.Cancel)
	}

	return r
}
