package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"que-aula/backend/internal/dto"
	"que-aula/backend/pkg/response"
)

// Version 服务版本，构建时可通过 -ldflags 覆盖
var Version = "1.0.0"

// Pinger 数据库连通性检查
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Root 服务信息
// GET /
func Root(c *gin.Context) {
	response.OK(c, dto.ServiceInfoResponse{
		Message: "Que Aula API está funcionando!",
		Version: Version,
		Endpoints: map[string]string{
			"classes": "/api/v1/classes",
			"export":  "/api/v1/classes/export",
			"health":  "/health",
		},
	})
}

// Health 健康检查，db 为 nil 时只报告进程存活
// GET /health
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			response.OK(c, dto.HealthResponse{Status: "ok", Database: "unknown"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			response.Status(c, http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Database: "down"})
			return
		}
		response.OK(c, dto.HealthResponse{Status: "ok", Database: "up"})
	}
}
