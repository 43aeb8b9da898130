package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
)

const serviceName = "LOCA Backend"

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
	}
}

// HandleRoot godoc
// @Summary      Service banner
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Router       / [get]
func (h *HealthHandler) HandleRoot(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.Health{
		Service: serviceName,
		Version: h.version,
		Status:  "running",
	})
}

// HandleHealthcheck godoc
// @Summary      Liveness and database check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Failure      503  {object}  response.Health
// @Router       /health [get]
func (h *HealthHandler) HandleHealthcheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	health := response.Health{
		Service:  serviceName,
		Version:  h.version,
		Status:   "UP",
		Database: "UP",
	}

	if err := h.db.PingContext(pingCtx); err != nil {
		zap.L().Warn("database ping failed", zap.Error(err))
		health.Status = "DOWN"
		health.Database = "DOWN"
		ctx.JSON(http.StatusServiceUnavailable, health)
		return
	}

	ctx.JSON(http.StatusOK, health)
}
