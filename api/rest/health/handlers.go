package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/logger"
)

const readyTimeout = 2 * time.Second

// Handler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: "lunos",
		Version: "1.0.0",
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

// ReadyHandler godoc
// @Summary Readiness check
// @Description Reports whether the database answers a ping
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /ready [get]
func ReadyHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.ErrorErr(err, "readiness check failed")
			c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable", Database: "unreachable"})
			return
		}

		c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Database: "ok"})
	}
}
