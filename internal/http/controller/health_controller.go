package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/apm-demo-service/internal/service"
)

// statusClientClosedRequest is logged for requests abandoned by the client.
const statusClientClosedRequest = 499

// HealthController handles the database health endpoint.
type HealthController struct {
	healthService *service.HealthService
}

func NewHealthController(healthService *service.HealthService) *HealthController {
	return &HealthController{
		healthService: healthService,
	}
}

// DBHealth runs the liveness query. The failure body stays generic; details go to the log.
func (hc *HealthController) DBHealth(c *gin.Context) {
	event, err := hc.healthService.CheckDatabase(c.Request.Context())
	if err != nil {
		// the client went away mid-check
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}
	if !event.DBUp {
		c.JSON(http.StatusInternalServerError, gin.H{
			"db_up": false,
			"error": "DB check failed (see application logs / Prometheus metric db_up).",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"db_up":           true,
		"latency_seconds": event.LatencySeconds,
	})
}
