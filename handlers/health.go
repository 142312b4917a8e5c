package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchly/utils"
)

// HealthHandler reports liveness plus the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"dependencies": utils.GetHealthStatus(),
	})
}
