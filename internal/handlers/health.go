package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ConnectionState reports whether the datastore is reachable.
type ConnectionState interface {
	String() string
}

// Health reports liveness. It answers even while the datastore is down.
func Health(environment string, state ConnectionState) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"message":     "Service is healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"environment": environment,
			"database":    state.String(),
		})
	}
}
