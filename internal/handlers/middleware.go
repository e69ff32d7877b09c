package handlers

import (
	"fmt"
	"net/http"
	"time"

	"backend-triage/internal/apperr"
	"backend-triage/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponder writes the error envelope for the last error recorded by a
// handler or middleware. Server failures are logged with their cause on the
// logger attached by RequestLogger.
func ErrorResponder() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		status, env := apperr.Normalize(last.Err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("Request failed",
				zap.String("op", apperr.ErrorOp(last.Err)),
				zap.Int("status", status),
				zap.Error(last.Err),
			)
		}
		c.JSON(status, env)
	}
}

// Recovery turns a panic into a 500 error for ErrorResponder.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.Error(apperr.Internal("handlers.Recovery", fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}

// RequestLogger attaches a logger carrying the method and path to the
// request context and logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			reqLog.Warn("Request", fields...)
			return
		}
		reqLog.Info("Request", fields...)
	}
}

// CORS allows the configured origins. "*" or an empty list allows any.
func CORS(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

func noRoute(c *gin.Context) {
	c.Error(apperr.NotFound("handlers.NoRoute", "Route not found"))
}
