package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/httpapi"
	"leadcrm/internal/metrics"
	"leadcrm/pkg/response"
	"leadcrm/pkg/utils"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, db *sql.DB, authMW, submitMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if db != nil {
			if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
				_ = c.Error(err)
				response.Error(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	promHandler := metrics.Handler()
	r.GET("/metrics", func(c *gin.Context) {
		if db != nil {
			metrics.UpdateDBStats(db.Stats())
		}
		promHandler.ServeHTTP(c.Writer, c.Request)
	})

	h.Register(r, authMW, submitMW)
}
