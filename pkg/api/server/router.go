// Package server assembles the HTTP API.
package server

import (
	"net/http"

	apiConfig "bsr_estimator/pkg/api/config"
	apiEstimate "bsr_estimator/pkg/api/estimate"
	"bsr_estimator/pkg/api/httputil"
	"bsr_estimator/pkg/core/calibration"
	"bsr_estimator/pkg/core/config"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every endpoint over a loaded calibration table.
func NewRouter(cfg config.Config, table *calibration.Table) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), httputil.RequestID(), httputil.CORS(cfg.AllowedOrigin))

	api := r.Group("/api")
	apiEstimate.SetupRoutes(api, apiEstimate.NewHandler(table))

	configHandler := apiConfig.NewHandler(table, cfg.StrictCalibration)
	api.GET("/config", configHandler.HandleConfig)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// CORS answers OPTIONS preflights before this handler runs.
	r.NoRoute(func(c *gin.Context) {
		httputil.RespondError(c, http.StatusNotFound, "Not found")
	})

	return r
}
