package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"bsr_estimator/pkg/api/server"
	"bsr_estimator/pkg/core/calibration"
	"bsr_estimator/pkg/core/config"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[FATAL] Configuration error: %v\n", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	// Calibration data is loaded once and shared read-only by every request.
	table, err := calibration.Load(cfg.CalibrationFile, calibration.Options{Strict: cfg.StrictCalibration})
	if err != nil {
		fmt.Printf("[FATAL] Failed to load calibration table: %v\n", err)
		os.Exit(1)
	}
	for _, rej := range table.Rejected() {
		fmt.Printf("[WARNING] Category %q not served: %s\n", rej.Category, rej.Reason)
	}

	router := server.NewRouter(cfg, table)

	fmt.Printf("API server starting on %s...\n", cfg.Addr())
	fmt.Println("  - POST /api/estimate")
	fmt.Println("  - POST /api/estimate/report?format=markdown|html")
	fmt.Println("  - GET  /api/categories")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - GET  /health")

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
