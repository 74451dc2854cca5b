package config

import (
	"net/http"

	"bsr_estimator/pkg/core/calibration"

	"github.com/gin-gonic/gin"
)

type Response struct {
	CalibrationSource  string                  `json:"calibration_source"`
	StrictCalibration  bool                    `json:"strict_calibration"`
	Categories         int                     `json:"categories"`
	ExcludedCategories []calibration.Rejection `json:"excluded_categories"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Table  *calibration.Table
	Strict bool
}

// NewHandler creates a new config handler
func NewHandler(table *calibration.Table, strict bool) *Handler {
	return &Handler{Table: table, Strict: strict}
}

// HandleConfig reports which calibration table is being served and which
// categories were excluded while loading it.
func (h *Handler) HandleConfig(c *gin.Context) {
	excluded := h.Table.Rejected()
	if excluded == nil {
		excluded = []calibration.Rejection{}
	}
	c.JSON(http.StatusOK, Response{
		CalibrationSource:  h.Table.Source(),
		StrictCalibration:  h.Strict,
		Categories:         h.Table.Len(),
		ExcludedCategories: excluded,
	})
}
