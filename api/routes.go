package api

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the API endpoints on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/predict", h.Predict)
	r.POST("/batch_predict", h.BatchPredict)
	r.POST("/download_results", h.DownloadResults)
	r.POST("/extract", h.Extract)
	r.GET("/health", h.Health)
	r.GET("/features", h.Features)
}
