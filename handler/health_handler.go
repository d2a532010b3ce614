package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/types"
)

type HealthHandler struct {
	index database.VectorIndex
	blobs database.BlobStorage
}

func NewHealthHandler(index database.VectorIndex, blobs database.BlobStorage) *HealthHandler {
	return &HealthHandler{
		index: index,
		blobs: blobs,
	}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{
		"index":   "ok",
		"storage": "ok",
	}
	healthy := true

	if err := h.index.HealthCheck(ctx); err != nil {
		checks["index"] = err.Error()
		healthy = false
	}
	if err := h.blobs.HealthCheck(ctx); err != nil {
		checks["storage"] = err.Error()
		healthy = false
	}

	data := gin.H{"checks": checks}
	if stats, err := h.index.GetStats(ctx); err == nil {
		data["index_stats"] = stats
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, types.DataResponse{
		Status: healthy,
		Data:   data,
	})
}
