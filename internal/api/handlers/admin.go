package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wedshare/media-service/internal/api/apierr"
)

// AdminFiles handles GET /api/admin/files: same listing as the gallery,
// but including original names for download bookkeeping.
func (h *Handler) AdminFiles(c *gin.Context) {
	assets, err := h.Store.List()
	if err != nil {
		log.Printf("[ADMIN] listing failed: %v", err)
		apierr.Abort(c, http.StatusInternalServerError, apierr.CodeStorage, "failed to list files")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files": assets,
		"total": len(assets),
	})
}

// AdminStats handles GET /api/admin/stats: aggregate counters derived
// from the directory, since there is no database to ask.
func (h *Handler) AdminStats(c *gin.Context) {
	assets, err := h.Store.List()
	if err != nil {
		log.Printf("[ADMIN] stats failed: %v", err)
		apierr.Abort(c, http.StatusInternalServerError, apierr.CodeStorage, "failed to compute stats")
		return
	}

	var totalSize int64
	var latest time.Time
	for _, a := range assets {
		totalSize += a.SizeBytes
		if a.CreatedAt.After(latest) {
			latest = a.CreatedAt
		}
	}

	stats := gin.H{
		"total_files":   len(assets),
		"total_size_mb": float64(totalSize) / (1024 * 1024),
	}
	if !latest.IsZero() {
		stats["latest_upload"] = latest
	}
	c.JSON(http.StatusOK, stats)
}
