package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wedshare/media-service/internal/api/apierr"
	"github.com/wedshare/media-service/internal/media"
	"github.com/wedshare/media-service/internal/storage"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListFiles handles GET /api/files: the gallery listing, newest first.
func (h *Handler) ListFiles(c *gin.Context) {
	assets, err := h.Store.List()
	if err != nil {
		log.Printf("[FILES] listing failed: %v", err)
		apierr.Abort(c, http.StatusInternalServerError, apierr.CodeStorage, "failed to list files")
		return
	}
	c.JSON(http.StatusOK, assets)
}

// Raw handles GET /api/raw/:name: streams one stored asset with its
// content type. Registered for GET only; range requests work so videos
// can seek.
func (h *Handler) Raw(c *gin.Context) {
	name := c.Param("name")

	f, err := h.Store.Open(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apierr.Abort(c, http.StatusNotFound, apierr.CodeNotFound, "file not found")
			return
		}
		log.Printf("[FILES] open failed for %s: %v", name, err)
		apierr.Abort(c, http.StatusInternalServerError, apierr.CodeStorage, "failed to read file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Printf("[FILES] stat failed for %s: %v", name, err)
		apierr.Abort(c, http.StatusInternalServerError, apierr.CodeStorage, "failed to read file")
		return
	}

	c.Header("Content-Type", media.ContentType(media.Ext(name)))
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}
