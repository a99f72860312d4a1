package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedshare/media-service/internal/models"
	"github.com/wedshare/media-service/internal/storage"
)

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func seedAsset(t *testing.T, store *storage.Store, name string, data []byte, age time.Duration) models.StoredAsset {
	t.Helper()
	asset, err := store.Save(context.Background(), models.UploadCandidate{
		OriginalName: name,
		SizeBytes:    int64(len(data)),
		Source:       bytes.NewReader(data),
	})
	require.NoError(t, err)
	ts := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), asset.StoredName), ts, ts))
	return asset
}

func TestHealthCheck(t *testing.T) {
	r, _ := newRouter(t, routerOptions{})
	rec := get(r, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListFilesNewestFirst(t *testing.T) {
	r, store := newRouter(t, routerOptions{})

	oldest := seedAsset(t, store, "oldest.jpg", []byte("a"), 3*time.Hour)
	middle := seedAsset(t, store, "middle.mp4", []byte("bb"), 2*time.Hour)
	newest := seedAsset(t, store, "newest.png", []byte("ccc"), time.Hour)

	rec := get(r, "/api/files", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.StoredAsset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, newest.StoredName, listed[0].StoredName)
	assert.Equal(t, middle.StoredName, listed[1].StoredName)
	assert.Equal(t, oldest.StoredName, listed[2].StoredName)
	assert.Equal(t, "video", string(listed[1].Kind))
	assert.Equal(t, int64(2), listed[1].SizeBytes)
}

func TestListFilesEmpty(t *testing.T) {
	r, _ := newRouter(t, routerOptions{})
	rec := get(r, "/api/files", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRawServesAsset(t *testing.T) {
	r, store := newRouter(t, routerOptions{})
	asset := seedAsset(t, store, "photo.jpg", []byte("jpeg bytes"), time.Hour)

	rec := get(r, "/api/raw/"+asset.StoredName, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg bytes", rec.Body.String())
}

func TestRawSupportsRangeRequests(t *testing.T) {
	r, store := newRouter(t, routerOptions{})
	asset := seedAsset(t, store, "clip.mp4", []byte("0123456789"), time.Hour)

	rec := get(r, "/api/raw/"+asset.StoredName, map[string]string{"Range": "bytes=2-5"})
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "2345", rec.Body.String())
}

func TestRawNotFound(t *testing.T) {
	r, _ := newRouter(t, routerOptions{})

	rec := get(r, "/api/raw/1700000000000_abc123_missing.jpg", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")

	// Traversal attempts look like missing files, not errors.
	rec = get(r, "/api/raw/..%2F..%2Fetc%2Fpasswd", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRawIsGetOnly(t *testing.T) {
	r, store := newRouter(t, routerOptions{})
	asset := seedAsset(t, store, "photo.jpg", []byte("x"), time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/raw/"+asset.StoredName, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequiresPassword(t *testing.T) {
	r, _ := newRouter(t, routerOptions{adminPassword: "opensesame"})

	rec := get(r, "/api/admin/files", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(r, "/api/admin/files", map[string]string{"X-Admin-Password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(r, "/api/admin/files", map[string]string{"X-Admin-Password": "opensesame"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminFilesAndStats(t *testing.T) {
	r, store := newRouter(t, routerOptions{adminPassword: "pw"})
	seedAsset(t, store, "a.jpg", bytes.Repeat([]byte{1}, 1024), 2*time.Hour)
	seedAsset(t, store, "b.mp4", bytes.Repeat([]byte{2}, 2048), time.Hour)

	auth := map[string]string{"X-Admin-Password": "pw"}

	rec := get(r, "/api/admin/files", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var filesResp struct {
		Files []models.StoredAsset `json:"files"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filesResp))
	assert.Equal(t, 2, filesResp.Total)
	require.Len(t, filesResp.Files, 2)
	assert.Equal(t, "a.jpg", filesResp.Files[1].OriginalName)

	rec = get(r, "/api/admin/stats", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalFiles   int     `json:"total_files"`
		TotalSizeMB  float64 `json:"total_size_mb"`
		LatestUpload string  `json:"latest_upload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalFiles)
	assert.InDelta(t, 3072.0/(1024*1024), stats.TotalSizeMB, 1e-9)
	assert.NotEmpty(t, stats.LatestUpload)
}

func TestAdminRoutesAbsentWithoutPassword(t *testing.T) {
	r, _ := newRouter(t, routerOptions{})
	rec := get(r, "/api/admin/files", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
