package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wedshare/media-service/internal/api/apierr"
	"github.com/wedshare/media-service/internal/models"
	"github.com/wedshare/media-service/internal/services"
	"github.com/wedshare/media-service/internal/storage"
	"github.com/wedshare/media-service/internal/upload"
)

// Handler carries the upload pipeline's collaborators. All optional
// services tolerate being nil.
type Handler struct {
	Store     *storage.Store
	Validator *upload.Validator
	Events    *services.EventPublisher
	Archiver  *services.Archiver
	Scanner   *services.Scanner

	MaxFilesPerRequest int
}

// AcceptedFile is one successfully stored entry in the upload manifest.
type AcceptedFile struct {
	OriginalName string `json:"original_name"`
	StoredName   string `json:"stored_name"`
	SizeBytes    int64  `json:"size"`
}

// RejectedFile is one refused entry, with a stable reason code.
type RejectedFile struct {
	OriginalName string `json:"original_name"`
	Reason       string `json:"reason"`
}

// Upload handles POST /api/upload. Files within a batch are processed
// sequentially and independently: one bad file never rolls back its
// siblings, so a guest is not punished for one renamed executable among
// twenty good photos. The manifest preserves submission order.
func (h *Handler) Upload(c *gin.Context) {
	files, ok := h.formFiles(c)
	if !ok {
		return
	}

	accepted := make([]AcceptedFile, 0, len(files))
	rejected := make([]RejectedFile, 0)

	for _, fh := range files {
		candidate := models.UploadCandidate{
			OriginalName:     fh.Filename,
			DeclaredMimeType: fh.Header.Get("Content-Type"),
			SizeBytes:        fh.Size,
		}

		verdict := h.Validator.Validate(candidate)
		if !verdict.Accepted {
			rejected = append(rejected, RejectedFile{
				OriginalName: fh.Filename,
				Reason:       string(verdict.Reason),
			})
			continue
		}

		src, err := fh.Open()
		if err != nil {
			log.Printf("[UPLOAD] failed to open part %s: %v", fh.Filename, err)
			rejected = append(rejected, RejectedFile{
				OriginalName: fh.Filename,
				Reason:       apierr.CodeStorage,
			})
			continue
		}
		candidate.Source = src

		asset, err := h.Store.Save(c.Request.Context(), candidate)
		src.Close()
		if err != nil {
			if h.storeFailed(c, fh, err, &rejected) {
				return
			}
			continue
		}

		accepted = append(accepted, AcceptedFile{
			OriginalName: fh.Filename,
			StoredName:   asset.StoredName,
			SizeBytes:    asset.SizeBytes,
		})

		h.Events.AssetStored(asset)
		h.Archiver.Enqueue(asset.StoredName)
		h.Scanner.Enqueue(asset.StoredName)
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"rejected": rejected,
	})
}

// formFiles extracts the uploaded parts, preferring the "files" field
// with a single-file "file" fallback.
func (h *Handler) formFiles(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			apierr.Abort(c, http.StatusRequestEntityTooLarge, apierr.CodeTooLarge,
				"upload exceeds the request size limit")
			return nil, false
		}
		apierr.Abort(c, http.StatusBadRequest, apierr.CodeBadRequest,
			"failed to parse multipart form")
		return nil, false
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		apierr.Abort(c, http.StatusBadRequest, apierr.CodeBadRequest, "no files provided")
		return nil, false
	}
	if h.MaxFilesPerRequest > 0 && len(files) > h.MaxFilesPerRequest {
		apierr.Abort(c, http.StatusBadRequest, apierr.CodeBadRequest, "too many files in one request")
		return nil, false
	}
	return files, true
}

// storeFailed folds one failed write into the manifest. Returns true
// when the whole batch must abort: directory-level failures hit every
// sibling too, and an aborted client is not listening anymore.
func (h *Handler) storeFailed(c *gin.Context, fh *multipart.FileHeader, err error, rejected *[]RejectedFile) bool {
	if errors.Is(err, storage.ErrCapExceeded) {
		// Declared size lied; the partial file is already gone.
		*rejected = append(*rejected, RejectedFile{
			OriginalName: fh.Filename,
			Reason:       string(upload.ReasonTooLarge),
		})
		return false
	}

	var werr *storage.WriteError
	if errors.As(err, &werr) {
		log.Printf("[UPLOAD] storage error (%s) for %s: %v", werr.Kind, fh.Filename, err)
		if werr.Kind == storage.ClientAborted {
			c.Abort()
			return true
		}
		if werr.Fatal() {
			apierr.Abort(c, http.StatusInternalServerError, apierr.CodeStorage,
				"storage unavailable, please try again later")
			return true
		}
		*rejected = append(*rejected, RejectedFile{
			OriginalName: fh.Filename,
			Reason:       apierr.CodeStorage,
		})
		return false
	}

	log.Printf("[UPLOAD] unexpected store failure for %s: %v", fh.Filename, err)
	*rejected = append(*rejected, RejectedFile{
		OriginalName: fh.Filename,
		Reason:       apierr.CodeStorage,
	})
	return false
}
