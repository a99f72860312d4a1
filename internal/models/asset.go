package models

import (
	"io"
	"time"

	"github.com/wedshare/media-service/internal/media"
)

// UploadCandidate is one in-flight upload part, built once at the HTTP
// boundary and passed through validation and storage unchanged.
type UploadCandidate struct {
	OriginalName     string
	DeclaredMimeType string // may be empty; mobile clients often omit it
	SizeBytes        int64  // -1 when the client did not declare a size
	Source           io.Reader
}

// StoredAsset describes one file in the upload directory. There is no
// separate index; every field is derived from the filesystem entry.
type StoredAsset struct {
	StoredName   string     `json:"name"`
	OriginalName string     `json:"original_name,omitempty"`
	SizeBytes    int64      `json:"size"`
	CreatedAt    time.Time  `json:"created"`
	Kind         media.Kind `json:"type"`
}
