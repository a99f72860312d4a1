// Package storage persists uploaded media in a single flat directory.
// The directory is the record store: there are no sidecar metadata
// files, every listed field is derived from stat calls at read time.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/wedshare/media-service/internal/media"
	"github.com/wedshare/media-service/internal/models"
	"github.com/wedshare/media-service/internal/upload"
)

const tmpSuffix = ".tmp"

// ErrCapExceeded is returned by Save when the streamed bytes exceed the
// per-file cap mid-write. The partial file is already deleted.
var ErrCapExceeded = errors.New("file exceeds configured size cap")

// ErrNotFound is returned when a stored asset does not exist.
var ErrNotFound = errors.New("asset not found")

// WriteErrorKind classifies server-side storage failures.
type WriteErrorKind string

const (
	DirectoryMissing  WriteErrorKind = "directory_missing"
	DiskFull          WriteErrorKind = "disk_full"
	ResourceExhausted WriteErrorKind = "resource_exhausted"
	ClientAborted     WriteErrorKind = "client_aborted"
)

// WriteError wraps a failed write with its classification. The wrapped
// error is for logs only and never reaches a client.
type WriteError struct {
	Kind WriteErrorKind
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage write failed (%s): %v", e.Kind, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Fatal reports whether the failure is directory-level, in which case
// sibling files in the same batch will fail too and the batch should
// abort.
func (e *WriteError) Fatal() bool {
	return e.Kind == DirectoryMissing || e.Kind == DiskFull
}

// Store writes and reads assets in one upload directory. Writers never
// collide because every write owns a freshly generated unique name, so
// no locking is needed; the lister tolerates in-flight writes by
// skipping temp files and entries that vanish mid-scan.
type Store struct {
	dir         string
	maxFileSize int64
}

// New creates the upload directory if needed and returns a Store.
// maxFileSize <= 0 disables the in-flight cap.
func New(dir string, maxFileSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir, maxFileSize: maxFileSize}, nil
}

// Dir returns the upload directory path.
func (s *Store) Dir() string { return s.dir }

// Save streams the candidate to disk: temp file, in-flight cap, fsync,
// atomic rename. Only fully closed files become visible to List. On any
// failure the partial file is deleted.
//
// The returned asset carries the bytes actually written, not the
// client-declared size, which may be absent or wrong.
func (s *Store) Save(ctx context.Context, c models.UploadCandidate) (models.StoredAsset, error) {
	storedName := upload.GenerateName(c.OriginalName)
	fullPath := filepath.Join(s.dir, storedName)
	tmpPath := fullPath + tmpSuffix

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return models.StoredAsset{}, s.classify(err)
	}

	src := c.Source
	if s.maxFileSize > 0 {
		// One byte past the cap so an over-cap stream is detectable.
		src = io.LimitReader(src, s.maxFileSize+1)
	}

	written, err := io.Copy(f, &ctxReader{ctx: ctx, r: src})
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return models.StoredAsset{}, s.classify(err)
	}
	if s.maxFileSize > 0 && written > s.maxFileSize {
		f.Close()
		os.Remove(tmpPath)
		return models.StoredAsset{}, ErrCapExceeded
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return models.StoredAsset{}, s.classify(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return models.StoredAsset{}, s.classify(err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return models.StoredAsset{}, s.classify(err)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return models.StoredAsset{}, s.classify(err)
	}

	return models.StoredAsset{
		StoredName:   storedName,
		OriginalName: upload.SanitizeName(c.OriginalName),
		SizeBytes:    written,
		CreatedAt:    info.ModTime(),
		Kind:         media.KindOf(storedName),
	}, nil
}

// List enumerates the upload directory newest-first. It takes no lock:
// the result is whatever snapshot readdir returns, which is acceptable
// for a gallery. Temp files, hidden entries and entries whose stat fails
// mid-scan (e.g. swept concurrently) are skipped silently.
func (s *Store) List() ([]models.StoredAsset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, s.classify(err)
	}

	assets := make([]models.StoredAsset, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, tmpSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		assets = append(assets, models.StoredAsset{
			StoredName:   name,
			OriginalName: upload.OriginalFromStored(name),
			SizeBytes:    info.Size(),
			CreatedAt:    info.ModTime(),
			Kind:         media.KindOf(name),
		})
	}

	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].CreatedAt.After(assets[j].CreatedAt)
		}
		return assets[i].StoredName > assets[j].StoredName
	})

	return assets, nil
}

// Open returns the named asset for reading. The caller must close it.
func (s *Store) Open(storedName string) (*os.File, error) {
	path, err := s.resolve(storedName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, s.classify(err)
	}
	return f, nil
}

// Remove deletes a stored asset. Used by the retention sweeper and by
// manual admin cleanup.
func (s *Store) Remove(storedName string) error {
	path, err := s.resolve(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return s.classify(err)
	}
	return nil
}

// resolve rejects anything that could escape the upload directory.
func (s *Store) resolve(storedName string) (string, error) {
	if storedName == "" || storedName != filepath.Base(storedName) || strings.HasPrefix(storedName, ".") {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, storedName), nil
}

func (s *Store) classify(err error) error {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return &WriteError{Kind: DiskFull, Err: err}
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return &WriteError{Kind: ResourceExhausted, Err: err}
	case errors.Is(err, os.ErrNotExist):
		return &WriteError{Kind: DirectoryMissing, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &WriteError{Kind: ClientAborted, Err: err}
	default:
		// Read-side failures mean the client stream broke mid-upload.
		return &WriteError{Kind: ClientAborted, Err: err}
	}
}

// ctxReader aborts a copy when the request context is cancelled, so a
// client disconnect or per-request timeout tears the write down instead
// of leaving it blocked.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
