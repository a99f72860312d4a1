// Package upload implements the intake pipeline pieces that decide
// whether a guest's file is stored and under what name.
package upload

import (
	"strings"

	"github.com/wedshare/media-service/internal/media"
	"github.com/wedshare/media-service/internal/models"
)

// Reason is the machine-readable rejection code carried in the upload
// manifest.
type Reason string

const (
	ReasonDangerousExtension Reason = "dangerous_extension"
	ReasonTooLarge           Reason = "too_large"
	ReasonUnsupportedType    Reason = "unsupported_type"
)

// Verdict is the outcome of validating one candidate. Computed, never
// stored.
type Verdict struct {
	Accepted bool
	Reason   Reason
}

func accept() Verdict         { return Verdict{Accepted: true} }
func reject(r Reason) Verdict { return Verdict{Reason: r} }

// Validator applies the acceptance policy for incoming files.
//
// The policy is intentionally weak: extension and declared content type
// only, no content sniffing. A renamed executable with a .jpg extension
// passes. That trade-off is accepted for a guest-facing wedding site;
// the optional out-of-band scanner covers the rest.
type Validator struct {
	banned  map[string]struct{}
	allowed map[string]struct{}
	maxSize int64
}

// NewValidator builds a validator. Empty banned/allowed lists fall back
// to the shared media table; maxSize <= 0 disables the size check.
func NewValidator(bannedExts, allowedExts []string, maxSize int64) *Validator {
	if len(bannedExts) == 0 {
		bannedExts = media.DefaultBannedExtensions()
	}
	if len(allowedExts) == 0 {
		allowedExts = media.DefaultAllowedExtensions()
	}
	return &Validator{
		banned:  toSet(bannedExts),
		allowed: toSet(allowedExts),
		maxSize: maxSize,
	}
}

// Validate applies the policy in order, short-circuiting on the first
// match:
//
//  1. banned extension -> DangerousExtension, regardless of mime type
//  2. declared size over the cap -> TooLarge (zero-byte files pass)
//  3. image/* or video/* declared mime -> accept
//  4. allowed media extension -> accept; this covers empty and generic
//     (application/octet-stream) content types from mobile devices,
//     notably HEIC/HEIF, and doubles as the last-resort fallback when
//     the declared mime is wrong
//  5. otherwise -> UnsupportedType
func (v *Validator) Validate(c models.UploadCandidate) Verdict {
	ext := media.Ext(c.OriginalName)

	if _, ok := v.banned[ext]; ok {
		return reject(ReasonDangerousExtension)
	}

	if v.maxSize > 0 && c.SizeBytes > v.maxSize {
		return reject(ReasonTooLarge)
	}

	mime := declaredMime(c.DeclaredMimeType)
	if strings.HasPrefix(mime, "image/") || strings.HasPrefix(mime, "video/") {
		return accept()
	}

	if _, ok := v.allowed[ext]; ok {
		return accept()
	}

	return reject(ReasonUnsupportedType)
}

// MaxSize reports the configured per-file cap in bytes, 0 when disabled.
func (v *Validator) MaxSize() int64 {
	if v.maxSize < 0 {
		return 0
	}
	return v.maxSize
}

// declaredMime normalizes a Content-Type header value: lower-cased,
// parameters stripped.
func declaredMime(mt string) string {
	mt = strings.TrimSpace(strings.ToLower(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func toSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
