// Package media holds the single extension table shared by the upload
// validator and the directory lister. Keeping classification in one place
// prevents the two from drifting apart.
package media

import (
	"path/filepath"
	"strings"
)

// Kind is the coarse media classification of a file.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

// kinds maps lower-cased extensions (with leading dot) to their media kind.
// HEIC/HEIF are included because iPhones upload them with an empty or
// generic content type.
var kinds = map[string]Kind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,
	".webp": KindImage,
	".heic": KindImage,
	".heif": KindImage,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".avi":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
	".m4v":  KindVideo,
	".3gp":  KindVideo,
}

// banned lists executable/script-like extensions that are never accepted,
// regardless of declared content type.
var banned = map[string]struct{}{
	".exe": {},
	".bat": {},
	".cmd": {},
	".scr": {},
	".com": {},
	".pif": {},
	".jar": {},
	".php": {},
	".asp": {},
	".jsp": {},
	".ps1": {},
	".vbs": {},
	".js":  {},
	".sh":  {},
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
}

// Ext returns the lower-cased extension of name, including the leading
// dot. The last dot-segment wins, so "photo.jpg.exe" yields ".exe".
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// KindOf classifies a filename by its extension.
func KindOf(name string) Kind {
	if k, ok := kinds[Ext(name)]; ok {
		return k
	}
	return KindUnknown
}

// DefaultAllowedExtensions returns the extensions accepted as media.
func DefaultAllowedExtensions() []string {
	exts := make([]string, 0, len(kinds))
	for ext := range kinds {
		exts = append(exts, ext)
	}
	return exts
}

// DefaultBannedExtensions returns the executable/script extension set.
func DefaultBannedExtensions() []string {
	exts := make([]string, 0, len(banned))
	for ext := range banned {
		exts = append(exts, ext)
	}
	return exts
}

// ContentType returns the content type to serve a stored file with.
// Unknown extensions fall back to application/octet-stream.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}
