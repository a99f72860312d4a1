package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExt(t *testing.T) {
	assert.Equal(t, ".jpg", Ext("photo.jpg"))
	assert.Equal(t, ".heic", Ext("IMG_0042.HEIC"))
	// The last dot-segment wins.
	assert.Equal(t, ".exe", Ext("photo.jpg.exe"))
	assert.Equal(t, "", Ext("noextension"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindImage, KindOf("a.jpg"))
	assert.Equal(t, KindImage, KindOf("b.HEIC"))
	assert.Equal(t, KindVideo, KindOf("c.mp4"))
	assert.Equal(t, KindVideo, KindOf("d.MOV"))
	assert.Equal(t, KindUnknown, KindOf("e.txt"))
	assert.Equal(t, KindUnknown, KindOf("f"))
}

func TestDefaultSetsCoverKnownExtensions(t *testing.T) {
	allowed := DefaultAllowedExtensions()
	assert.Contains(t, allowed, ".heic")
	assert.Contains(t, allowed, ".heif")
	assert.Contains(t, allowed, ".mp4")

	banned := DefaultBannedExtensions()
	for _, ext := range []string{".exe", ".bat", ".cmd", ".scr", ".com", ".pif", ".jar", ".php", ".asp", ".jsp", ".ps1", ".vbs", ".js", ".sh"} {
		assert.Contains(t, banned, ext)
	}

	// The two sets must never overlap; they feed the same validator.
	for _, b := range banned {
		assert.NotContains(t, allowed, b)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType(".jpg"))
	assert.Equal(t, "image/heic", ContentType(".heic"))
	assert.Equal(t, "video/quicktime", ContentType(".MOV"))
	assert.Equal(t, "application/octet-stream", ContentType(".xyz"))
	assert.Equal(t, "application/octet-stream", ContentType(""))
}
