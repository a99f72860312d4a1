package upload

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storedNamePattern = regexp.MustCompile(`^\d+_[a-z0-9]{6}_[A-Za-z0-9.\-_]*$`)

func TestGenerateNameShape(t *testing.T) {
	cases := []string{
		"IMG_0042.HEIC",
		"wedding photo (1).jpg",
		"vidéo de mariage.mp4",
		"../../etc/passwd",
		"",
	}
	for _, original := range cases {
		name := GenerateName(original)
		assert.Regexp(t, storedNamePattern, name, "input %q", original)
	}
}

func TestGenerateNamePreservesExtension(t *testing.T) {
	name := GenerateName("birthday cake.jpg")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
}

func TestGenerateNameEmptyInput(t *testing.T) {
	name := GenerateName("")
	assert.Regexp(t, `^\d+_[a-z0-9]{6}_$`, name)
}

func TestGenerateNameUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		name := GenerateName("same-input.jpg")
		_, dup := seen[name]
		require.False(t, dup, "duplicate stored name %q", name)
		seen[name] = struct{}{}
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"photo.jpg", "photo.jpg"},
		{"my photo.jpg", "my_photo.jpg"},
		{"a/b\\c.png", "a_b_c.png"},
		{"naïve.mov", "na_ve.mov"},
		{"UPPER-case.Jpeg", "UPPER-case.Jpeg"},
		{"..", ".."},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeName(tc.in), "input %q", tc.in)
	}
}

func TestOriginalFromStored(t *testing.T) {
	original := "summer_trip.jpg"
	stored := GenerateName(original)
	assert.Equal(t, SanitizeName(original), OriginalFromStored(stored))

	assert.Equal(t, "", OriginalFromStored("no-underscores"))
	assert.Equal(t, "", OriginalFromStored("one_underscore"))
}
