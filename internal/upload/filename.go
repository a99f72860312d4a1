package upload

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"
)

const (
	base36    = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLen = 6
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// seq seeds the suffix counter with random bits at startup. Mixing a
// per-process counter into the random suffix keeps successive names
// unique even within the same millisecond.
var seq = func() *atomic.Uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("filename: seeding random suffix: %v", err))
	}
	var s atomic.Uint64
	s.Store(binary.LittleEndian.Uint64(b[:]))
	return &s
}()

// GenerateName derives the on-disk name for an uploaded file:
// <unixMillis>_<6-char-base36>_<sanitizedOriginalName>. It never fails;
// an empty original name yields just the prefix with a trailing
// underscore. The extension survives sanitization so content-type
// inference keeps working downstream.
func GenerateName(originalName string) string {
	return fmt.Sprintf("%d_%s_%s",
		time.Now().UnixMilli(),
		suffix(),
		SanitizeName(originalName),
	)
}

// SanitizeName replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

func suffix() string {
	n := seq.Add(1)
	var out [suffixLen]byte
	for i := suffixLen - 1; i >= 0; i-- {
		out[i] = base36[n%36]
		n /= 36
	}
	return string(out[:])
}

// OriginalFromStored recovers the sanitized original name from a stored
// name, or "" if the name does not follow the generated layout.
func OriginalFromStored(storedName string) string {
	first := -1
	for i := 0; i < len(storedName); i++ {
		if storedName[i] == '_' {
			if first < 0 {
				first = i
				continue
			}
			return storedName[i+1:]
		}
	}
	return ""
}
