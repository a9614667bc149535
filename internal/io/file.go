package ioutils

import (
	"os"
	"regexp"
	"strings"
)

// maxSegmentLen caps sanitized path segments so artist/album/title
// directories stay well inside filesystem limits.
const maxSegmentLen = 180

var (
	invalidChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName makes a metadata value safe to use as a single path
// segment.
//
// The following transformations are applied, in order:
//   - Invalid characters (\ / : * ? " < > | and control chars) → underscore
//   - Whitespace runs collapsed to a single space
//   - Leading/trailing whitespace trimmed
//   - Result capped at 180 characters
//   - Empty result replaced with "Untitled"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if runes := []rune(name); len(runes) > maxSegmentLen {
		name = string(runes[:maxSegmentLen])
	}

	if name == "" {
		return "Untitled"
	}
	return name
}

// EnsureDir creates a directory and all parent directories if they
// don't exist. Directories are created with mode 0755.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes data to a file with mode 0644, truncating any
// existing content.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// FileExists reports whether a regular file (not a directory) exists
// at the given path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
