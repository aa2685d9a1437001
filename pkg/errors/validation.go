package errors

import (
	"strings"
	"unicode"
)

// maxFileNameLength bounds artifact names reported by a catalog.
const maxFileNameLength = 255

// ValidateFileName validates an artifact file name reported by a catalog
// before it is joined onto the artifact directory.
//
// The name must be a plain base name:
//   - not empty, "." or ".."
//   - at most 255 bytes
//   - no path separators (forward or backslash)
//   - no control characters or null bytes
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}
	if len(name) > maxFileNameLength {
		return New(ErrCodeInvalidPath, "file name too long (max %d characters)", maxFileNameLength)
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name %q is not a file", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidPath, "file name %q cannot contain path separators", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePackName validates a pack name used for archive file names.
func ValidatePackName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "pack name cannot be empty")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return New(ErrCodeInvalidInput, "pack name %q contains invalid characters", name)
	}
	return nil
}
