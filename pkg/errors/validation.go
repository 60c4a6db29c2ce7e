package errors

import (
	"strings"
	"unicode"
)

// Bounds for the container edge length.
const (
	MinContainerSize = 16
	MaxContainerSize = 16384
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ValidateContainerSize checks that a container edge length is a power of two
// within [MinContainerSize, MaxContainerSize].
func ValidateContainerSize(size int) error {
	if size < MinContainerSize || size > MaxContainerSize {
		return New(ErrCodeInvalidSize, "container size %d out of range [%d, %d]", size, MinContainerSize, MaxContainerSize)
	}
	if !IsPowerOfTwo(size) {
		return New(ErrCodeInvalidSize, "container size %d is not a power of two", size)
	}
	return nil
}

// ValidateTextureSize checks that both texture dimensions are powers of two.
func ValidateTextureSize(w, h int) error {
	if !IsPowerOfTwo(w) || !IsPowerOfTwo(h) {
		return New(ErrCodeInvalidImage, "dimensions %dx%d are not powers of two", w, h)
	}
	return nil
}

// ValidateSourceID validates a texture identifier before it is written to the
// skip-list, which stores one identifier per line.
//
// Validation rules:
//   - Identifier cannot be empty
//   - Maximum length of 4096 characters
//   - No control characters (this includes newlines and null bytes)
//   - No leading or trailing whitespace, which would not survive a round trip
func ValidateSourceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPath, "source identifier cannot be empty")
	}

	const maxLength = 4096
	if len(id) > maxLength {
		return New(ErrCodeInvalidPath, "source identifier too long (max %d characters)", maxLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "source identifier contains control characters: %q", id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidPath, "source identifier has surrounding whitespace: %q", id)
	}

	return nil
}
