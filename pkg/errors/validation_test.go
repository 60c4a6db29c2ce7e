package errors

import (
	"strings"
	"testing"
)

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{1, true},
		{2, true},
		{64, true},
		{1024, true},
		{0, false},
		{-2, false},
		{3, false},
		{96, false},
	}

	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestValidateContainerSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{16, false},
		{512, false},
		{1024, false},
		{16384, false},
		{8, true},
		{32768, true},
		{1000, true},
		{0, true},
		{-1024, true},
	}

	for _, tt := range tests {
		err := ValidateContainerSize(tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateContainerSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidSize) {
			t.Errorf("ValidateContainerSize(%d) returned wrong error code: %v", tt.size, err)
		}
	}
}

func TestValidateTextureSize(t *testing.T) {
	if err := ValidateTextureSize(64, 16); err != nil {
		t.Errorf("64x16 should be valid: %v", err)
	}
	err := ValidateTextureSize(64, 48)
	if err == nil {
		t.Fatal("64x48 should be rejected")
	}
	if !Is(err, ErrCodeInvalidImage) {
		t.Errorf("wrong error code: %v", err)
	}
}

func TestValidateSourceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative path", "textures/grass.png", false},
		{"absolute path", "/srv/assets/stone.png", false},
		{"spaces inside", "my textures/wood plank.png", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"newline", "a.png\nb.png", true},
		{"null byte", "a\x00.png", true},
		{"leading space", " a.png", true},
		{"trailing space", "a.png ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSourceID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateSourceID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidSize,
		ErrCodeInvalidImage,
		ErrCodeInvalidSidecar,
		ErrCodeInvalidState,
		ErrCodeInvalidConfig,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeStateNotFound,
		ErrCodeRead,
		ErrCodeWrite,
		ErrCodeInternal,
		ErrCodeUnsupported,
		ErrCodeUnsupportedState,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
