package errors

import (
	"testing"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid jar", "jei-1.16.4-7.6.0.jar", false},
		{"valid spaces", "Mouse Tweaks 2.14.jar", false},
		{"valid hidden", ".jar", false},

		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "../evil.jar", true},
		{"backslash", "..\\evil.jar", true},
		{"null byte", "foo\x00.jar", true},
		{"newline", "foo\n.jar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateFileName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidatePackName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "My Pack", false},
		{"valid dashes", "my-pack_2", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"traversal", "../pack", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
