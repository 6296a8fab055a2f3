package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "nand_2x", false},
		{"instance", "MN0", false},
		{"with dash", "tinv-hs", false},
		{"with dot", "via.M2", false},
		{"leading underscore", "_tap", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"leading digit", "2nand", true},
		{"space", "nand 2x", true},
		{"slash", "logic/nand", true},
		{"colon", "O:", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("cell", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateNetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "VDD", false},
		{"shared marker", "O:", false},
		{"bus", "D<3>", false},

		{"empty", "", true},
		{"space", "V DD", true},
		{"newline", "VDD\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "logic/templates.yaml", false},
		{"absolute", "/tmp/templates.yaml", false},
		{"dotted name", "v1.2/templates.yaml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 2000), true},
		{"path traversal", "../../etc/passwd", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}
