package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "validation error",
			err:      NewValidation("hours", "%q is not a number", "abc"),
			expected: `Error: invalid hours: "abc" is not a number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "config")
	if got != "Error: failed to load config" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"not found", ErrNotFound, false},
		{"direct", NewValidation("date", "bad"), true},
		{"wrapped", fmt.Errorf("create activity: %w", NewValidation("date", "bad")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.expected {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestValidationErrorWithoutField(t *testing.T) {
	err := &ValidationError{Msg: "description is required"}
	if err.Error() != "description is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}
