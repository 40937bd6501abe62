package profile

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrAlreadyExists, "already_exists"},
		{ErrNotFound, "not_found"},
		{ErrInvalidUsername, "invalid_username"},
		{fmt.Errorf("wrapped: %w", ErrNotFound), "not_found"},
		{errors.New("connection reset"), "internal_error"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
