package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{name: "not found", err: NotFound("Account", "a-1"), sentinel: ErrNotFound, message: "Account not found"},
		{name: "validation", err: Invalid("port", "Proxy port must be a valid number"), sentinel: ErrValidation, message: "Proxy port must be a valid number"},
		{name: "state", err: Inconsistent("Account disappeared during update"), sentinel: ErrState, message: "Account disappeared during update"},
		{name: "lock", err: &LockError{Lock: "data", Recovered: "boom"}, sentinel: ErrLock, message: "State lock poisoned (data): boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Fatalf("expected errors.Is(%v, %v)", wrapped, tt.sentinel)
			}
			if tt.err.Error() != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, tt.err.Error())
			}
		})
	}
}

func TestValidationErrorKeepsField(t *testing.T) {
	var verr *ValidationError
	if !errors.As(Invalid("host", "Proxy fields cannot be empty"), &verr) {
		t.Fatal("expected ValidationError")
	}
	if verr.Field != "host" {
		t.Fatalf("expected field host, got %q", verr.Field)
	}
}
