package domain

import (
	"fmt"
	"testing"
)

func TestNewValidationFailure(t *testing.T) {
	if err := NewValidationFailure("x", nil); err != nil {
		t.Fatalf("expected nil for no details, got %v", err)
	}
	err := NewValidationFailure("basic info incomplete", []string{"source is required", "currency is required"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error")
	}
	if err.Error() != "basic info incomplete: source is required; currency is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if msgs := ValidationMessages(fmt.Errorf("wrapped: %w", err)); len(msgs) != 2 {
		t.Fatalf("expected 2 messages through wrapping, got %v", msgs)
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsNotFound(fmt.Errorf("load: %w", NotFoundError{Resource: "proposal"})) {
		t.Fatalf("IsNotFound should see through wrapping")
	}
	if !IsConflict(ConflictError{Resource: "proposal", Msg: "already CONFIRMED"}) {
		t.Fatalf("IsConflict failed")
	}
	if IsValidation(InternalError{}) {
		t.Fatalf("internal is not validation")
	}
	if got := (ValidationError{Field: "kind", Msg: "unknown"}).Error(); got != "kind: unknown" {
		t.Fatalf("unexpected message %q", got)
	}
	if msgs := ValidationMessages(NotFoundError{}); msgs != nil {
		t.Fatalf("non-validation errors have no messages")
	}
}
