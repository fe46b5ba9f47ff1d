package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(KindUnauthorized, "not the owner")
	wrapped := fmt.Errorf("update video: %w", base)

	if got := KindOf(wrapped); got != KindUnauthorized {
		t.Fatalf("expected %s got %s", KindUnauthorized, got)
	}
	if !Is(wrapped, KindUnauthorized) {
		t.Fatal("expected Is to match wrapped kind")
	}
	if Message(wrapped) != "not the owner" {
		t.Fatalf("unexpected message %q", Message(wrapped))
	}
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	if got := KindOf(err); got != KindStoreFailure {
		t.Fatalf("expected plain errors to be store failures, got %s", got)
	}
	if Message(err) != "internal error" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindStoreFailure, "create like", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "create like: connection reset" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(New(KindTargetNotFound, "missing video")) {
		t.Fatal("expected TargetNotFound to count as not found")
	}
	if !IsNotFound(New(KindNotFound, "missing tweet")) {
		t.Fatal("expected NotFound to count as not found")
	}
	if IsNotFound(New(KindValidationFailed, "empty")) {
		t.Fatal("validation failures are not not-found")
	}
}
