package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Wrap(CodeDependency, cause, "refund gateway call failed")

	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if got := err.Error(); got != "DEPENDENCY_ERROR: refund gateway call failed" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeStateConflict, "order already refunded")
	wrapped := fmt.Errorf("coordinator: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !HasCode(wrapped, CodeStateConflict) {
		t.Fatalf("HasCode should match through wrapping")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
}

func TestIntegrityMetadata(t *testing.T) {
	meta := MetadataFor(CodeIntegrity)
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("integrity faults are server-side, got %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatalf("integrity faults must not be marked retryable")
	}
}
