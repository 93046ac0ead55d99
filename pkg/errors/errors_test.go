package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor_KnownAndUnknownCodes(t *testing.T) {
	if got := MetadataFor(CodeValidation).HTTPStatus; got != http.StatusBadRequest {
		t.Fatalf("validation should map to 400, got %d", got)
	}
	if got := MetadataFor(CodeForbidden).HTTPStatus; got != http.StatusForbidden {
		t.Fatalf("forbidden should map to 403, got %d", got)
	}
	if got := MetadataFor(Code("MADE_UP")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown code should fall back to 500, got %d", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := stdErrors.New("driver exploded")
	err := Wrap(CodeDependency, cause, "load order")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match the cause via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAs_FindsTypedErrorThroughWrapping(t *testing.T) {
	inner := New(CodeNotFound, "order not found")
	outer := fmt.Errorf("handler: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestAs_NilOnForeignError(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors should not convert")
	}
	if As(nil) != nil {
		t.Fatal("nil should not convert")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"reason": "too short"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["reason"] != "too short" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDump_IncludesChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("io failure"), "persist settlement")
	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
}
