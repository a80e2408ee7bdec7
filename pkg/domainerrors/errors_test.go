package domainerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error carries its code", func(t *testing.T) {
		err := New(CodeValidation, "bad filter")
		if !HasCode(err, CodeValidation) {
			t.Fatalf("expected validation code on %v", err)
		}
		if HasCode(err, CodeInternal) {
			t.Fatalf("did not expect internal code on %v", err)
		}
	})

	t.Run("wrapped error is still detected", func(t *testing.T) {
		inner := Wrap(errors.New("dial tcp: timeout"), CodeUpstream, "hr platform unreachable")
		outer := fmt.Errorf("deactivate step: %w", inner)
		if !HasCode(outer, CodeUpstream) {
			t.Fatalf("expected upstream code through wrapping, got %v", outer)
		}
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		if HasCode(errors.New("boom"), CodeInternal) {
			t.Fatal("plain error should not match any code")
		}
	})
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeNotFound, "missing")); got != CodeNotFound {
		t.Fatalf("CodeOf = %s, want %s", got, CodeNotFound)
	}
	if got := CodeOf(errors.New("unclassified")); got != CodeInternal {
		t.Fatalf("CodeOf default = %s, want %s", got, CodeInternal)
	}
}
