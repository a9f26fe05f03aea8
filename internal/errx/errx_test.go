package errx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestE(t *testing.T) {
	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := E("op", NotFound, nil); err != nil {
			t.Fatalf("E() with nil err = %v, want nil", err)
		}
	})

	t.Run("wraps op, kind and cause", func(t *testing.T) {
		cause := errors.New("row missing")
		err := E("shortener.service.GetBySlug", NotFound, cause)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("E() did not produce an *Error")
		}
		if e.Op != "shortener.service.GetBySlug" {
			t.Errorf("Op = %q", e.Op)
		}
		if e.Kind != NotFound {
			t.Errorf("Kind = %v, want NotFound", e.Kind)
		}
		if !errors.Is(err, cause) {
			t.Error("wrapped cause not reachable via errors.Is")
		}
	})
}

func TestErrorf(t *testing.T) {
	err := Errorf("shortener.service.Create", Invalid, "slug %q is blank", " ")
	if KindOf(err) != Invalid {
		t.Errorf("KindOf = %v, want Invalid", KindOf(err))
	}
	if !strings.Contains(err.Error(), `slug " " is blank`) {
		t.Errorf("Error() = %q, missing formatted cause", err.Error())
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op and cause",
			err:  &Error{Op: "repo.CreateLink", Err: errors.New("boom")},
			want: "repo.CreateLink: boom",
		},
		{
			name: "cause only",
			err:  &Error{Err: errors.New("boom")},
			want: "boom",
		},
		{
			name: "op only",
			err:  &Error{Op: "repo.CreateLink"},
			want: "repo.CreateLink",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Run("plain error is Unknown", func(t *testing.T) {
		if got := KindOf(errors.New("boom")); got != Unknown {
			t.Errorf("KindOf = %v, want Unknown", got)
		}
	})

	t.Run("nil error is Unknown", func(t *testing.T) {
		if got := KindOf(nil); got != Unknown {
			t.Errorf("KindOf = %v, want Unknown", got)
		}
	})

	t.Run("finds Error through wrapping", func(t *testing.T) {
		inner := E("repo.UpdateSlug", Conflict, errors.New("duplicate key"))
		outer := fmt.Errorf("while updating: %w", inner)
		if got := KindOf(outer); got != Conflict {
			t.Errorf("KindOf = %v, want Conflict", got)
		}
	})

	t.Run("outermost kind wins", func(t *testing.T) {
		inner := E("repo.CreateLink", Conflict, errors.New("duplicate key"))
		outer := E("service.Create", Exhausted, inner)
		if got := KindOf(outer); got != Exhausted {
			t.Errorf("KindOf = %v, want Exhausted", got)
		}
	})
}

func TestOpOf(t *testing.T) {
	err := E("service.Resolve", NotFound, errors.New("missing"))
	if got := OpOf(err); got != "service.Resolve" {
		t.Errorf("OpOf = %q", got)
	}
	if got := OpOf(errors.New("plain")); got != "" {
		t.Errorf("OpOf(plain) = %q, want empty", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Unknown, "Unknown"},
		{NotFound, "NotFound"},
		{Conflict, "Conflict"},
		{Invalid, "Invalid"},
		{Exhausted, "Exhausted"},
		{Unauthorized, "Unauthorized"},
		{Forbidden, "Forbidden"},
		{Unavailable, "Unavailable"},
		{Internal, "Internal"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
