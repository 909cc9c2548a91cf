package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestResponseErrorRedirectMessage(t *testing.T) {
	err := &ResponseError{Kind: KindRedirect, Status: http.StatusSeeOther}
	if err.Error() != "303 Redirect" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsRedirect(err) {
		t.Fatal("expected redirect")
	}
	if !IsRedirect(fmt.Errorf("wrapped: %w", err)) {
		t.Fatal("expected wrapped redirect")
	}
	if IsRedirect(&ResponseError{Kind: KindRedirect, Status: http.StatusUnprocessableEntity}) {
		t.Fatal("only 303 counts as the ambiguous redirect")
	}
	if IsRedirect(errors.New("303 Redirect")) {
		t.Fatal("untyped errors must not be probed by message")
	}
}

func TestIsRedirectThroughCause(t *testing.T) {
	inner := &ResponseError{Kind: KindRedirect, Status: http.StatusSeeOther}
	outer := &ResponseError{Kind: KindGeneric, Status: http.StatusInternalServerError, Err: inner}
	if !IsRedirect(outer) {
		t.Fatal("expected redirect carried as cause to be detected")
	}
}

func TestIsMalformed(t *testing.T) {
	var syntaxErr *json.SyntaxError
	err := json.Unmarshal([]byte("<html>"), &struct{}{})
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected syntax error, got %T", err)
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"syntax", err, true},
		{"tagged", &ResponseError{Kind: KindMalformed}, true},
		{"sentinel", fmt.Errorf("decode: %w", ErrMalformedBody), true},
		{"message", errors.New("Unexpected token < in JSON at position 0"), true},
		{"other", errors.New("timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMalformed(tt.err); got != tt.want {
				t.Fatalf("IsMalformed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsResponseError(t *testing.T) {
	re := &ResponseError{Kind: KindExpired, Status: http.StatusGone, UseFlowID: "x"}
	got, ok := AsResponseError(fmt.Errorf("submit: %w", re))
	if !ok || got.UseFlowID != "x" {
		t.Fatalf("expected to unwrap response error, got %+v %v", got, ok)
	}
	if _, ok := AsResponseError(errors.New("plain")); ok {
		t.Fatal("plain errors are not response errors")
	}
}
