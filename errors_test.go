package goFlow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MrEthical07/goFlow/flow"
)

func TestClassify(t *testing.T) {
	doc := Document{ID: testFlowID}
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ClassUnclassified},
		{"validation", &flow.ResponseError{Kind: flow.KindValidation, Status: http.StatusBadRequest, Flow: &doc}, ClassValidation},
		{"validation without flow", &flow.ResponseError{Kind: flow.KindValidation, Status: http.StatusBadRequest}, ClassUnclassified},
		{"validation wrong status", &flow.ResponseError{Kind: flow.KindValidation, Status: http.StatusConflict, Flow: &doc}, ClassUnclassified},
		{"expired", &flow.ResponseError{Kind: flow.KindExpired, Status: http.StatusGone}, ClassExpired},
		{"wrapped redirect", fmt.Errorf("submit: %w", &flow.ResponseError{Kind: flow.KindRedirect, Status: http.StatusSeeOther}), ClassRedirect},
		{"malformed tagged", &flow.ResponseError{Kind: flow.KindMalformed, Status: http.StatusOK}, ClassMalformed},
		{"malformed untagged", fmt.Errorf("x: %w", flow.ErrMalformedBody), ClassMalformed},
		{"other", errors.New("boom"), ClassUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassError(t *testing.T) {
	pairs := map[ErrorClass]error{
		ClassValidation:   ErrValidation,
		ClassExpired:      ErrFlowExpired,
		ClassRedirect:     ErrRedirectSignal,
		ClassMalformed:    ErrMalformedResponse,
		ClassUnclassified: ErrUnclassified,
	}
	for class, want := range pairs {
		if got := ClassError(class); got != want {
			t.Fatalf("ClassError(%v) = %v, want %v", class, got, want)
		}
	}
}

func TestAuditErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrSuperseded, auditErrSuperseded},
		{fmt.Errorf("%w: x", ErrLogoutFailed), auditErrLogoutFailed},
		{context.Canceled, auditErrCanceled},
		{&flow.ResponseError{Kind: flow.KindExpired, Status: http.StatusGone}, auditErrExpired},
		{&flow.ResponseError{Kind: flow.KindRedirect, Status: http.StatusSeeOther}, auditErrRedirect},
		{flow.ErrMalformedBody, auditErrMalformed},
		{errors.New("boom"), auditErrInternal},
	}
	for _, tt := range tests {
		if got := auditErrorCode(tt.err); got != tt.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
