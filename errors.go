package goFlow

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/goFlow/flow"
	"github.com/MrEthical07/goFlow/internal/flows"
)

var (
	// ErrValidation marks a submission the provider rejected with field or form errors.
	ErrValidation = errors.New("flow validation failed")
	// ErrFlowExpired marks a flow that is gone or unusable and had to be restarted.
	ErrFlowExpired = errors.New("flow expired")
	// ErrRedirectSignal marks a provider answer that was a navigation instruction.
	ErrRedirectSignal = errors.New("flow redirect signal")
	// ErrMalformedResponse marks a provider body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrUnclassified marks any other provider failure.
	ErrUnclassified = errors.New("unclassified flow error")
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSuperseded is returned when a newer submission of the same flow started
	// before this one completed. The stale result was not applied.
	ErrSuperseded = errors.New("result superseded by a newer submission")
	// ErrLogoutFailed wraps provider failures during logout.
	ErrLogoutFailed = errors.New("logout failed")
	// ErrInvalidFlowType is returned for flow types the provider does not issue.
	ErrInvalidFlowType = errors.New("invalid flow type")
	// ErrNavigatorRequired is returned when a coordinator is requested without a navigator.
	ErrNavigatorRequired = errors.New("navigator required")
	// ErrProviderRequired is returned by Build when no identity provider client is set.
	ErrProviderRequired = errors.New("identity provider client required")
)

// ClassError maps a classified failure to its sentinel.
func ClassError(class ErrorClass) error {
	switch class {
	case ClassValidation:
		return ErrValidation
	case ClassExpired:
		return ErrFlowExpired
	case ClassRedirect:
		return ErrRedirectSignal
	case ClassMalformed:
		return ErrMalformedResponse
	default:
		return ErrUnclassified
	}
}

// Classify reports how a raw provider error would be handled, without
// performing any navigation.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnclassified
	}
	if re, ok := flow.AsResponseError(err); ok {
		switch re.Kind {
		case flow.KindValidation:
			if re.Flow != nil && re.Status == http.StatusBadRequest {
				return ClassValidation
			}
		case flow.KindExpired:
			return ClassExpired
		case flow.KindRedirect:
			return ClassRedirect
		case flow.KindMalformed:
			return ClassMalformed
		}
	}
	if flow.IsMalformed(err) {
		return ClassMalformed
	}
	return ClassUnclassified
}

// ErrorClass is the category a provider failure resolved to.
type ErrorClass = flows.Class

const (
	ClassUnclassified = flows.ClassUnclassified
	ClassValidation   = flows.ClassValidation
	ClassExpired      = flows.ClassExpired
	ClassRedirect     = flows.ClassRedirect
	ClassMalformed    = flows.ClassMalformed
)
