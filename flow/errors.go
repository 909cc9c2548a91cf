package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed provider call.
type ErrorKind uint8

const (
	// KindGeneric is any failure without a more specific classification.
	KindGeneric ErrorKind = iota
	// KindValidation is an HTTP 400 carrying a replacement flow document.
	KindValidation
	// KindExpired means the flow is gone or unusable and must be restarted.
	KindExpired
	// KindRedirect is an intercepted redirect (303 or an opaque redirect).
	KindRedirect
	// KindMalformed is a response body that could not be decoded.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExpired:
		return "expired"
	case KindRedirect:
		return "redirect"
	case KindMalformed:
		return "malformed"
	default:
		return "generic"
	}
}

// ErrMalformedBody is wrapped by transports when a body is not valid JSON.
var ErrMalformedBody = errors.New("malformed response body")

// ResponseError is the tagged failure a provider transport returns. Only the
// fields relevant to Kind are populated.
type ResponseError struct {
	Kind       ErrorKind
	Status     int
	Flow       *Document
	UseFlowID  string
	RedirectTo string
	ErrorID    string
	Reason     string
	Err        error
}

func (e *ResponseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind == KindRedirect && e.Status == http.StatusSeeOther {
		return "303 Redirect"
	}
	msg := fmt.Sprintf("provider %s error (status %d)", e.Kind, e.Status)
	if e.ErrorID != "" {
		msg += ": " + e.ErrorID
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsResponseError finds the first ResponseError in err's chain.
func AsResponseError(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) && re != nil {
		return re, true
	}
	return nil, false
}

// IsRedirect reports whether err, or any error it wraps, is an intercepted
// 303 redirect.
func IsRedirect(err error) bool {
	for err != nil {
		var re *ResponseError
		if !errors.As(err, &re) || re == nil {
			return false
		}
		if re.Kind == KindRedirect && re.Status == http.StatusSeeOther {
			return true
		}
		err = re.Err
	}
	return false
}

// IsMalformed reports whether err describes an undecodable body.
func IsMalformed(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := AsResponseError(err); ok && re.Kind == KindMalformed {
		return true
	}
	if errors.Is(err, ErrMalformedBody) {
		return true
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	return strings.Contains(err.Error(), "JSON")
}
