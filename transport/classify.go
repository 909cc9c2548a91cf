package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goFlow/flow"
	"github.com/tidwall/gjson"
)

// classify turns a non-2xx provider answer into a tagged error.
func classify(kind flow.Type, status int, header http.Header, body []byte) error {
	if status >= 300 && status < 400 {
		return &flow.ResponseError{
			Kind:       flow.KindRedirect,
			Status:     status,
			RedirectTo: header.Get("Location"),
		}
	}

	if len(body) > 0 && !gjson.ValidBytes(body) {
		return &flow.ResponseError{
			Kind:   flow.KindMalformed,
			Status: status,
			Err:    fmt.Errorf("%w: status %d", flow.ErrMalformedBody, status),
		}
	}

	errorID := gjson.GetBytes(body, "error.id").String()
	reason := gjson.GetBytes(body, "error.reason").String()
	redirectTo := gjson.GetBytes(body, "redirect_browser_to").String()
	if redirectTo == "" {
		redirectTo = gjson.GetBytes(body, "error.details.redirect_to").String()
	}

	base := flow.ResponseError{
		Kind:       flow.KindGeneric,
		Status:     status,
		ErrorID:    errorID,
		Reason:     reason,
		RedirectTo: redirectTo,
	}

	switch {
	case status == http.StatusBadRequest && gjson.GetBytes(body, "ui").Exists():
		doc, err := decodeDocument(kind, body)
		if err != nil {
			return err
		}
		base.Kind = flow.KindValidation
		base.Flow = &doc

	case status == http.StatusGone,
		status == http.StatusNotFound,
		status == http.StatusForbidden && (errorID == flow.ErrorIDFlowExpired || errorID == flow.ErrorIDCSRFViolation):
		base.Kind = flow.KindExpired
		base.UseFlowID = gjson.GetBytes(body, "use_flow_id").String()
		if base.UseFlowID == "" {
			base.UseFlowID = gjson.GetBytes(body, "error.details.use_flow_id").String()
		}

	case status == http.StatusUnprocessableEntity && errorID == flow.ErrorIDLocationChangeRequired:
		base.Kind = flow.KindRedirect

	case errorID == flow.ErrorIDSessionAlreadyAvailable:
		base.Kind = flow.KindRedirect
	}

	return &base
}

func decodeDocument(kind flow.Type, body []byte) (flow.Document, error) {
	var doc flow.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return flow.Document{}, &flow.ResponseError{
			Kind:   flow.KindMalformed,
			Status: http.StatusOK,
			Err:    fmt.Errorf("%w: %w", flow.ErrMalformedBody, err),
		}
	}
	if doc.Type == "" {
		doc.Type = kind
	}
	return doc, nil
}

// decodeUpdateResult reads a successful submission. Recovery, verification
// and settings answer with the flow itself; login and registration answer
// with a session envelope.
func decodeUpdateResult(kind flow.Type, body []byte) (flow.UpdateResult, error) {
	if len(body) == 0 {
		return flow.UpdateResult{}, nil
	}
	if !gjson.ValidBytes(body) {
		return flow.UpdateResult{}, &flow.ResponseError{
			Kind:   flow.KindMalformed,
			Status: http.StatusOK,
			Err:    flow.ErrMalformedBody,
		}
	}

	parsed := gjson.ParseBytes(body)
	var res flow.UpdateResult

	if parsed.Get("ui").Exists() {
		doc, err := decodeDocument(kind, body)
		if err != nil {
			return flow.UpdateResult{}, err
		}
		res.Flow = &doc
	}

	res.SessionID = parsed.Get("session.id").String()
	res.IdentityID = parsed.Get("session.identity.id").String()
	if res.IdentityID == "" {
		res.IdentityID = parsed.Get("identity.id").String()
	}
	res.SessionToken = parsed.Get("session_token").String()

	if cw := parsed.Get("continue_with"); cw.IsArray() {
		if err := json.Unmarshal([]byte(cw.Raw), &res.ContinueWith); err != nil {
			return flow.UpdateResult{}, &flow.ResponseError{
				Kind:   flow.KindMalformed,
				Status: http.StatusOK,
				Err:    fmt.Errorf("%w: %w", flow.ErrMalformedBody, err),
			}
		}
	}
	return res, nil
}
