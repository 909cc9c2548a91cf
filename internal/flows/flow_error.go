package flows

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goFlow/flow"
)

// Class is the outcome category of a failed flow submission.
type Class uint8

const (
	ClassUnclassified Class = iota
	ClassValidation
	ClassExpired
	ClassRedirect
	ClassMalformed
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassExpired:
		return "expired"
	case ClassRedirect:
		return "redirect"
	case ClassMalformed:
		return "malformed"
	default:
		return "unclassified"
	}
}

type FlowErrorMetrics struct {
	Validation   int
	Expired      int
	Redirect     int
	Malformed    int
	Unclassified int
}

type FlowErrorEvents struct {
	Validation   string
	Restart      string
	Redirect     string
	Unclassified string
}

type FlowErrorDeps struct {
	FlowID          string
	FlowType        flow.Type
	DefaultRedirect string

	Translate    Translate
	OnValidation func(flow.Document)
	SetError     func(string)
	Redirect     func(target string, external bool)
	Restart      func(newFlowID string)
	IsExternal   func(string) bool

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, error, func() map[string]string)

	Metrics FlowErrorMetrics
	Events  FlowErrorEvents
}

// FlowErrorResult is what the generic handler resolved. Flow is non-nil only
// for validation failures.
type FlowErrorResult struct {
	Class Class
	Flow  *flow.Document
}

func normalizeFlowErrorDeps(deps *FlowErrorDeps) {
	if deps.Translate == nil {
		deps.Translate = func(key string) string { return key }
	}
	if deps.OnValidation == nil {
		deps.OnValidation = func(flow.Document) {}
	}
	if deps.SetError == nil {
		deps.SetError = func(string) {}
	}
	if deps.Redirect == nil {
		deps.Redirect = func(string, bool) {}
	}
	if deps.Restart == nil {
		deps.Restart = func(string) {}
	}
	if deps.IsExternal == nil {
		deps.IsExternal = func(string) bool { return false }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
	if deps.DefaultRedirect == "" {
		deps.DefaultRedirect = "/"
	}
}

// RunFlowError resolves a submission failure in priority order: validation,
// expiry, redirect, then the generic fallback.
func RunFlowError(ctx context.Context, err error, deps FlowErrorDeps) FlowErrorResult {
	normalizeFlowErrorDeps(&deps)

	re, typed := flow.AsResponseError(err)

	if typed && re.Kind == flow.KindValidation && re.Status == http.StatusBadRequest && re.Flow != nil {
		doc := *re.Flow
		if doc.Type == "" {
			doc.Type = deps.FlowType
		}
		deps.MetricInc(deps.Metrics.Validation)
		deps.EmitAudit(ctx, deps.Events.Validation, false, doc.ID, string(doc.Type), err, nil)
		deps.OnValidation(doc)
		return FlowErrorResult{Class: ClassValidation, Flow: &doc}
	}

	if typed && re.Kind == flow.KindExpired {
		deps.MetricInc(deps.Metrics.Expired)
		switch {
		case re.UseFlowID != "":
			deps.Restart(re.UseFlowID)
		case re.RedirectTo != "":
			deps.Redirect(re.RedirectTo, deps.IsExternal(re.RedirectTo))
		default:
			deps.Restart("")
		}
		deps.EmitAudit(ctx, deps.Events.Restart, false, deps.FlowID, string(deps.FlowType), err, func() map[string]string {
			return map[string]string{
				"use_flow_id": re.UseFlowID,
				"error_id":    re.ErrorID,
			}
		})
		return FlowErrorResult{Class: ClassExpired}
	}

	if typed && re.Kind == flow.KindRedirect {
		deps.MetricInc(deps.Metrics.Redirect)
		target := re.RedirectTo
		external := deps.IsExternal(target)
		if re.Status == http.StatusUnprocessableEntity {
			external = true
		}
		if target == "" || re.ErrorID == flow.ErrorIDSessionAlreadyAvailable {
			target = deps.DefaultRedirect
			external = false
		}
		deps.Redirect(target, external)
		deps.EmitAudit(ctx, deps.Events.Redirect, true, deps.FlowID, string(deps.FlowType), nil, func() map[string]string {
			return map[string]string{
				"redirect_to": target,
			}
		})
		return FlowErrorResult{Class: ClassRedirect}
	}

	class := ClassUnclassified
	if flow.IsMalformed(err) {
		class = ClassMalformed
		deps.MetricInc(deps.Metrics.Malformed)
	} else {
		deps.MetricInc(deps.Metrics.Unclassified)
	}
	deps.SetError(deps.Translate(KeyDefaultError))
	deps.EmitAudit(ctx, deps.Events.Unclassified, false, deps.FlowID, string(deps.FlowType), err, nil)
	return FlowErrorResult{Class: class}
}
