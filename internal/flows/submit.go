package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goFlow/flow"
)

// Outcome describes how a submission left the UI.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	// OutcomeContinued means a continue_with directive drove navigation.
	OutcomeContinued
	// OutcomeNavigated means the default post-submission route was used.
	OutcomeNavigated
	// OutcomeReplaced means the provider answered with a new flow document
	// that is now rendered in place.
	OutcomeReplaced
	// OutcomeFailed means the failure was classified and surfaced locally.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinued:
		return "continued"
	case OutcomeNavigated:
		return "navigated"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

type SubmitMetrics struct {
	Success           int
	Failure           int
	Stale             int
	Continuation      int
	DefaultNavigation int
}

type SubmitEvents struct {
	Submit string
}

// SubmitDeps wires a submission to the coordinator that owns the flow.
type SubmitDeps struct {
	FlowID   string
	FlowType flow.Type

	CSRFToken  func() string
	ClearError func()
	SetError   func(string)
	Translate  Translate

	// Begin marks a new submission and returns a check that reports whether
	// it is still the newest one when its result arrives.
	Begin           func(context.Context) func(context.Context) bool
	Update          func(context.Context, flow.UpdateBody) (flow.UpdateResult, error)
	Observe         func(flow.Document)
	Continue        func([]flow.ContinueWith) bool
	DefaultTarget   func() (string, bool)
	Redirect        func(target string, external bool)
	HandleFlowError func(context.Context, error) FlowErrorResult

	ErrSuperseded  error
	Now            func() time.Time
	ObserveLatency func(time.Duration)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, error, func() map[string]string)

	Metrics SubmitMetrics
	Events  SubmitEvents
}

// SubmitResult is the locally resolved outcome of a submission.
type SubmitResult struct {
	Outcome Outcome
	Class   Class
	Result  flow.UpdateResult
	Flow    *flow.Document
	Target  string
	Err     error
}

func normalizeSubmitDeps(deps *SubmitDeps) {
	if deps.CSRFToken == nil {
		deps.CSRFToken = func() string { return "" }
	}
	if deps.ClearError == nil {
		deps.ClearError = func() {}
	}
	if deps.SetError == nil {
		deps.SetError = func(string) {}
	}
	if deps.Translate == nil {
		deps.Translate = func(key string) string { return key }
	}
	if deps.Begin == nil {
		deps.Begin = func(context.Context) func(context.Context) bool {
			return func(context.Context) bool { return true }
		}
	}
	if deps.Observe == nil {
		deps.Observe = func(flow.Document) {}
	}
	if deps.Continue == nil {
		deps.Continue = func([]flow.ContinueWith) bool { return false }
	}
	if deps.DefaultTarget == nil {
		deps.DefaultTarget = func() (string, bool) { return "/", false }
	}
	if deps.Redirect == nil {
		deps.Redirect = func(string, bool) {}
	}
	if deps.HandleFlowError == nil {
		deps.HandleFlowError = func(context.Context, error) FlowErrorResult { return FlowErrorResult{} }
	}
	if deps.ErrSuperseded == nil {
		deps.ErrSuperseded = errors.New("submission superseded")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ObserveLatency == nil {
		deps.ObserveLatency = func(time.Duration) {}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
}

func (deps SubmitDeps) send(ctx context.Context, body flow.UpdateBody) (flow.UpdateResult, func(context.Context) bool, bool, error) {
	deps.ClearError()
	if body.CSRFToken == "" {
		body = body.WithCSRF(deps.CSRFToken())
	}

	current := deps.Begin(ctx)
	start := deps.Now()
	res, err := deps.Update(ctx, body)
	deps.ObserveLatency(deps.Now().Sub(start))

	if !current(ctx) {
		deps.MetricInc(deps.Metrics.Stale)
		return flow.UpdateResult{}, current, false, nil
	}
	return res, current, true, err
}

// RunSubmit sends body and resolves the result: continue_with directives
// first, then an in-place replacement flow, then the default route. Failures
// go through the generic flow error handler; when it yields no replacement
// flow the default error is shown.
func RunSubmit(ctx context.Context, body flow.UpdateBody, deps SubmitDeps) (SubmitResult, error) {
	normalizeSubmitDeps(&deps)
	if deps.Update == nil {
		return SubmitResult{}, errors.New("submit requires an update function")
	}

	res, _, current, err := deps.send(ctx, body)
	if !current {
		return SubmitResult{}, deps.ErrSuperseded
	}

	if err != nil {
		fe := deps.HandleFlowError(ctx, err)
		if fe.Flow == nil {
			deps.SetError(deps.Translate(KeyDefaultError))
		}
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Submit, false, deps.FlowID, string(deps.FlowType), err, func() map[string]string {
			return map[string]string{
				"method": body.Method,
				"class":  fe.Class.String(),
			}
		})
		return SubmitResult{Outcome: OutcomeFailed, Class: fe.Class, Flow: fe.Flow, Err: err}, nil
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Submit, true, deps.FlowID, string(deps.FlowType), nil, func() map[string]string {
		return map[string]string{
			"method": body.Method,
		}
	})

	if res.Flow != nil {
		deps.Observe(*res.Flow)
	}
	if deps.Continue(res.ContinueWith) {
		deps.MetricInc(deps.Metrics.Continuation)
		return SubmitResult{Outcome: OutcomeContinued, Result: res, Flow: res.Flow}, nil
	}
	if res.Flow != nil {
		return SubmitResult{Outcome: OutcomeReplaced, Result: res, Flow: res.Flow}, nil
	}

	target, external := deps.DefaultTarget()
	deps.Redirect(target, external)
	deps.MetricInc(deps.Metrics.DefaultNavigation)
	return SubmitResult{Outcome: OutcomeNavigated, Result: res, Target: target}, nil
}

// RunSubmitCode sends a one-time-code submission. The challenge counts as
// passed when the provider reports passed_challenge or hands back a
// continuation; a clean answer without either is a rejected code. Failures
// go through RunCodeError.
func RunSubmitCode(ctx context.Context, body flow.UpdateBody, deps SubmitDeps, code CodeErrorDeps) (CodeResult, error) {
	normalizeSubmitDeps(&deps)
	normalizeCodeErrorDeps(&code)
	if deps.Update == nil {
		return CodeResult{}, errors.New("submit requires an update function")
	}

	res, check, current, err := deps.send(ctx, body)
	if !current {
		return CodeResult{State: CodeIdle}, deps.ErrSuperseded
	}
	if err != nil {
		code.Current = check
		cr := RunCodeError(ctx, err, code)
		if cr.Path == CodePathSuperseded {
			deps.MetricInc(deps.Metrics.Stale)
			return cr, deps.ErrSuperseded
		}
		return cr, nil
	}

	if res.Flow != nil {
		deps.Observe(*res.Flow)
	}

	passed := res.Flow != nil && res.Flow.State == flow.StatePassedChallenge
	if !passed && len(res.ContinueWith) == 0 {
		text := code.Translate(KeyInvalidCode)
		if res.Flow != nil {
			if msg, ok := flow.FirstError(res.Flow.UI.Messages); ok && msg.Text != "" {
				text = msg.Text
			}
		}
		return failCode(ctx, code, CodePathRejected, text, nil, res.Flow), nil
	}

	if !deps.Continue(res.ContinueWith) {
		if err := code.OnSuccess(ctx); err != nil {
			return failCode(ctx, code, CodePathRefetchError, code.Translate(KeyDefaultError), err, res.Flow), nil
		}
	} else {
		deps.MetricInc(deps.Metrics.Continuation)
	}

	code.MetricInc(code.Metrics.Success)
	code.EmitAudit(ctx, code.Events.CodeConfirm, true, code.FlowID, string(code.FlowType), nil, nil)
	return CodeResult{State: CodeSucceeded, Path: CodePathAccepted, Flow: res.Flow}, nil
}
