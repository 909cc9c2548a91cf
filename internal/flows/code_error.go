package flows

import (
	"context"

	"github.com/MrEthical07/goFlow/flow"
)

// CodeState is the state of a one-time-code submission.
type CodeState uint8

const (
	CodeIdle CodeState = iota
	CodeSubmitting
	CodeSucceeded
	CodeFailed
)

func (s CodeState) String() string {
	switch s {
	case CodeSubmitting:
		return "submitting"
	case CodeSucceeded:
		return "succeeded"
	case CodeFailed:
		return "failed"
	default:
		return "idle"
	}
}

// CodePath records which branch resolved a code failure.
type CodePath uint8

const (
	CodePathRefetchPassed CodePath = iota + 1
	CodePathRefetchFailed
	CodePathRefetchError
	CodePathMalformed
	CodePathUpdatedFlow
	CodePathFallback
	CodePathAccepted
	CodePathRejected
	CodePathSuperseded
)

type CodeErrorMetrics struct {
	Success        int
	Failure        int
	RefetchFailure int
}

type CodeErrorEvents struct {
	CodeConfirm string
}

type CodeErrorDeps struct {
	FlowID   string
	FlowType flow.Type

	GetFlow         func(context.Context, flow.Type, string) (flow.Document, error)
	HandleFlowError func(context.Context, error) FlowErrorResult
	OnSuccess       func(context.Context) error
	SetError        func(string)
	ClearCode       func()
	Translate       Translate
	OnRefetchError  func(error)
	// Current reports whether the submission being resolved is still the
	// latest one. It is checked after the re-read; a stale re-read is
	// dropped without touching the coordinator.
	Current func(context.Context) bool

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, error, func() map[string]string)

	Metrics CodeErrorMetrics
	Events  CodeErrorEvents
}

// CodeResult is the terminal state of a code submission failure.
type CodeResult struct {
	State CodeState
	Path  CodePath
	Flow  *flow.Document
}

// Success reports whether the code was accepted.
func (r CodeResult) Success() bool {
	return r.State == CodeSucceeded
}

func normalizeCodeErrorDeps(deps *CodeErrorDeps) {
	if deps.Translate == nil {
		deps.Translate = func(key string) string { return key }
	}
	if deps.SetError == nil {
		deps.SetError = func(string) {}
	}
	if deps.ClearCode == nil {
		deps.ClearCode = func() {}
	}
	if deps.OnSuccess == nil {
		deps.OnSuccess = func(context.Context) error { return nil }
	}
	if deps.OnRefetchError == nil {
		deps.OnRefetchError = func(error) {}
	}
	if deps.Current == nil {
		deps.Current = func(context.Context) bool { return true }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
}

// RunCodeError resolves a failed code submission. A 303 is ambiguous: the
// canonical flow is re-read and its state decides between success and
// failure. Every non-success path clears the submitted code.
func RunCodeError(ctx context.Context, err error, deps CodeErrorDeps) CodeResult {
	normalizeCodeErrorDeps(&deps)

	if flow.IsRedirect(err) {
		return runCodeRefetch(ctx, err, deps)
	}

	if flow.IsMalformed(err) {
		return failCode(ctx, deps, CodePathMalformed, deps.Translate(KeyInvalidCode), err, nil)
	}

	if deps.HandleFlowError != nil {
		res, ok := delegateFlowError(ctx, deps.HandleFlowError, err)
		if !ok {
			return failCode(ctx, deps, CodePathMalformed, deps.Translate(KeyInvalidCode), err, nil)
		}
		if res.Flow != nil {
			deps.ClearCode()
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.CodeConfirm, false, deps.FlowID, string(deps.FlowType), err, func() map[string]string {
				return map[string]string{"path": "updated_flow"}
			})
			return CodeResult{State: CodeFailed, Path: CodePathUpdatedFlow, Flow: res.Flow}
		}
		if res.Class == ClassMalformed {
			return failCode(ctx, deps, CodePathMalformed, deps.Translate(KeyInvalidCode), err, nil)
		}
	}

	return failCode(ctx, deps, CodePathFallback, deps.Translate(KeyInvalidCode), err, nil)
}

// delegateFlowError reports ok=false when the handler panicked, which happens
// when a provider payload cannot be interpreted.
func delegateFlowError(ctx context.Context, handle func(context.Context, error) FlowErrorResult, err error) (res FlowErrorResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			res, ok = FlowErrorResult{Class: ClassMalformed}, false
		}
	}()
	return handle(ctx, err), true
}

func runCodeRefetch(ctx context.Context, cause error, deps CodeErrorDeps) CodeResult {
	if deps.GetFlow == nil {
		return failCode(ctx, deps, CodePathRefetchError, deps.Translate(KeyDefaultError), cause, nil)
	}

	updated, err := deps.GetFlow(ctx, deps.FlowType, deps.FlowID)
	if !deps.Current(ctx) {
		return CodeResult{State: CodeIdle, Path: CodePathSuperseded}
	}
	if err != nil {
		deps.OnRefetchError(err)
		deps.MetricInc(deps.Metrics.RefetchFailure)
		return failCode(ctx, deps, CodePathRefetchError, deps.Translate(KeyDefaultError), err, nil)
	}

	if updated.State == flow.StatePassedChallenge {
		if err := deps.OnSuccess(ctx); err != nil {
			deps.OnRefetchError(err)
			return failCode(ctx, deps, CodePathRefetchError, deps.Translate(KeyDefaultError), err, &updated)
		}
		deps.MetricInc(deps.Metrics.Success)
		deps.EmitAudit(ctx, deps.Events.CodeConfirm, true, deps.FlowID, string(deps.FlowType), nil, nil)
		return CodeResult{State: CodeSucceeded, Path: CodePathRefetchPassed, Flow: &updated}
	}

	text := deps.Translate(KeyInvalidCode)
	if msg, ok := flow.FirstError(updated.UI.Messages); ok && msg.Text != "" {
		text = msg.Text
	}
	return failCode(ctx, deps, CodePathRefetchFailed, text, cause, &updated)
}

func failCode(ctx context.Context, deps CodeErrorDeps, path CodePath, text string, cause error, doc *flow.Document) CodeResult {
	deps.SetError(text)
	deps.ClearCode()
	deps.MetricInc(deps.Metrics.Failure)
	deps.EmitAudit(ctx, deps.Events.CodeConfirm, false, deps.FlowID, string(deps.FlowType), cause, func() map[string]string {
		return map[string]string{"path": path.String()}
	})
	return CodeResult{State: CodeFailed, Path: path, Flow: doc}
}

func (p CodePath) String() string {
	switch p {
	case CodePathRefetchPassed:
		return "refetch_passed"
	case CodePathRefetchFailed:
		return "refetch_failed"
	case CodePathRefetchError:
		return "refetch_error"
	case CodePathMalformed:
		return "malformed"
	case CodePathUpdatedFlow:
		return "updated_flow"
	case CodePathFallback:
		return "fallback"
	case CodePathAccepted:
		return "accepted"
	case CodePathRejected:
		return "rejected"
	case CodePathSuperseded:
		return "superseded"
	default:
		return "none"
	}
}
