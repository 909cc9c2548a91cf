package goFlow

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/MrEthical07/goFlow/flow"
	"github.com/MrEthical07/goFlow/internal/flows"
	"github.com/MrEthical07/goFlow/pkg/log"
)

// CoordinatorOptions configures one [Coordinator].
type CoordinatorOptions struct {
	// Navigator receives every redirect and restart. Required.
	Navigator Navigator
	// FlowType overrides the type recorded in the initial document.
	FlowType FlowType
	// Locales are locale preferences (tags or Accept-Language values) used
	// to pick a catalog when Translator is nil.
	Locales []string
	// Translator overrides the engine translator for this coordinator.
	Translator Translator
	// ReturnTo is the default post-submission target. It falls back to the
	// document's return_to and then to Routes.DefaultRedirect. Targets
	// outside Routes.AppURL are ignored.
	ReturnTo string

	// OnValidation runs after every replacement of the flow document with
	// the freshly derived field errors. It never runs for the initial
	// document.
	OnValidation func(Document, FieldErrors)
	// OnCodeSuccess runs once when a recovery or verification code is
	// accepted.
	OnCodeSuccess func(context.Context) error
	// ClearCode empties the code input after a rejected code.
	ClearCode func()
}

// Coordinator owns the state of one rendered flow: the current document,
// the derived global and field errors, the CSRF token and the code
// submission state. It is safe for concurrent use; provider calls and
// callbacks run outside its lock.
//
//	Docs: docs/coordinator.md
type Coordinator struct {
	engine   *Engine
	nav      Navigator
	kind     FlowType
	t        Translator
	returnTo string

	onValidation  func(Document, FieldErrors)
	onCodeSuccess func(context.Context) error
	clearCode     func()

	mu          sync.Mutex
	doc         Document
	revision    uint64
	generation  uint64
	globalError string
	hasError    bool
	fieldErrors FieldErrors
	csrf        string
	codeState   CodeState
	codeSeq     uint64
}

// Coordinator creates the state owner for initial. Errors and field errors
// are derived from initial immediately; OnValidation is not called for it.
func (e *Engine) Coordinator(initial Document, opts CoordinatorOptions) (*Coordinator, error) {
	if e == nil || e.provider == nil {
		return nil, ErrEngineNotReady
	}
	if opts.Navigator == nil {
		return nil, ErrNavigatorRequired
	}

	kind := opts.FlowType
	if kind == "" {
		kind = initial.Type
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFlowType, kind)
	}
	if initial.Type == "" {
		initial.Type = kind
	}

	t := opts.Translator
	if t == nil {
		t = e.Translator(opts.Locales...)
	}

	c := &Coordinator{
		engine:        e,
		nav:           opts.Navigator,
		kind:          kind,
		t:             t,
		returnTo:      opts.ReturnTo,
		onValidation:  opts.OnValidation,
		onCodeSuccess: opts.OnCodeSuccess,
		clearCode:     opts.ClearCode,
		codeState:     CodeIdle,
	}
	c.store(initial)
	e.metricInc(MetricFlowObserved)
	return c, nil
}

// store replaces the document and re-derives everything from it. Callers
// hold no lock.
func (c *Coordinator) store(doc Document) FieldErrors {
	global, hasGlobal := c.engine.classifier.GlobalError(doc, c.translate)
	fieldErrors := FieldErrors(c.engine.classifier.FieldErrors(doc, c.translate))
	csrf := flows.CSRFToken(doc.UI.Nodes)

	c.mu.Lock()
	c.doc = doc
	c.revision++
	c.generation++
	c.globalError, c.hasError = global, hasGlobal
	c.fieldErrors = fieldErrors
	c.csrf = csrf
	c.mu.Unlock()

	return fieldErrors.Clone()
}

func (c *Coordinator) replace(doc Document) {
	if doc.Type == "" {
		doc.Type = c.kind
	}
	fieldErrors := c.store(doc)
	c.engine.metricInc(MetricFlowObserved)
	if c.onValidation != nil {
		c.onValidation(doc, fieldErrors)
	}
}

// Observe replaces the current document with doc unless doc equals it. It
// reports whether a replacement happened. A replacement re-derives the
// errors and the CSRF token, invalidates in-flight submissions and calls
// OnValidation.
func (c *Coordinator) Observe(doc Document) bool {
	if doc.Type == "" {
		doc.Type = c.kind
	}
	c.mu.Lock()
	same := reflect.DeepEqual(c.doc, doc)
	c.mu.Unlock()
	if same {
		return false
	}
	c.replace(doc)
	return true
}

// Flow returns the current document.
func (c *Coordinator) Flow() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// Type returns the flow type.
func (c *Coordinator) Type() FlowType {
	return c.kind
}

// Revision increments on every replacement, including re-issues of the same
// flow id.
func (c *Coordinator) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// GlobalError returns the form-level error, if any.
func (c *Coordinator) GlobalError() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.globalError, c.hasError
}

// FieldErrors returns a copy of the per-field errors.
func (c *Coordinator) FieldErrors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErrors.Clone()
}

// CSRFToken returns the token of the current document, or "".
func (c *Coordinator) CSRFToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrf
}

// CodeState returns the state of the latest code submission.
func (c *Coordinator) CodeState() CodeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codeState
}

// SetError sets the form-level error.
func (c *Coordinator) SetError(msg string) {
	c.mu.Lock()
	c.globalError, c.hasError = msg, true
	c.mu.Unlock()
}

// ClearError removes the form-level error.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	c.globalError, c.hasError = "", false
	c.mu.Unlock()
}

// Translate returns the display text for key in the coordinator's locale.
func (c *Coordinator) Translate(key string) string {
	return c.translate(key)
}

func (c *Coordinator) translate(key string) string {
	if c.t == nil {
		return key
	}
	return c.t.Translate(key)
}

// Redirect navigates to target: a full page load when external, an in-app
// push followed by a refresh otherwise.
func (c *Coordinator) Redirect(target string, external bool) {
	flows.RunRedirect(target, external, dispatchDeps(c.nav, c.engine.config.Routes.FlowQueryParam))
}

// RestartFlow reloads the current route with the flow parameter set to
// newFlowID, or removed when newFlowID is empty. It
// returns the path it navigated to.
func (c *Coordinator) RestartFlow(newFlowID string) string {
	c.engine.metricInc(MetricFlowRestarted)
	return flows.RunRestart(newFlowID, dispatchDeps(c.nav, c.engine.config.Routes.FlowQueryParam))
}

// ResolveContinuation dispatches the first navigable continue_with directive
// and reports whether one was found.
func (c *Coordinator) ResolveContinuation(actions []ContinueWith) bool {
	return flows.RunContinueWith(actions, c.continuationDeps())
}

// HandleFlowError resolves a failed provider call: validation failures
// replace the document and are returned, expired flows restart, redirects
// navigate, and anything else sets the default error.
func (c *Coordinator) HandleFlowError(ctx context.Context, err error) *Document {
	return c.runFlowError(ctx, err).Flow
}

// HandleCodeError resolves a failed recovery or verification code
// submission. Coordinators for other flow types, or without OnCodeSuccess
// and ClearCode, report a failure without side effects.
func (c *Coordinator) HandleCodeError(ctx context.Context, err error) CodeResult {
	if !c.kind.IsCodeFlow() || c.onCodeSuccess == nil || c.clearCode == nil {
		return CodeResult{State: CodeFailed}
	}

	res := flows.RunCodeError(ctx, err, c.codeDeps())
	c.setCodeState(res.State)
	return res
}

// HandleOIDCError resolves a failed social sign-in. Provider errors go
// through [Coordinator.HandleFlowError]; anything else shows the default
// error.
func (c *Coordinator) HandleOIDCError(ctx context.Context, err error) ErrorClass {
	if _, ok := flow.AsResponseError(err); !ok {
		c.SetError(c.translate(flows.KeyDefaultError))
		c.engine.logger.WarnContext(ctx, "oidc sign-in failed",
			log.FlowID(c.flowID()),
			log.FlowType(c.kind),
			log.Error(err),
		)
		return ClassUnclassified
	}
	return c.runFlowError(ctx, err).Class
}

// Submit sends body to the provider and resolves the outcome locally. The
// returned error is non-nil only when the result was superseded by a newer
// submission; provider failures are reported in [SubmitResult.Err].
func (c *Coordinator) Submit(ctx context.Context, body UpdateBody) (SubmitResult, error) {
	if c == nil || c.engine == nil {
		return SubmitResult{}, ErrEngineNotReady
	}

	r, err := flows.RunSubmit(ctx, body, c.submitDeps())
	if err != nil {
		return SubmitResult{}, err
	}

	out := SubmitResult{
		Outcome:    r.Outcome,
		Class:      r.Class,
		Flow:       r.Flow,
		Target:     r.Target,
		SessionID:  r.Result.SessionID,
		IdentityID: r.Result.IdentityID,
	}
	if r.Err != nil {
		out.Err = fmt.Errorf("%w: %w", ClassError(r.Class), r.Err)
		c.engine.logger.DebugContext(ctx, "flow submission failed",
			log.FlowID(c.flowID()),
			log.FlowType(c.kind),
			log.Error(r.Err),
		)
	}
	return out, nil
}

// SubmitCode sends a recovery or verification code. Failures go through
// [Coordinator.HandleCodeError]'s algorithm.
func (c *Coordinator) SubmitCode(ctx context.Context, body UpdateBody) (CodeResult, error) {
	if c == nil || c.engine == nil {
		return CodeResult{}, ErrEngineNotReady
	}
	if !c.kind.IsCodeFlow() {
		return CodeResult{}, fmt.Errorf("%w: %q has no code step", ErrInvalidFlowType, c.kind)
	}

	seq := c.startCode()
	res, err := flows.RunSubmitCode(ctx, body, c.submitDeps(), c.codeDeps())
	if err != nil {
		res.State = CodeIdle
	}
	c.finishCode(seq, res.State)
	return res, err
}

func (c *Coordinator) startCode() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codeSeq++
	c.codeState = CodeSubmitting
	return c.codeSeq
}

func (c *Coordinator) setCodeState(state CodeState) {
	c.mu.Lock()
	c.codeState = state
	c.mu.Unlock()
}

// finishCode settles the code state unless a later SubmitCode owns it.
func (c *Coordinator) finishCode(seq uint64, state CodeState) {
	c.mu.Lock()
	if c.codeSeq == seq {
		c.codeState = state
	}
	c.mu.Unlock()
}

func (c *Coordinator) flowID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.ID
}

// applyValidation renders a validation response. The global error falls
// back to defaultError so a rejected submission never looks clean.
func (c *Coordinator) applyValidation(doc Document) {
	c.replace(doc)
	if msg, ok := c.GlobalError(); !ok || msg == "" {
		c.SetError(c.translate(flows.KeyDefaultError))
	}
}

// begin marks a new submission. The returned check fails once another
// submission or a document replacement happened locally, or, with a
// distributed store, once another replica began a later submission of the
// same flow. Store errors fail open.
func (c *Coordinator) begin(ctx context.Context) func(context.Context) bool {
	c.mu.Lock()
	c.generation++
	captured := c.generation
	flowID := c.doc.ID
	c.mu.Unlock()

	store := c.engine.generations
	var remote uint64
	if store != nil && flowID != "" {
		next, err := store.Next(ctx, flowID)
		if err != nil {
			c.engine.logger.WarnContext(ctx, "generation store unavailable",
				log.FlowID(flowID),
				log.Error(err),
			)
			store = nil
		}
		remote = next
	}

	return func(ctx context.Context) bool {
		c.mu.Lock()
		current := c.generation == captured
		c.mu.Unlock()
		if !current {
			return false
		}
		if store == nil || flowID == "" {
			return true
		}
		latest, err := store.Current(ctx, flowID)
		if err != nil {
			c.engine.logger.WarnContext(ctx, "generation store unavailable",
				log.FlowID(flowID),
				log.Error(err),
			)
			return true
		}
		return latest == remote
	}
}

// defaultTarget picks the post-submission route. Return targets outside
// Routes.AppURL are skipped, so the result is always navigated in-app.
func (c *Coordinator) defaultTarget() (string, bool) {
	for _, target := range []string{c.returnTo, c.Flow().ReturnTo} {
		if target != "" && !c.engine.IsExternal(target) {
			return target, false
		}
	}
	return c.engine.config.Routes.DefaultRedirect, false
}

func (c *Coordinator) runFlowError(ctx context.Context, err error) flows.FlowErrorResult {
	return flows.RunFlowError(ctx, err, c.flowErrorDeps())
}

func (c *Coordinator) continuationDeps() flows.ContinuationDeps {
	routes := c.engine.config.Routes
	return flows.ContinuationDeps{
		Routes:     routes.byType(),
		QueryParam: routes.FlowQueryParam,
		IsExternal: c.engine.IsExternal,
		Redirect:   c.Redirect,
	}
}

func (c *Coordinator) flowErrorDeps() flows.FlowErrorDeps {
	return flows.FlowErrorDeps{
		FlowID:          c.flowID(),
		FlowType:        c.kind,
		DefaultRedirect: c.engine.config.Routes.DefaultRedirect,
		Translate:       c.translate,
		OnValidation:    c.applyValidation,
		SetError:        c.SetError,
		Redirect:        c.Redirect,
		Restart:         func(id string) { c.RestartFlow(id) },
		IsExternal:      c.engine.IsExternal,
		MetricInc:       c.engine.metricIncInt,
		EmitAudit:       c.engine.emitAudit,
		Metrics: flows.FlowErrorMetrics{
			Validation:   int(MetricValidationError),
			Expired:      int(MetricFlowExpired),
			Redirect:     int(MetricRedirectHandled),
			Malformed:    int(MetricMalformedResponse),
			Unclassified: int(MetricUnclassifiedError),
		},
		Events: flows.FlowErrorEvents{
			Validation:   auditEventValidation,
			Restart:      auditEventRestart,
			Redirect:     auditEventRedirect,
			Unclassified: auditEventFlowError,
		},
	}
}

func (c *Coordinator) submitDeps() flows.SubmitDeps {
	flowID := c.flowID()
	return flows.SubmitDeps{
		FlowID:     flowID,
		FlowType:   c.kind,
		CSRFToken:  c.CSRFToken,
		ClearError: c.ClearError,
		SetError:   c.SetError,
		Translate:  c.translate,
		Begin:      c.begin,
		Update: func(ctx context.Context, body flow.UpdateBody) (flow.UpdateResult, error) {
			return c.engine.provider.UpdateFlow(ctx, c.kind, flowID, body)
		},
		Observe:         c.replace,
		Continue:        c.ResolveContinuation,
		DefaultTarget:   c.defaultTarget,
		Redirect:        c.Redirect,
		HandleFlowError: c.runFlowError,
		ErrSuperseded:   ErrSuperseded,
		ObserveLatency:  c.engine.observeLatency,
		MetricInc:       c.engine.metricIncInt,
		EmitAudit:       c.engine.emitAudit,
		Metrics: flows.SubmitMetrics{
			Success:           int(MetricSubmitSuccess),
			Failure:           int(MetricSubmitFailure),
			Stale:             int(MetricStaleResultDiscarded),
			Continuation:      int(MetricContinuationResolved),
			DefaultNavigation: int(MetricDefaultNavigation),
		},
		Events: flows.SubmitEvents{
			Submit: auditEventSubmit,
		},
	}
}

func (c *Coordinator) codeDeps() flows.CodeErrorDeps {
	flowID := c.flowID()
	return flows.CodeErrorDeps{
		FlowID:          flowID,
		FlowType:        c.kind,
		GetFlow:         c.engine.provider.GetFlow,
		HandleFlowError: c.runFlowError,
		OnSuccess:       c.onCodeSuccess,
		SetError:        c.SetError,
		ClearCode:       c.clearCode,
		Translate:       c.translate,
		OnRefetchError: func(err error) {
			c.engine.logger.Warn("code confirmation failed",
				log.FlowID(flowID),
				log.FlowType(c.kind),
				log.Error(err),
			)
		},
		MetricInc: c.engine.metricIncInt,
		EmitAudit: c.engine.emitAudit,
		Metrics: flows.CodeErrorMetrics{
			Success:        int(MetricCodeSuccess),
			Failure:        int(MetricCodeFailure),
			RefetchFailure: int(MetricCodeRefetchFailure),
		},
		Events: flows.CodeErrorEvents{
			CodeConfirm: auditEventCodeConfirm,
		},
	}
}
