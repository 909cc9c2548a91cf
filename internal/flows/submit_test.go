package flows

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/goFlow/flow"
)

type submitRecorder struct {
	cleared   int
	errors    []string
	observed  []flow.Document
	redirects []string
	bodies    []flow.UpdateBody
	stale     bool
	continued bool
	metrics   map[int]int
	update    func() (flow.UpdateResult, error)
}

func (r *submitRecorder) deps() SubmitDeps {
	r.metrics = map[int]int{}
	return SubmitDeps{
		FlowID:     "lf-1",
		FlowType:   flow.TypeLogin,
		CSRFToken:  func() string { return "csrf" },
		ClearError: func() { r.cleared++ },
		SetError:   func(msg string) { r.errors = append(r.errors, msg) },
		Translate:  keyTranslate,
		Begin: func(context.Context) func(context.Context) bool {
			return func(context.Context) bool { return !r.stale }
		},
		Update: func(_ context.Context, body flow.UpdateBody) (flow.UpdateResult, error) {
			r.bodies = append(r.bodies, body)
			return r.update()
		},
		Observe: func(doc flow.Document) { r.observed = append(r.observed, doc) },
		Continue: func(actions []flow.ContinueWith) bool {
			return r.continued && len(actions) > 0
		},
		DefaultTarget: func() (string, bool) { return "/dashboard", false },
		Redirect:      func(target string, _ bool) { r.redirects = append(r.redirects, target) },
		HandleFlowError: func(ctx context.Context, err error) FlowErrorResult {
			if re, ok := flow.AsResponseError(err); ok && re.Flow != nil {
				return FlowErrorResult{Class: ClassValidation, Flow: re.Flow}
			}
			return FlowErrorResult{Class: ClassUnclassified}
		},
		Now:       func() time.Time { return time.Unix(0, 0) },
		MetricInc: func(id int) { r.metrics[id]++ },
		Metrics: SubmitMetrics{
			Success:           1,
			Failure:           2,
			Stale:             3,
			Continuation:      4,
			DefaultNavigation: 5,
		},
	}
}

func TestRunSubmitDefaultNavigation(t *testing.T) {
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{SessionID: "s-1"}, nil
	}}
	res, err := RunSubmit(context.Background(), flow.UpdateBody{Method: "password"}, rec.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeNavigated || res.Target != "/dashboard" {
		t.Fatalf("unexpected result %+v", res)
	}
	if rec.cleared != 1 || rec.bodies[0].CSRFToken != "csrf" {
		t.Fatalf("expected cleared error and attached csrf, got %+v", rec)
	}
	if len(rec.redirects) != 1 || rec.metrics[5] != 1 || rec.metrics[1] != 1 {
		t.Fatalf("unexpected navigation %v metrics %v", rec.redirects, rec.metrics)
	}
}

func TestRunSubmitContinuationSkipsDefault(t *testing.T) {
	rec := &submitRecorder{continued: true, update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{ContinueWith: []flow.ContinueWith{{Action: flow.ActionRedirectBrowserTo, RedirectBrowserTo: "https://app.example.com"}}}, nil
	}}
	res, _ := RunSubmit(context.Background(), flow.UpdateBody{Method: "password"}, rec.deps())
	if res.Outcome != OutcomeContinued || len(rec.redirects) != 0 {
		t.Fatalf("unexpected result %+v redirects %v", res, rec.redirects)
	}
}

func TestRunSubmitReplacementFlowRendersInPlace(t *testing.T) {
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{Flow: &flow.Document{ID: "rf-1", State: flow.StateSentEmail}}, nil
	}}
	res, _ := RunSubmit(context.Background(), flow.UpdateBody{Method: "code"}, rec.deps())
	if res.Outcome != OutcomeReplaced || len(rec.observed) != 1 || len(rec.redirects) != 0 {
		t.Fatalf("unexpected result %+v %+v", res, rec)
	}
}

func TestRunSubmitValidationFailureKeepsDerivedError(t *testing.T) {
	doc := &flow.Document{ID: "lf-1"}
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{}, &flow.ResponseError{Kind: flow.KindValidation, Status: http.StatusBadRequest, Flow: doc}
	}}
	res, _ := RunSubmit(context.Background(), flow.UpdateBody{Method: "password"}, rec.deps())
	if res.Outcome != OutcomeFailed || res.Class != ClassValidation || res.Flow == nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(rec.errors) != 0 {
		t.Fatalf("validation must not overwrite the derived error, got %v", rec.errors)
	}
}

func TestRunSubmitUnclassifiedFailureShowsDefault(t *testing.T) {
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{}, errors.New("connection reset")
	}}
	res, _ := RunSubmit(context.Background(), flow.UpdateBody{Method: "password"}, rec.deps())
	if res.Outcome != OutcomeFailed || len(rec.errors) != 1 || rec.errors[0] != "t:"+KeyDefaultError {
		t.Fatalf("unexpected result %+v errors %v", res, rec.errors)
	}
	if rec.metrics[2] != 1 {
		t.Fatalf("expected failure metric, got %v", rec.metrics)
	}
}

func TestRunSubmitSupersededResultIsDiscarded(t *testing.T) {
	superseded := errors.New("superseded")
	rec := &submitRecorder{stale: true, update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{}, errors.New("late failure")
	}}
	deps := rec.deps()
	deps.ErrSuperseded = superseded
	_, err := RunSubmit(context.Background(), flow.UpdateBody{Method: "password"}, deps)
	if !errors.Is(err, superseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
	if len(rec.errors) != 0 || len(rec.redirects) != 0 || rec.metrics[3] != 1 {
		t.Fatalf("stale result must not touch state: %+v", rec)
	}
}

func TestRunSubmitCodePassedChallenge(t *testing.T) {
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{Flow: &flow.Document{ID: "vf-1", State: flow.StatePassedChallenge}}, nil
	}}
	code := &codeRecorder{}
	res, err := RunSubmitCode(context.Background(), flow.UpdateBody{Method: "code"}, rec.deps(), code.deps())
	if err != nil || !res.Success() || res.Path != CodePathAccepted {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
	if code.successes != 1 || code.cleared != 0 {
		t.Fatalf("expected one success and no clear, got %+v", code)
	}
}

func TestRunSubmitCodeRejected(t *testing.T) {
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{Flow: &flow.Document{ID: "vf-1", State: flow.StateSentEmail}}, nil
	}}
	code := &codeRecorder{}
	res, _ := RunSubmitCode(context.Background(), flow.UpdateBody{Method: "code"}, rec.deps(), code.deps())
	if res.State != CodeFailed || res.Path != CodePathRejected || code.cleared != 1 {
		t.Fatalf("unexpected result %+v %+v", res, code)
	}
	if code.errors[0] != "t:"+KeyInvalidCode {
		t.Fatalf("unexpected error %v", code.errors)
	}
}

func TestRunSubmitCodeRedirectGoesThroughRefetch(t *testing.T) {
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{}, redirectErr()
	}}
	code := &codeRecorder{fetch: func() (flow.Document, error) {
		return flow.Document{ID: "vf-1", State: flow.StatePassedChallenge}, nil
	}}
	res, _ := RunSubmitCode(context.Background(), flow.UpdateBody{Method: "code"}, rec.deps(), code.deps())
	if !res.Success() || res.Path != CodePathRefetchPassed || len(code.fetched) != 1 {
		t.Fatalf("unexpected result %+v %+v", res, code)
	}
}

func TestRunSubmitCodeStaleRefetchIsDropped(t *testing.T) {
	superseded := errors.New("superseded")
	rec := &submitRecorder{update: func() (flow.UpdateResult, error) {
		return flow.UpdateResult{}, redirectErr()
	}}
	code := &codeRecorder{fetch: func() (flow.Document, error) {
		// A newer flow is observed while the re-read is in flight.
		rec.stale = true
		return flow.Document{
			ID: "vf-1",
			UI: flow.UI{Messages: []flow.Message{{ID: 4060006, Type: flow.MessageError, Text: "Code expired"}}},
		}, nil
	}}
	deps := rec.deps()
	deps.ErrSuperseded = superseded

	res, err := RunSubmitCode(context.Background(), flow.UpdateBody{Method: "code"}, deps, code.deps())
	if !errors.Is(err, superseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
	if res.State != CodeIdle || res.Path != CodePathSuperseded {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(code.errors) != 0 || code.cleared != 0 || code.successes != 0 {
		t.Fatalf("stale re-read must not touch state: %+v", code)
	}
	if rec.metrics[3] != 1 {
		t.Fatalf("expected stale metric, got %v", rec.metrics)
	}
}
