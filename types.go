package goFlow

import (
	"context"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrEthical07/goFlow/flow"
	"github.com/MrEthical07/goFlow/internal/flows"
)

// FlowType identifies a self-service flow (login, registration, recovery,
// verification, settings).
type FlowType = flow.Type

const (
	FlowLogin        = flow.TypeLogin
	FlowRegistration = flow.TypeRegistration
	FlowRecovery     = flow.TypeRecovery
	FlowVerification = flow.TypeVerification
	FlowSettings     = flow.TypeSettings
)

// Document is one server-issued flow. It is an immutable value: the
// coordinator replaces it wholesale and never mutates it.
//
//	Docs: docs/flows.md
type Document = flow.Document

// UpdateBody is the per-method payload of a submission.
type UpdateBody = flow.UpdateBody

// UpdateResult is what an accepted submission returns.
type UpdateResult = flow.UpdateResult

// LogoutFlow is a browser logout flow.
type LogoutFlow = flow.LogoutFlow

// ContinueWith is one post-submission directive.
type ContinueWith = flow.ContinueWith

// Continuation is a resolved navigation target.
type Continuation = flows.Continuation

// CodeState is the lifecycle of a one-time-code submission:
// Idle, Submitting, then Succeeded or Failed.
type CodeState = flows.CodeState

const (
	CodeIdle       = flows.CodeIdle
	CodeSubmitting = flows.CodeSubmitting
	CodeSucceeded  = flows.CodeSucceeded
	CodeFailed     = flows.CodeFailed
)

// CodeResult is the terminal state of a code submission.
type CodeResult = flows.CodeResult

// Outcome describes how a submission left the UI.
type Outcome = flows.Outcome

const (
	OutcomeContinued = flows.OutcomeContinued
	OutcomeNavigated = flows.OutcomeNavigated
	OutcomeReplaced  = flows.OutcomeReplaced
	OutcomeFailed    = flows.OutcomeFailed
)

// FieldErrors maps canonical field names to display-ready messages.
type FieldErrors map[string]string

// Clone returns an independent copy of fe.
func (fe FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// IdentityProviderClient is the provider surface the coordinator drives.
// Failures should be returned as *flow.ResponseError so they can be
// classified; any other error is treated as unclassified.
//
//	Docs: docs/provider.md
type IdentityProviderClient interface {
	GetFlow(ctx context.Context, kind FlowType, id string) (Document, error)
	UpdateFlow(ctx context.Context, kind FlowType, id string, body UpdateBody) (UpdateResult, error)
	CreateLogoutFlow(ctx context.Context) (LogoutFlow, error)
	SubmitLogout(ctx context.Context, token string) error
}

// Navigator performs browser navigation on behalf of the coordinator.
// Assign is a full page load; Push and Replace change the in-app route and
// Refresh re-requests server data for the current route.
type Navigator interface {
	Assign(url string)
	Push(path string)
	Replace(path string)
	Refresh()
	Location() *url.URL
}

// Translator maps a message key to display text in one locale.
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a function to [Translator].
type TranslatorFunc func(key string) string

// Translate implements [Translator].
func (f TranslatorFunc) Translate(key string) string {
	return f(key)
}

// SubmitResult is the locally resolved outcome of [Coordinator.Submit].
// Err carries the classified sentinel ([ErrValidation], [ErrFlowExpired], ...)
// wrapping the provider error; it is nil when the submission succeeded.
type SubmitResult struct {
	Outcome    Outcome
	Class      ErrorClass
	Flow       *Document
	Target     string
	SessionID  string
	IdentityID string
	Err        error
}

// Viewer is the signed-in identity shown in navigation.
type Viewer struct {
	IdentityID string `json:"identity_id"`
	SessionID  string `json:"session_id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// Initials returns up to two upper-case letters for an avatar fallback:
// first and last word of the name, or the first two characters of a single
// word. The email is used when no name is set.
func (v Viewer) Initials() string {
	text := strings.TrimSpace(v.Name)
	if text == "" {
		text = strings.TrimSpace(v.Email)
	}
	if text == "" {
		return ""
	}

	parts := strings.Fields(text)
	if len(parts) > 1 {
		first, _ := utf8.DecodeRuneInString(parts[0])
		last, _ := utf8.DecodeRuneInString(parts[len(parts)-1])
		return string([]rune{unicode.ToUpper(first), unicode.ToUpper(last)})
	}

	runes := []rune(text)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
