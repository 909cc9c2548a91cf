package flow

// Continuation actions returned alongside a successful submission.
const (
	ActionRedirectBrowserTo  = "redirect_browser_to"
	ActionShowVerificationUI = "show_verification_ui"
	ActionShowRecoveryUI     = "show_recovery_ui"
	ActionShowSettingsUI     = "show_settings_ui"
	ActionSetOrySessionToken = "set_ory_session_token"
)

// ContinueWith is one continuation directive.
type ContinueWith struct {
	Action            string       `json:"action"`
	RedirectBrowserTo string       `json:"redirect_browser_to,omitempty"`
	Flow              *FlowPointer `json:"flow,omitempty"`
	OrySessionToken   string       `json:"ory_session_token,omitempty"`
}

// FlowPointer references a follow-up flow by id and optional UI URL.
type FlowPointer struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}
