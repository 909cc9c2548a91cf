package flow

import "encoding/json"

// UpdateBody is the per-method payload of a flow submission. Fields are
// flattened next to method and csrf_token when encoded.
type UpdateBody struct {
	Method    string
	CSRFToken string
	Fields    map[string]any
}

// MarshalJSON encodes the body as the flat object the provider expects.
func (b UpdateBody) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+2)
	for k, v := range b.Fields {
		out[k] = v
	}
	out["method"] = b.Method
	if b.CSRFToken != "" {
		out["csrf_token"] = b.CSRFToken
	}
	return json.Marshal(out)
}

// WithCSRF returns a copy of b carrying token.
func (b UpdateBody) WithCSRF(token string) UpdateBody {
	b.CSRFToken = token
	return b
}

// Field returns a string field value, or "" when absent.
func (b UpdateBody) Field(name string) string {
	v, _ := b.Fields[name].(string)
	return v
}

// UpdateResult is what a successful submission returns. Login and
// registration carry a session, the other flows return a replacement flow.
type UpdateResult struct {
	Flow         *Document
	SessionID    string
	IdentityID   string
	SessionToken string
	ContinueWith []ContinueWith
}

// LogoutFlow is the browser logout flow issued by the provider.
type LogoutFlow struct {
	LogoutURL   string `json:"logout_url"`
	LogoutToken string `json:"logout_token"`
}
