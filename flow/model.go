package flow

import "time"

// Type identifies which self-service flow a document belongs to.
type Type string

const (
	TypeLogin        Type = "login"
	TypeRegistration Type = "registration"
	TypeRecovery     Type = "recovery"
	TypeVerification Type = "verification"
	TypeSettings     Type = "settings"
)

// Valid reports whether t is one of the known flow types.
func (t Type) Valid() bool {
	switch t {
	case TypeLogin, TypeRegistration, TypeRecovery, TypeVerification, TypeSettings:
		return true
	}
	return false
}

// IsCodeFlow reports whether the final step of t is a one-time code.
func (t Type) IsCodeFlow() bool {
	return t == TypeRecovery || t == TypeVerification
}

// State values reported by recovery, verification and settings flows.
const (
	StateChooseMethod    = "choose_method"
	StateSentEmail       = "sent_email"
	StatePassedChallenge = "passed_challenge"
	StateShowForm        = "show_form"
	StateSuccess         = "success"
)

// Document is one flow as issued by the provider.
type Document struct {
	ID         string    `json:"id"`
	Type       Type      `json:"flow_type,omitempty"`
	Transport  string    `json:"type,omitempty"`
	State      string    `json:"state,omitempty"`
	ReturnTo   string    `json:"return_to,omitempty"`
	RequestURL string    `json:"request_url,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	IssuedAt   time.Time `json:"issued_at,omitempty"`
	UI         UI        `json:"ui"`
}

// UI is the form description embedded in a flow document.
type UI struct {
	Action   string    `json:"action"`
	Method   string    `json:"method"`
	Nodes    []Node    `json:"nodes"`
	Messages []Message `json:"messages,omitempty"`
}

// Node is a single form field, including hidden fields such as the CSRF token.
type Node struct {
	Type       string         `json:"type"`
	Group      string         `json:"group"`
	Attributes NodeAttributes `json:"attributes"`
	Messages   []Message      `json:"messages,omitempty"`
}

// NodeAttributes carries the input attributes of a node. Only input nodes
// have a Name; script, image and anchor nodes leave it empty.
type NodeAttributes struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Value    any    `json:"value,omitempty"`
	Required bool   `json:"required,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	NodeType string `json:"node_type,omitempty"`
}

// IsInput reports whether the node describes an input element.
func (n Node) IsInput() bool {
	if n.Attributes.NodeType != "" {
		return n.Attributes.NodeType == "input"
	}
	return n.Type == "" || n.Type == "input"
}

// MessageType is the severity of a UI message.
type MessageType string

const (
	MessageError   MessageType = "error"
	MessageInfo    MessageType = "info"
	MessageSuccess MessageType = "success"
)

// Message is a provider-issued text with a stable numeric code.
type Message struct {
	ID      int64          `json:"id"`
	Text    string         `json:"text"`
	Type    MessageType    `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// Property returns context.property as a string, or "" when absent.
func (m Message) Property() string {
	if m.Context == nil {
		return ""
	}
	p, _ := m.Context["property"].(string)
	return p
}

// FirstError returns the first error-typed message in msgs.
func FirstError(msgs []Message) (Message, bool) {
	for _, m := range msgs {
		if m.Type == MessageError {
			return m, true
		}
	}
	return Message{}, false
}
