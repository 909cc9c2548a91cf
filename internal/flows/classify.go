package flows

import (
	"regexp"
	"strings"

	"github.com/MrEthical07/goFlow/flow"
)

// Translate maps a message key to display text.
type Translate func(key string) string

// Translation keys produced by the classifier and the error handlers.
const (
	KeyInvalidCredentials = "invalidCredentials"
	KeyEmailAlreadyExists = "emailAlreadyExists"
	KeyPasswordBreached   = "passwordBreached"
	KeyPasswordTooShort   = "passwordTooShort"
	KeyPasswordTooLong    = "passwordTooLong"
	KeyEmailInvalid       = "emailInvalid"
	KeyInvalidCode        = "invalidCode"
	KeyEmailRequired      = "emailRequired"
	KeyPasswordRequired   = "passwordRequired"
	KeyDefaultError       = "defaultError"
)

// ErrorRule pairs a predicate over message text with a translation key.
type ErrorRule struct {
	Name  string
	Match func(text string) bool
	Key   string
}

// PatternRule builds a case-insensitive regexp rule.
func PatternRule(expr, key string) ErrorRule {
	re := regexp.MustCompile("(?i)" + expr)
	return ErrorRule{
		Name:  expr,
		Match: re.MatchString,
		Key:   key,
	}
}

// DefaultErrorRules is evaluated strictly in order; the first match wins.
var DefaultErrorRules = []ErrorRule{
	PatternRule(`credentials|phone number`, KeyInvalidCredentials),
	PatternRule(`exists already`, KeyEmailAlreadyExists),
	PatternRule(`data breaches`, KeyPasswordBreached),
	PatternRule(`at least.*characters`, KeyPasswordTooShort),
	PatternRule(`too long`, KeyPasswordTooLong),
	PatternRule(`valid email`, KeyEmailInvalid),
	PatternRule(`verification code.*invalid|code.*not.*valid|invalid.*code`, KeyInvalidCode),
}

// DefaultFieldAliases maps provider field names to the names the UI binds.
var DefaultFieldAliases = map[string]string{
	"identifier":   "email",
	"traits.email": "email",
}

// Classifier localizes provider messages. The zero value uses the default
// rules and aliases.
type Classifier struct {
	Rules   []ErrorRule
	Aliases map[string]string
}

func (c Classifier) rules() []ErrorRule {
	if c.Rules == nil {
		return DefaultErrorRules
	}
	return c.Rules
}

// Canonical returns the post-alias name of a provider field.
func (c Classifier) Canonical(field string) string {
	aliases := c.Aliases
	if aliases == nil {
		aliases = DefaultFieldAliases
	}
	if mapped, ok := aliases[field]; ok {
		return mapped
	}
	return field
}

// Rule returns the first rule matching text.
func (c Classifier) Rule(text string) (ErrorRule, bool) {
	for _, rule := range c.rules() {
		if rule.Match != nil && rule.Match(text) {
			return rule, true
		}
	}
	return ErrorRule{}, false
}

// Translate returns the display string for msg. Unrecognised text passes
// through unchanged.
func (c Classifier) Translate(msg flow.Message, t Translate) string {
	if rule, ok := c.Rule(msg.Text); ok {
		return t(rule.Key)
	}

	if isMissingProperty(msg) {
		switch msg.Property() {
		case "identifier", "traits.email":
			return t(KeyEmailRequired)
		case "password":
			return t(KeyPasswordRequired)
		}
	}

	return msg.Text
}

func isMissingProperty(msg flow.Message) bool {
	return msg.ID == flow.CodeMissingProperty ||
		strings.Contains(msg.Text, "required") ||
		strings.Contains(msg.Text, "Property")
}

// GlobalError classifies the first error in the document's top-level
// messages.
func (c Classifier) GlobalError(doc flow.Document, t Translate) (string, bool) {
	msg, ok := flow.FirstError(doc.UI.Messages)
	if !ok {
		return "", false
	}
	return c.Translate(msg, t), true
}

// FieldErrors classifies the first error of every input node. Keys are
// canonical field names; a later node overwrites an earlier one that maps
// to the same name.
func (c Classifier) FieldErrors(doc flow.Document, t Translate) map[string]string {
	errs := make(map[string]string)
	for _, node := range doc.UI.Nodes {
		if !node.IsInput() || node.Attributes.Name == "" {
			continue
		}
		msg, ok := flow.FirstError(node.Messages)
		if !ok {
			continue
		}
		errs[c.Canonical(node.Attributes.Name)] = c.Translate(msg, t)
	}
	return errs
}
