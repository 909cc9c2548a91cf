package server

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	goFlow "github.com/MrEthical07/goFlow"
)

// form is a validated submission that knows its provider body.
type form interface {
	body() goFlow.UpdateBody
}

type loginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (f *loginForm) body() goFlow.UpdateBody { return goFlow.LoginPassword(f.Email, f.Password) }

type registrationForm struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"accept_terms" binding:"required"`
}

func (f *registrationForm) body() goFlow.UpdateBody {
	return goFlow.RegistrationPassword(f.Email, f.Password)
}

type emailForm struct {
	Email string `json:"email" binding:"required,email"`
	kind  goFlow.FlowType
}

func (f *emailForm) body() goFlow.UpdateBody {
	if f.kind == goFlow.FlowVerification {
		return goFlow.VerificationEmail(f.Email)
	}
	return goFlow.RecoveryEmail(f.Email)
}

type recoveryCodeForm struct {
	Code string `json:"code" binding:"required,min=6"`
}

func (f *recoveryCodeForm) body() goFlow.UpdateBody { return goFlow.RecoveryCode(f.Code) }

type verificationCodeForm struct {
	Code string `json:"code" binding:"required"`
}

func (f *verificationCodeForm) body() goFlow.UpdateBody { return goFlow.VerificationCode(f.Code) }

type settingsForm struct {
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

func (f *settingsForm) body() goFlow.UpdateBody { return goFlow.SettingsPassword(f.Password) }

type oidcForm struct {
	Provider string `json:"provider" binding:"required"`
}

func (f *oidcForm) body() goFlow.UpdateBody { return goFlow.OIDC(f.Provider) }

// formFor picks the form of kind for the submitted method. Code steps of
// recovery and verification are recognized by a code field.
func formFor(kind goFlow.FlowType, raw []byte) (form, bool, error) {
	method := gjson.GetBytes(raw, "method").String()

	switch kind {
	case goFlow.FlowLogin, goFlow.FlowRegistration:
		switch method {
		case goFlow.MethodOIDC:
			return &oidcForm{}, false, nil
		case goFlow.MethodPassword, "":
			if kind == goFlow.FlowLogin {
				return &loginForm{}, false, nil
			}
			return &registrationForm{}, false, nil
		}
	case goFlow.FlowRecovery, goFlow.FlowVerification:
		if method != goFlow.MethodCode && method != "" {
			break
		}
		if !gjson.GetBytes(raw, "code").Exists() {
			return &emailForm{kind: kind}, false, nil
		}
		if kind == goFlow.FlowRecovery {
			return &recoveryCodeForm{}, true, nil
		}
		return &verificationCodeForm{}, true, nil
	case goFlow.FlowSettings:
		if method == goFlow.MethodPassword || method == "" {
			return &settingsForm{}, false, nil
		}
	}
	return nil, false, errUnsupportedMethod
}

var fieldNames = map[string]string{
	"Email":           "email",
	"Password":        "password",
	"ConfirmPassword": "confirm_password",
	"AcceptTerms":     "accept_terms",
	"Code":            "code",
	"Provider":        "provider",
}

var validationKeys = map[string]string{
	"Email.required":           "emailRequired",
	"Email.email":              "emailInvalid",
	"Password.required":        "passwordRequired",
	"Password.min":             "passwordTooShort",
	"ConfirmPassword.required": "passwordsMustMatch",
	"ConfirmPassword.eqfield":  "passwordsMustMatch",
	"AcceptTerms.required":     "acceptTermsRequired",
	"Code.required":            "codeRequired",
	"Code.min":                 "codeTooShort",
}

// bindForm decodes and validates raw into f. Validation failures come back
// as translated field errors; any other error is a malformed body.
func bindForm(raw []byte, f form, t goFlow.Translator) (goFlow.FieldErrors, error) {
	err := binding.JSON.BindBody(raw, f)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, errInvalidJSON
	}

	out := make(goFlow.FieldErrors, len(verrs))
	for _, fe := range verrs {
		name, ok := fieldNames[fe.StructField()]
		if !ok {
			name = fe.Field()
		}
		if _, seen := out[name]; seen {
			continue
		}
		key, ok := validationKeys[fe.StructField()+"."+fe.Tag()]
		if !ok {
			key = "defaultError"
		}
		out[name] = t.Translate(key)
	}
	return out, nil
}
