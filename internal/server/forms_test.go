package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goFlow "github.com/MrEthical07/goFlow"
)

func TestFormFor(t *testing.T) {
	cases := []struct {
		kind   goFlow.FlowType
		body   string
		want   form
		isCode bool
	}{
		{goFlow.FlowLogin, `{"method": "password"}`, &loginForm{}, false},
		{goFlow.FlowLogin, `{}`, &loginForm{}, false},
		{goFlow.FlowLogin, `{"method": "oidc"}`, &oidcForm{}, false},
		{goFlow.FlowRegistration, `{"method": "password"}`, &registrationForm{}, false},
		{goFlow.FlowRecovery, `{"method": "code", "email": "a@b.c"}`, &emailForm{kind: goFlow.FlowRecovery}, false},
		{goFlow.FlowRecovery, `{"method": "code", "code": "123456"}`, &recoveryCodeForm{}, true},
		{goFlow.FlowVerification, `{"email": "a@b.c"}`, &emailForm{kind: goFlow.FlowVerification}, false},
		{goFlow.FlowVerification, `{"code": "1"}`, &verificationCodeForm{}, true},
		{goFlow.FlowSettings, `{"method": "password"}`, &settingsForm{}, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+tc.body, func(t *testing.T) {
			f, isCode, err := formFor(tc.kind, []byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, f)
			assert.Equal(t, tc.isCode, isCode)
		})
	}

	_, _, err := formFor(goFlow.FlowRecovery, []byte(`{"method": "password"}`))
	assert.ErrorIs(t, err, errUnsupportedMethod)
	_, _, err = formFor(goFlow.FlowSettings, []byte(`{"method": "oidc"}`))
	assert.ErrorIs(t, err, errUnsupportedMethod)
}

func TestFormBodies(t *testing.T) {
	verify := &emailForm{Email: "ada@example.com", kind: goFlow.FlowVerification}
	assert.Equal(t, goFlow.VerificationEmail("ada@example.com"), verify.body())

	recovery := &emailForm{Email: "ada@example.com", kind: goFlow.FlowRecovery}
	assert.Equal(t, goFlow.RecoveryEmail("ada@example.com"), recovery.body())

	reg := &registrationForm{Email: "ada@example.com", Password: "hunter22hunter"}
	assert.Equal(t, goFlow.RegistrationPassword("ada@example.com", "hunter22hunter"), reg.body())
}

func TestBindFormMalformed(t *testing.T) {
	t.Parallel()
	identity := goFlow.TranslatorFunc(func(key string) string { return key })

	_, err := bindForm([]byte(`{"email": 42}`), &loginForm{}, identity)
	assert.ErrorIs(t, err, errInvalidJSON)

	fe, err := bindForm([]byte(`{"email": "ada@example.com", "password": "pw"}`), &loginForm{}, identity)
	require.NoError(t, err)
	assert.Empty(t, fe)

	fe, err = bindForm([]byte(`{"provider": ""}`), &oidcForm{}, identity)
	require.NoError(t, err)
	assert.Equal(t, goFlow.FieldErrors{"provider": "defaultError"}, fe)
}

func TestNavigatorTracksLocation(t *testing.T) {
	nav := newNavigator("/sign-in", "flow", "abc")
	assert.Equal(t, "/sign-in?flow=abc", nav.Location().String())

	nav.Replace("/sign-in?flow=def")
	nav.Refresh()
	nav.Assign("https://accounts.example.com/")

	assert.Equal(t, "/sign-in?flow=def", nav.Location().String())
	assert.Equal(t, []Directive{
		{Action: "replace", Target: "/sign-in?flow=def"},
		{Action: "refresh"},
		{Action: "assign", Target: "https://accounts.example.com/"},
	}, nav.Directives())
}
