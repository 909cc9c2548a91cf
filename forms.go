package goFlow

import "github.com/MrEthical07/goFlow/flow"

// Submission methods understood by the provider.
const (
	MethodPassword = "password"
	MethodCode     = "code"
	MethodOIDC     = "oidc"
)

// LoginPassword is the body of a password sign-in.
func LoginPassword(email, password string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodPassword,
		Fields: map[string]any{
			"identifier": email,
			"password":   password,
		},
	}
}

// RegistrationPassword is the body of a password sign-up. The email is sent
// as the identity's email trait.
func RegistrationPassword(email, password string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodPassword,
		Fields: map[string]any{
			"traits":   map[string]any{"email": email},
			"password": password,
		},
	}
}

// RecoveryEmail requests a recovery code for email.
func RecoveryEmail(email string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodCode,
		Fields: map[string]any{"email": email},
	}
}

// RecoveryCode submits a recovery code.
func RecoveryCode(code string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodCode,
		Fields: map[string]any{"code": code},
	}
}

// VerificationEmail requests a verification code for email.
func VerificationEmail(email string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodCode,
		Fields: map[string]any{"email": email},
	}
}

// VerificationCode submits a verification code.
func VerificationCode(code string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodCode,
		Fields: map[string]any{"code": code},
	}
}

// SettingsPassword changes the password of the signed-in identity.
func SettingsPassword(password string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodPassword,
		Fields: map[string]any{"password": password},
	}
}

// OIDC starts a social sign-in or sign-up with provider (e.g. "google").
func OIDC(provider string) UpdateBody {
	return flow.UpdateBody{
		Method: MethodOIDC,
		Fields: map[string]any{"provider": provider},
	}
}
