package flow

// Numeric message codes used by the provider. Text may be localized or
// reworded by the provider, the ids are stable.
const (
	CodeRecoveryEmailSent       int64 = 1060003
	CodeVerificationSuccessful  int64 = 1080002
	CodeVerificationEmailSent   int64 = 1080003
	CodeValidationGeneric       int64 = 4000001
	CodeMissingProperty         int64 = 4000002
	CodeInvalidCredentials      int64 = 4000006
	CodeDuplicateCredentials    int64 = 4000007
	CodeLoginFlowExpired        int64 = 4010001
	CodeRegistrationFlowExpired int64 = 4040001
	CodeSettingsFlowExpired     int64 = 4050001
	CodeRecoveryFlowExpired     int64 = 4060005
	CodeRecoveryCodeInvalid     int64 = 4060006
	CodeVerificationFlowExpired int64 = 4070005
	CodeVerificationCodeInvalid int64 = 4070006
)

// Error ids carried in the JSON error envelope of non-validation failures.
const (
	ErrorIDFlowExpired             = "self_service_flow_expired"
	ErrorIDCSRFViolation           = "security_csrf_violation"
	ErrorIDSessionAlreadyAvailable = "session_already_available"
	ErrorIDLocationChangeRequired  = "browser_location_change_required"
	ErrorIDAAL2Required            = "session_aal2_required"
	ErrorIDNoActiveSession         = "session_inactive"
)
