package accounts

// Operation outcome codes. Every engine operation returns exactly one of
// these (or a bot-protection provider code surfaced verbatim); CodeOK is
// the sole success value. The UI layer maps codes to copy, so values are
// stable and additions go at the end of their class.
const (
	CodeOK = ""

	// structural input
	CodeFormMissing = "form_missing"

	// field syntax
	CodeInvalidUsername     = "username_invalid"
	CodeInvalidEmail        = "email_invalid"
	CodeInvalidPassword     = "password_invalid"
	CodeInvalidConfirmation = "password_confirmation_invalid"
	CodeInvalidFirstName    = "first_name_invalid"
	CodeInvalidLastName     = "last_name_invalid"
	CodeInvalidPhone        = "phone_invalid"
	CodeInvalidPhoneType    = "phone_type_invalid"
	CodeInvalidLeadType     = "lead_type_invalid"
	CodeConsentRequired     = "consent_required"

	// field uniqueness
	CodeDuplicateUsername = "username_taken"
	CodeDuplicateEmail    = "email_taken"

	// field consistency
	CodePasswordMismatch         = "password_mismatch"
	CodeInvalidCurrentPassword   = "current_password_invalid"
	CodeCurrentPasswordIncorrect = "current_password_incorrect"
	CodeInvalidNewPassword       = "new_password_invalid"
	CodePasswordUnchanged        = "password_unchanged"

	// state preconditions
	CodeAccountNotFound   = "account_not_found"
	CodeNotActivated      = "account_not_activated"
	CodeKeyExpired        = "key_expired"
	CodeIncorrectPassword = "password_incorrect"
	CodeAccountLocked     = "account_locked"

	// bot protection, when the provider fails without its own code
	CodeBotCheckFailed = "bot_check_failed"

	// persistence failures after validation passed; safe to retry
	CodeRegistrationFailed   = "registration_failed"
	CodeActivationFailed     = "activation_failed"
	CodeResendFailed         = "activation_resend_failed"
	CodeAuthenticationFailed = "authentication_failed"
	CodePasswordChangeFailed = "password_change_failed"
	CodeResetRequestFailed   = "reset_request_failed"
	CodePasswordResetFailed  = "password_reset_failed"
)
