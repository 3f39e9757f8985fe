package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeInvalidCredentials     = "invalid_credentials"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeInvalidImage     = "invalid_image"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Round errors
	ErrCodeRoundEnded       = "round_ended"
	ErrCodeAlreadyAnswered  = "question_already_answered"
	ErrCodeQuestionIDInUse  = "question_id_in_use"
	ErrCodeEmailRegistered  = "email_registered"
	ErrCodeTagNameTaken     = "tag_name_taken"
	ErrCodeEmailUnverified  = "email_unverified"
	ErrCodeSecureLinkFailed = "secure_link_invalid"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"

	// Feature availability
	ErrCodeFeatureNotAvailable = "feature_not_available"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
)
