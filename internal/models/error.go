package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest     = "BAD_REQUEST"
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrForbidden      = "FORBIDDEN"
	ErrNotFound       = "NOT_FOUND"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"

	// Credential lifecycle errors
	ErrCredentialsNotFound = "CREDENTIALS_NOT_FOUND"
	ErrReauthRequired      = "REAUTHENTICATION_REQUIRED"
	ErrQuotaExceeded       = "QUOTA_EXCEEDED"
	ErrUpstreamFailure     = "UPSTREAM_FAILURE"

	// Recommendation errors
	ErrNothingToRecommend = "NOTHING_TO_RECOMMEND"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
