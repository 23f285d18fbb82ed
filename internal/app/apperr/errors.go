package apperr

import "net/http"

const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeRSVPAlreadyExists     = "RSVP_ALREADY_EXISTS"
	CodeRSVPDeadlinePassed    = "RSVP_DEADLINE_PASSED"
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeCaptchaRequired       = "CAPTCHA_REQUIRED"
	CodeCaptchaFailed         = "CAPTCHA_FAILED"
	CodeIdempotencyReuse      = "IDEMPOTENCY_KEY_REUSE"
	CodeIdempotencyInProgress = "IDEMPOTENCY_REQUEST_IN_PROGRESS"
	CodeInternal              = "INTERNAL"
)

// InternalMessage is the only message shown to users for store or transport failures.
const InternalMessage = "Something went wrong. Please try again later."

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Validation reports invalid input; details maps field names to problems.
func Validation(message string, details map[string]any) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "unauthorized"}
}
