package errs

import "strings"

// FieldError is a field-level validation error.
//
//	{ "field": "name", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType describes what the client should do, e.g. "redirect".
type ActionType string

// Action is an optional instruction for the client.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type every handler ultimately returns.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "NOT_FOUND", "FLAVOR_REQUIRED").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: the client may show Message to the user as-is.
//   - Errors: per-field validation errors.
//   - Action: optional client instruction.
//   - PlainText: write Message as a text/plain body instead of JSON.
//
// An HTTPError may carry the error it was made from. That cause is only
// logged, never sent to the client.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
	Action *Action      `json:"action"`

	PlainText bool `json:"-"`

	cause error
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, &HTTPError{}) match any *HTTPError.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithCode returns a copy of e with Code replaced.
func (e *HTTPError) WithCode(code string) *HTTPError {
	clone := *e
	clone.Code = code
	return &clone
}

// WithCause returns a copy of e that unwraps to cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	clone := *e
	clone.cause = cause
	return &clone
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// AsPlainText returns a copy of e that is written as text/plain.
func (e *HTTPError) AsPlainText() *HTTPError {
	clone := *e
	clone.PlainText = true
	return &clone
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
