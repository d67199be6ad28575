package requester

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every *ApiError unwraps to at most one of them.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("authentication failed")
	ErrForbidden         = errors.New("forbidden")
	ErrTwoFactorRequired = errors.New("two-factor authentication code required")
	ErrServer            = errors.New("server error")
)

// FieldError describes one rejected field of a request payload
type FieldError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
}

func (e FieldError) String() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s.%s %s", e.Resource, e.Field, e.Code)
}

// ApiError is a non-2xx response from the API
type ApiError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
	Errors           []FieldError
	kind             error
}

func (e *ApiError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Errors) > 0 {
		details := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			details = append(details, fe.String())
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(details, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// Unwrap returns the kind sentinel, or nil for unclassified statuses
func (e *ApiError) Unwrap() error {
	return e.kind
}

// TwoFactorRequiredError signals that the request must be repeated with a
// one-time code. It is never an ErrUnauthorized.
type TwoFactorRequiredError struct {
	Type     TwoFactorType
	Response *ApiError
}

func (e *TwoFactorRequiredError) Error() string {
	return fmt.Sprintf("two-factor authentication code required (delivery: %s)", e.Type)
}

func (e *TwoFactorRequiredError) Unwrap() error {
	return ErrTwoFactorRequired
}

// NewApiError builds an ApiError classified by its status code
func NewApiError(statusCode int, message string) *ApiError {
	return &ApiError{StatusCode: statusCode, Message: message, kind: kindForStatus(statusCode)}
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity, status == http.StatusBadRequest:
		return ErrValidation
	case status >= http.StatusInternalServerError:
		return ErrServer
	}
	return nil
}

type errorBody struct {
	Message          string       `json:"message"`
	DocumentationURL string       `json:"documentation_url"`
	Errors           []FieldError `json:"errors"`
}

// parseErrorResponse turns a non-2xx response into a classified error
func parseErrorResponse(resp *Response) error {
	apiErr := &ApiError{StatusCode: resp.StatusCode}

	var body errorBody
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &body); err == nil {
			apiErr.Message = body.Message
			apiErr.DocumentationURL = body.DocumentationURL
			apiErr.Errors = body.Errors
		} else {
			apiErr.Message = strings.TrimSpace(string(resp.Body))
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if method, ok := parseOTPChallenge(resp.Headers.Get(OTPHeader)); ok {
			apiErr.kind = ErrTwoFactorRequired
			return &TwoFactorRequiredError{Type: method, Response: apiErr}
		}
	}
	apiErr.kind = kindForStatus(resp.StatusCode)

	return apiErr
}
