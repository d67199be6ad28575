package requester

import (
	"io"
	"net/http"
	"strings"
)

const (
	// OTPHeader carries the one-time code on requests and the challenge on
	// 401 responses ("required; sms").
	OTPHeader = "X-GitHub-OTP"

	RequestIDHeader = "X-Request-ID"
	MediaType       = "application/vnd.github+json"
)

// TwoFactorType is the delivery method of a one-time code
type TwoFactorType string

const (
	TwoFactorUnknown TwoFactorType = "unknown"
	TwoFactorSMS     TwoFactorType = "sms"
	TwoFactorApp     TwoFactorType = "app"
)

// ParseTwoFactorType maps a delivery method name to a TwoFactorType
func ParseTwoFactorType(s string) TwoFactorType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sms":
		return TwoFactorSMS
	case "app":
		return TwoFactorApp
	default:
		return TwoFactorUnknown
	}
}

// parseOTPChallenge reads an X-GitHub-OTP response header.
// It reports false when the header does not demand a code.
func parseOTPChallenge(value string) (TwoFactorType, bool) {
	parts := strings.SplitN(value, ";", 2)
	if !strings.EqualFold(strings.TrimSpace(parts[0]), "required") {
		return "", false
	}
	if len(parts) == 1 {
		return TwoFactorUnknown, true
	}
	return ParseTwoFactorType(parts[1]), true
}

// Request represents a fully built HTTP request
type Request struct {
	URL         string
	Method      string
	Body        io.Reader
	Headers     map[string]string
	RequestID   string
	HttpRequest *http.Request
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}
