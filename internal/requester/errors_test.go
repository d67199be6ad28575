package requester

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   string
		body     string
		wantKind error
		check    func(t *testing.T, err error)
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Not Found"}`, wantKind: ErrNotFound},
		{name: "forbidden", status: http.StatusForbidden, wantKind: ErrForbidden},
		{name: "bad request", status: http.StatusBadRequest, wantKind: ErrValidation},
		{name: "server", status: http.StatusBadGateway, body: "upstream down", wantKind: ErrServer,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "upstream down")
			},
		},
		{
			name:     "validation with field errors",
			status:   http.StatusUnprocessableEntity,
			body:     `{"message":"Validation Failed","errors":[{"resource":"OauthAccess","field":"description","code":"already_exists"}]}`,
			wantKind: ErrValidation,
			check: func(t *testing.T, err error) {
				var apiErr *ApiError
				require.ErrorAs(t, err, &apiErr)
				require.Len(t, apiErr.Errors, 1)
				assert.Equal(t, "already_exists", apiErr.Errors[0].Code)
				assert.Contains(t, err.Error(), "OauthAccess.description already_exists")
			},
		},
		{
			name:     "challenge via app",
			status:   http.StatusUnauthorized,
			header:   "required; app",
			wantKind: ErrTwoFactorRequired,
			check: func(t *testing.T, err error) {
				var tfErr *TwoFactorRequiredError
				require.ErrorAs(t, err, &tfErr)
				assert.Equal(t, TwoFactorApp, tfErr.Type)
				assert.Equal(t, http.StatusUnauthorized, tfErr.Response.StatusCode)
			},
		},
		{name: "plain unauthorized", status: http.StatusUnauthorized, wantKind: ErrUnauthorized},
		{
			name:   "unclassified status",
			status: http.StatusTeapot,
			check: func(t *testing.T, err error) {
				var apiErr *ApiError
				require.ErrorAs(t, err, &apiErr)
				assert.Nil(t, errors.Unwrap(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := make(http.Header)
			if tt.header != "" {
				headers.Set(OTPHeader, tt.header)
			}
			err := parseErrorResponse(&Response{StatusCode: tt.status, Body: []byte(tt.body), Headers: headers})
			require.Error(t, err)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestParseOTPChallenge(t *testing.T) {
	tests := []struct {
		value    string
		want     TwoFactorType
		required bool
	}{
		{value: "required; sms", want: TwoFactorSMS, required: true},
		{value: "required;app", want: TwoFactorApp, required: true},
		{value: "Required; carrier-pigeon", want: TwoFactorUnknown, required: true},
		{value: "required", want: TwoFactorUnknown, required: true},
		{value: "", required: false},
		{value: "optional; sms", required: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parseOTPChallenge(tt.value)
			assert.Equal(t, tt.required, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
