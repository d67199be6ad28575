package authorizations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
)

var ErrUnsupportedDeliveryMethod = errors.New("delivery method cannot be answered with a generated code")

// TOTPChallengeHandler answers app challenges with codes generated from a
// shared TOTP secret.
type TOTPChallengeHandler struct {
	secret   string
	now      func() time.Time
	lastCode string
}

// NewTOTPChallengeHandler validates secret by generating a code with it
func NewTOTPChallengeHandler(secret string) (*TOTPChallengeHandler, error) {
	h := &TOTPChallengeHandler{secret: secret, now: time.Now}
	if _, err := totp.GenerateCode(secret, h.now()); err != nil {
		return nil, fmt.Errorf("invalid totp secret: %w", err)
	}
	return h, nil
}

// HandleTwoFactorChallenge generates the current code. The same code is
// never offered twice: a repeated challenge within one period means it
// was rejected.
func (h *TOTPChallengeHandler) HandleTwoFactorChallenge(ctx context.Context, method TwoFactorType) (TwoFactorChallengeResult, error) {
	if err := ctx.Err(); err != nil {
		return TwoFactorChallengeResult{}, err
	}
	if method == TwoFactorSMS {
		return TwoFactorChallengeResult{}, fmt.Errorf("%w: %s", ErrUnsupportedDeliveryMethod, method)
	}

	code, err := totp.GenerateCode(h.secret, h.now())
	if err != nil {
		return TwoFactorChallengeResult{}, fmt.Errorf("failed to generate totp code: %w", err)
	}
	if code == h.lastCode {
		return TwoFactorChallengeResult{}, &TwoFactorChallengeFailedError{Method: method, Cause: ErrCodeRejected}
	}
	h.lastCode = code
	return NewTwoFactorCode(code), nil
}
