package authorizations

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTOTPSecret(t *testing.T) string {
	t.Helper()
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "tokenctl", AccountName: "octocat"})
	require.NoError(t, err)
	return key.Secret()
}

func TestTOTPChallengeHandler(t *testing.T) {
	t.Parallel()
	secret := newTOTPSecret(t)
	h, err := NewTOTPChallengeHandler(secret)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	result, err := h.HandleTwoFactorChallenge(context.Background(), TwoFactorApp)
	require.NoError(t, err)
	assert.False(t, result.ResendCodeRequested())

	want, err := totp.GenerateCode(secret, now)
	require.NoError(t, err)
	assert.Equal(t, want, result.AuthenticationCode())

	// same period, the code was already offered
	_, err = h.HandleTwoFactorChallenge(context.Background(), TwoFactorApp)
	assert.ErrorIs(t, err, ErrCodeRejected)

	now = now.Add(30 * time.Second)
	result, err = h.HandleTwoFactorChallenge(context.Background(), TwoFactorUnknown)
	require.NoError(t, err)
	assert.NotEqual(t, want, result.AuthenticationCode())
}

func TestTOTPChallengeHandler_SMS(t *testing.T) {
	t.Parallel()
	h, err := NewTOTPChallengeHandler(newTOTPSecret(t))
	require.NoError(t, err)

	_, err = h.HandleTwoFactorChallenge(context.Background(), TwoFactorSMS)
	assert.ErrorIs(t, err, ErrUnsupportedDeliveryMethod)
}

func TestNewTOTPChallengeHandler_InvalidSecret(t *testing.T) {
	t.Parallel()
	_, err := NewTOTPChallengeHandler("not base32!")
	assert.Error(t, err)
}
