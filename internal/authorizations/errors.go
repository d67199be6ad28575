package authorizations

import (
	"errors"
	"fmt"

	"github.com/brizzai/tokenctl/internal/requester"
)

// Errors surfaced verbatim from the connection
var (
	ErrNotFound   = requester.ErrNotFound
	ErrValidation = requester.ErrValidation
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNilConnection   = fmt.Errorf("%w: connection must not be nil", ErrInvalidArgument)

	// ErrTwoFactorCodeRequiredButNoCallback is returned when the server
	// demands a code and no challenge handler was supplied.
	ErrTwoFactorCodeRequiredButNoCallback = errors.New("two-factor code required but no challenge handler was supplied")

	// ErrTwoFactorChallengeFailed matches every *TwoFactorChallengeFailedError
	ErrTwoFactorChallengeFailed = errors.New("two-factor challenge failed")

	ErrChallengeRoundsExhausted = errors.New("two-factor challenge rounds exhausted")
	ErrEmptyTwoFactorCode       = errors.New("challenge handler returned an empty code")
	ErrCodeRejected             = errors.New("two-factor code was rejected")
)

// TwoFactorChallengeFailedError reports that the two-factor authenticated
// creation failed. Method is empty when no challenge was observed.
type TwoFactorChallengeFailedError struct {
	Method TwoFactorType
	Cause  error
}

func (e *TwoFactorChallengeFailedError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("two-factor challenge failed (delivery: %s): %v", e.Method, e.Cause)
	}
	return fmt.Sprintf("two-factor challenge failed: %v", e.Cause)
}

func (e *TwoFactorChallengeFailedError) Unwrap() error {
	return e.Cause
}

func (e *TwoFactorChallengeFailedError) Is(target error) bool {
	return target == ErrTwoFactorChallengeFailed
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
