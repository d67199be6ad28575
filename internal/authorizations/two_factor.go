package authorizations

import (
	"context"
	"errors"

	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/requester"
	"go.uber.org/zap"
)

// TwoFactorChallengeResult is the answer to a challenge: either a code to
// retry with, or RequestResendCode.
type TwoFactorChallengeResult struct {
	code   string
	resend bool
}

// RequestResendCode asks the server to issue the code again
var RequestResendCode = TwoFactorChallengeResult{resend: true}

// NewTwoFactorCode answers a challenge with code
func NewTwoFactorCode(code string) TwoFactorChallengeResult {
	return TwoFactorChallengeResult{code: code}
}

func (r TwoFactorChallengeResult) ResendCodeRequested() bool {
	return r.resend
}

func (r TwoFactorChallengeResult) AuthenticationCode() string {
	return r.code
}

// TwoFactorChallengeHandler supplies one-time codes when the server demands one.
// It is called at most once per challenge and never concurrently for the
// same get-or-create call.
type TwoFactorChallengeHandler interface {
	HandleTwoFactorChallenge(ctx context.Context, method TwoFactorType) (TwoFactorChallengeResult, error)
}

// TwoFactorChallengeFunc adapts a function to TwoFactorChallengeHandler
type TwoFactorChallengeFunc func(ctx context.Context, method TwoFactorType) (TwoFactorChallengeResult, error)

func (f TwoFactorChallengeFunc) HandleTwoFactorChallenge(ctx context.Context, method TwoFactorType) (TwoFactorChallengeResult, error) {
	return f(ctx, method)
}

// OneTimeCode answers the first challenge with code. A second challenge
// means the code was rejected and fails with ErrCodeRejected.
func OneTimeCode(code string) TwoFactorChallengeHandler {
	used := false
	return TwoFactorChallengeFunc(func(ctx context.Context, method TwoFactorType) (TwoFactorChallengeResult, error) {
		if used {
			return TwoFactorChallengeResult{}, &TwoFactorChallengeFailedError{Method: method, Cause: ErrCodeRejected}
		}
		used = true
		return NewTwoFactorCode(code), nil
	})
}

type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeTwoFactorRequired
	outcomeAuthenticationFailed
	outcomeFailed
)

// attempt is the classified result of one get-or-create request
type attempt struct {
	outcome       outcome
	authorization Authorization
	method        TwoFactorType
	err           error
}

func classifyAttempt(auth Authorization, err error) attempt {
	if err == nil {
		return attempt{outcome: outcomeSucceeded, authorization: auth}
	}
	var tfErr *requester.TwoFactorRequiredError
	switch {
	case errors.As(err, &tfErr):
		return attempt{outcome: outcomeTwoFactorRequired, method: tfErr.Type, err: err}
	case errors.Is(err, requester.ErrUnauthorized):
		return attempt{outcome: outcomeAuthenticationFailed, err: err}
	default:
		return attempt{outcome: outcomeFailed, err: err}
	}
}

func (c *Client) getOrCreate(ctx context.Context, uri string, body applicationAuthorizationRequest, code string) attempt {
	return classifyAttempt(c.conn.GetOrCreate(ctx, uri, body, code))
}

func validateApplicationArgs(clientID, clientSecret string, update *AuthorizationUpdate) error {
	if clientID == "" {
		return invalidArgument("client id must not be empty")
	}
	if clientSecret == "" {
		return invalidArgument("client secret must not be empty")
	}
	if update == nil {
		return invalidArgument("update must not be nil")
	}
	return nil
}

// GetOrCreateApplicationAuthentication returns the authorization of the
// application identified by clientID, creating it when needed.
//
// When the server demands a one-time code, handler is asked for one and the
// request is repeated with it. RequestResendCode repeats the request without
// a code, which makes the server issue a new one. This continues until the
// request succeeds or fails for another reason; see WithMaxChallengeRounds.
//
// Rejected credentials fail with *TwoFactorChallengeFailedError. A nil
// handler fails with ErrTwoFactorCodeRequiredButNoCallback once a code is
// demanded. Errors returned by handler are returned unchanged.
func (c *Client) GetOrCreateApplicationAuthentication(
	ctx context.Context,
	clientID, clientSecret string,
	update *AuthorizationUpdate,
	handler TwoFactorChallengeHandler,
) (Authorization, error) {
	if err := validateApplicationArgs(clientID, clientSecret, update); err != nil {
		return Authorization{}, err
	}

	uri := ApplicationAuthorizationURL(clientID)
	body := newApplicationAuthorizationRequest(clientSecret, update)
	log := logger.With(zap.String("client_id", clientID))

	code := ""
	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return Authorization{}, err
		}

		a := c.getOrCreate(ctx, uri, body, code)
		switch a.outcome {
		case outcomeSucceeded:
			log.Debug("application authorization obtained", zap.Int("rounds", rounds))
			return a.authorization, nil
		case outcomeAuthenticationFailed:
			log.Debug("credentials rejected", logger.Secret("code", code))
			return Authorization{}, &TwoFactorChallengeFailedError{Cause: a.err}
		case outcomeFailed:
			return Authorization{}, a.err
		case outcomeTwoFactorRequired:
		}

		log.Debug("two-factor challenge",
			zap.String("method", string(a.method)),
			zap.Int("round", rounds+1),
			logger.Secret("code", code),
		)

		if handler == nil {
			return Authorization{}, ErrTwoFactorCodeRequiredButNoCallback
		}
		if c.maxRounds > 0 && rounds >= c.maxRounds {
			return Authorization{}, &TwoFactorChallengeFailedError{Method: a.method, Cause: ErrChallengeRoundsExhausted}
		}
		rounds++

		result, err := handler.HandleTwoFactorChallenge(ctx, a.method)
		if err != nil {
			return Authorization{}, err
		}
		if result.ResendCodeRequested() {
			log.Debug("resend requested")
			code = ""
			continue
		}
		code = result.AuthenticationCode()
		if code == "" {
			return Authorization{}, ErrEmptyTwoFactorCode
		}
	}
}

// GetOrCreateApplicationAuthenticationWithCode sends a single request with
// an already known code. A further challenge or rejected credentials both
// fail with *TwoFactorChallengeFailedError.
func (c *Client) GetOrCreateApplicationAuthenticationWithCode(
	ctx context.Context,
	clientID, clientSecret string,
	update *AuthorizationUpdate,
	twoFactorCode string,
) (Authorization, error) {
	if err := validateApplicationArgs(clientID, clientSecret, update); err != nil {
		return Authorization{}, err
	}
	if twoFactorCode == "" {
		return Authorization{}, invalidArgument("two-factor code must not be empty")
	}

	a := c.getOrCreate(ctx, ApplicationAuthorizationURL(clientID), newApplicationAuthorizationRequest(clientSecret, update), twoFactorCode)
	switch a.outcome {
	case outcomeSucceeded:
		return a.authorization, nil
	case outcomeTwoFactorRequired, outcomeAuthenticationFailed:
		return Authorization{}, &TwoFactorChallengeFailedError{Method: a.method, Cause: a.err}
	default:
		return Authorization{}, a.err
	}
}
