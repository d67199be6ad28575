package authorizations

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/brizzai/tokenctl/internal/requester"
)

type connCall struct {
	Method string
	URI    string
	Body   any
	Code   string
}

type fakeResult struct {
	auth Authorization
	err  error
}

// fakeConnection records every call. GetOrCreate answers from a script,
// one entry per call.
type fakeConnection struct {
	mu    sync.Mutex
	calls []connCall

	result      fakeResult
	list        []Authorization
	getOrCreate []fakeResult
}

var errUnscripted = errors.New("unscripted GetOrCreate call")

func (f *fakeConnection) record(c connCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeConnection) Calls() []connCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]connCall(nil), f.calls...)
}

func (f *fakeConnection) Get(ctx context.Context, uri string) (Authorization, error) {
	f.record(connCall{Method: "Get", URI: uri})
	return f.result.auth, f.result.err
}

func (f *fakeConnection) GetAll(ctx context.Context, uri string) ([]Authorization, error) {
	f.record(connCall{Method: "GetAll", URI: uri})
	return f.list, f.result.err
}

func (f *fakeConnection) Create(ctx context.Context, uri string, body any) (Authorization, error) {
	f.record(connCall{Method: "Create", URI: uri, Body: body})
	return f.result.auth, f.result.err
}

func (f *fakeConnection) Update(ctx context.Context, uri string, body any) (Authorization, error) {
	f.record(connCall{Method: "Update", URI: uri, Body: body})
	return f.result.auth, f.result.err
}

func (f *fakeConnection) Delete(ctx context.Context, uri string) error {
	f.record(connCall{Method: "Delete", URI: uri})
	return f.result.err
}

func (f *fakeConnection) GetOrCreate(ctx context.Context, uri string, body any, code string) (Authorization, error) {
	f.record(connCall{Method: "GetOrCreate", URI: uri, Body: body, Code: code})

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.getOrCreate) == 0 {
		return Authorization{}, errUnscripted
	}
	next := f.getOrCreate[0]
	f.getOrCreate = f.getOrCreate[1:]
	return next.auth, next.err
}

var _ requester.ApiConnection[Authorization] = (*fakeConnection)(nil)

func challenge(method TwoFactorType) error {
	return &requester.TwoFactorRequiredError{
		Type:     method,
		Response: requester.NewApiError(http.StatusUnauthorized, "Must specify two-factor authentication OTP code."),
	}
}

func badCredentials() error {
	return requester.NewApiError(http.StatusUnauthorized, "Bad credentials")
}

// scriptedHandler answers challenges from a list and records the methods it saw
type scriptedHandler struct {
	answers []TwoFactorChallengeResult
	err     error
	methods []TwoFactorType
}

func (h *scriptedHandler) HandleTwoFactorChallenge(ctx context.Context, method TwoFactorType) (TwoFactorChallengeResult, error) {
	h.methods = append(h.methods, method)
	if h.err != nil {
		return TwoFactorChallengeResult{}, h.err
	}
	if len(h.answers) == 0 {
		return RequestResendCode, nil
	}
	next := h.answers[0]
	h.answers = h.answers[1:]
	return next, nil
}
