package requester

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ApiConnection performs single typed requests against a resource.
// GetOrCreate sends twoFactorCode when it is not empty and fails with a
// *TwoFactorRequiredError when the server demands one.
type ApiConnection[T any] interface {
	Get(ctx context.Context, uri string) (T, error)
	GetAll(ctx context.Context, uri string) ([]T, error)
	Create(ctx context.Context, uri string, body any) (T, error)
	Update(ctx context.Context, uri string, body any) (T, error)
	Delete(ctx context.Context, uri string) error
	GetOrCreate(ctx context.Context, uri string, body any, twoFactorCode string) (T, error)
}

// Doer executes one request; *HTTPRequester satisfies it
type Doer interface {
	Do(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error)
}

// HTTPConnection is the JSON-over-HTTP ApiConnection
type HTTPConnection[T any] struct {
	doer Doer
}

// NewHTTPConnection creates an ApiConnection for resources of type T
func NewHTTPConnection[T any](doer Doer) *HTTPConnection[T] {
	return &HTTPConnection[T]{doer: doer}
}

func (c *HTTPConnection[T]) Get(ctx context.Context, uri string) (T, error) {
	return doJSON[T](ctx, c.doer, http.MethodGet, uri, nil, nil)
}

func (c *HTTPConnection[T]) GetAll(ctx context.Context, uri string) ([]T, error) {
	items, err := doJSON[[]T](ctx, c.doer, http.MethodGet, uri, nil, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *HTTPConnection[T]) Create(ctx context.Context, uri string, body any) (T, error) {
	return doJSON[T](ctx, c.doer, http.MethodPost, uri, body, nil)
}

func (c *HTTPConnection[T]) Update(ctx context.Context, uri string, body any) (T, error) {
	return doJSON[T](ctx, c.doer, http.MethodPatch, uri, body, nil)
}

func (c *HTTPConnection[T]) Delete(ctx context.Context, uri string) error {
	_, err := c.doer.Do(ctx, http.MethodDelete, uri, nil, nil)
	return err
}

func (c *HTTPConnection[T]) GetOrCreate(ctx context.Context, uri string, body any, twoFactorCode string) (T, error) {
	var headers map[string]string
	if twoFactorCode != "" {
		headers = map[string]string{OTPHeader: twoFactorCode}
	}
	return doJSON[T](ctx, c.doer, http.MethodPut, uri, body, headers)
}

func doJSON[T any](ctx context.Context, doer Doer, method, uri string, body any, headers map[string]string) (T, error) {
	var out T
	resp, err := doer.Do(ctx, method, uri, body, headers)
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s %s response: %w", method, uri, err)
	}
	return out, nil
}
