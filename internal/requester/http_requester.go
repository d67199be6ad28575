package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/tokenctl/internal/config"
	"github.com/brizzai/tokenctl/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester builds and executes requests against the configured API
type HTTPRequester struct {
	client  *http.Client
	builder *HTTPRequestBuilder
}

type HTTPRequesterParams struct {
	fx.In

	ServiceConfig *config.EndpointConfig
	AuthManager   AuthManager
}

// NewHTTPRequester creates a new HTTPRequester. A zero timeout in the
// config falls back to config.DefaultTimeout.
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := params.ServiceConfig.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
		builder: NewHTTPRequestBuilder(HTTPRequestBuilderParams{
			EndpointConfig: params.ServiceConfig,
			AuthManager:    params.AuthManager,
		}),
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// Do performs one request. Non-2xx responses are returned as classified
// errors (see parseErrorResponse) together with the raw response.
func (r *HTTPRequester) Do(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	req, err := r.builder.BuildRequest(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}

	log := logger.With(
		zap.String("request_id", req.RequestID),
		zap.String("method", method),
		zap.String("path", path),
		logger.Secret("otp", req.HttpRequest.Header.Get(OTPHeader)),
	)
	log.Debug("sending request")

	start := time.Now()
	resp, err := r.execute(req)
	if err != nil {
		log.Error("failed to execute request", zap.Error(err))
		return nil, err
	}

	log.Info("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, parseErrorResponse(resp)
	}
	return resp, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *Request) (resp *Response, err error) {
	httpResp, err := r.client.Do(req.HttpRequest)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bodyBytes,
		Headers:    httpResp.Header,
	}, nil
}
