package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brizzai/tokenctl/internal/config"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

// HTTPRequestBuilderParams holds the parameters for creating an HTTPRequestBuilder
type HTTPRequestBuilderParams struct {
	fx.In
	EndpointConfig *config.EndpointConfig
	AuthManager    AuthManager
}

// HTTPRequestBuilder turns a method, path and body into an authenticated request
type HTTPRequestBuilder struct {
	serviceCfg *config.EndpointConfig
	authMgr    AuthManager
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(params HTTPRequestBuilderParams) *HTTPRequestBuilder {
	return &HTTPRequestBuilder{
		serviceCfg: params.EndpointConfig,
		authMgr:    params.AuthManager,
	}
}

// BuildRequest builds a request for path relative to the configured base URL.
// A nil body sends no payload. Per-request headers win over configured ones.
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, method, path string, body any, headers map[string]string) (*Request, error) {
	url := b.buildURL(path)

	reader, err := b.createRequestBody(body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	merged := make(map[string]string, len(b.serviceCfg.Headers)+len(headers))
	for k, v := range b.serviceCfg.Headers {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", MediaType)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if b.serviceCfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", b.serviceCfg.UserAgent)
	}
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range merged {
		httpReq.Header.Set(key, value)
	}

	if err := b.authMgr.ApplyAuth(httpReq); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	return &Request{
		URL:         url,
		Method:      method,
		Body:        reader,
		Headers:     merged,
		RequestID:   requestID,
		HttpRequest: httpReq,
	}, nil
}

func (b *HTTPRequestBuilder) buildURL(path string) string {
	return strings.TrimRight(b.serviceCfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (b *HTTPRequestBuilder) createRequestBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(jsonData), nil
}
