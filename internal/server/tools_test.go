package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/config"
	"github.com/brizzai/tokenctl/internal/fakeapi"
	"github.com/brizzai/tokenctl/internal/requester"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const totpSecret = "JBSWY3DPEHPK3PXP"

func newTestServer(t *testing.T, method requester.TwoFactorType) *Server {
	t.Helper()

	api := fakeapi.New(
		fakeapi.WithCredentials("octocat", "hunter2"),
		fakeapi.WithApplication("tokenctl", "client-1", "shh"),
		fakeapi.WithTwoFactor(totpSecret, method),
	)
	httpServer := httptest.NewServer(api)
	t.Cleanup(httpServer.Close)

	cfg := &config.Config{
		API: config.EndpointConfig{
			BaseURL:    httpServer.URL,
			AuthType:   config.AuthTypeBasic,
			AuthConfig: map[string]string{"username": "octocat", "password": "hunter2"},
		},
		Server:      config.ServerConfig{Name: "tokenctl", Version: "test", Mode: config.ServerModeSTDIO},
		Application: config.ApplicationConfig{ClientID: "client-1", ClientSecret: "shh"},
	}
	doer := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		ServiceConfig: &cfg.API,
		AuthManager:   requester.NewHTTPAuthManager(&cfg.API),
	})
	client, err := authorizations.NewClient(authorizations.NewConnection(doer))
	require.NoError(t, err)

	srv, err := NewServer(ServerParams{Config: cfg, Client: client})
	require.NoError(t, err)
	return srv
}

func call(t *testing.T, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	for _, tool := range s.tools {
		if tool.Tool.Name != name {
			continue
		}
		result, err := tool.Handler(context.Background(), req)
		require.NoError(t, err)
		require.NotEmpty(t, result.Content)
		text, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		return text.Text, result.IsError
	}
	t.Fatalf("tool %s not registered", name)
	return "", false
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(ServerParams{Config: &config.Config{}})
	assert.ErrorIs(t, err, ErrNilClient)

	s := newTestServer(t, requester.TwoFactorSMS)
	names := make([]string, 0, len(s.tools))
	for _, tool := range s.tools {
		names = append(names, tool.Tool.Name)
	}
	assert.ElementsMatch(t, []string{
		ToolListAuthorizations,
		ToolGetAuthorization,
		ToolCreateAuthorization,
		ToolUpdateAuthorization,
		ToolDeleteAuthorization,
		ToolGetOrCreateApplicationAuthorization,
	}, names)
}

func TestTools_CRUD(t *testing.T) {
	s := newTestServer(t, requester.TwoFactorSMS)

	text, isErr := call(t, s, ToolCreateAuthorization, map[string]any{
		"note":   "ci",
		"scopes": []any{"repo", "gist"},
	})
	require.False(t, isErr, text)
	var created authorizations.Authorization
	require.NoError(t, json.Unmarshal([]byte(text), &created))
	assert.Equal(t, []string{"repo", "gist"}, created.Scopes)

	text, isErr = call(t, s, ToolUpdateAuthorization, map[string]any{
		"id":   float64(created.ID),
		"note": "ci-renamed",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "ci-renamed")

	text, isErr = call(t, s, ToolGetAuthorization, map[string]any{"id": float64(created.ID)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "ci-renamed")

	text, isErr = call(t, s, ToolListAuthorizations, nil)
	require.False(t, isErr, text)
	var all []authorizations.Authorization
	require.NoError(t, json.Unmarshal([]byte(text), &all))
	assert.Len(t, all, 1)

	text, isErr = call(t, s, ToolDeleteAuthorization, map[string]any{"id": "1"})
	require.False(t, isErr, text)
	assert.Equal(t, "authorization 1 deleted", text)

	text, isErr = call(t, s, ToolGetAuthorization, map[string]any{"id": float64(1)})
	assert.True(t, isErr)
	assert.Contains(t, text, "Not Found")
}

func TestTools_ArgumentErrors(t *testing.T) {
	s := newTestServer(t, requester.TwoFactorSMS)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{name: "missing id", tool: ToolGetAuthorization, args: nil, want: "id is required"},
		{name: "fractional id", tool: ToolDeleteAuthorization, args: map[string]any{"id": 1.5}, want: "must be an integer"},
		{name: "create without note", tool: ToolCreateAuthorization, args: map[string]any{}, want: "note is required"},
		{name: "bad scopes", tool: ToolCreateAuthorization, args: map[string]any{"note": "x", "scopes": []any{1}}, want: "must contain strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, s, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestTools_GetOrCreateWithoutCodeNamesMethod(t *testing.T) {
	s := newTestServer(t, requester.TwoFactorSMS)

	text, isErr := call(t, s, ToolGetOrCreateApplicationAuthorization, map[string]any{"scopes": "repo"})
	assert.True(t, isErr)
	assert.Contains(t, text, "delivery: sms")
	assert.Contains(t, text, "two_factor_code")
}

func TestTools_GetOrCreateWithCode(t *testing.T) {
	s := newTestServer(t, requester.TwoFactorApp)

	code, err := totp.GenerateCode(totpSecret, time.Now())
	require.NoError(t, err)

	text, isErr := call(t, s, ToolGetOrCreateApplicationAuthorization, map[string]any{
		"scopes":          []any{"repo"},
		"two_factor_code": code,
	})
	require.False(t, isErr, text)

	var auth authorizations.Authorization
	require.NoError(t, json.Unmarshal([]byte(text), &auth))
	assert.NotEmpty(t, auth.Token)
	require.NotNil(t, auth.Application)
	assert.Equal(t, "client-1", auth.Application.ClientID)
}

func TestTools_GetOrCreateWrongCode(t *testing.T) {
	s := newTestServer(t, requester.TwoFactorApp)

	text, isErr := call(t, s, ToolGetOrCreateApplicationAuthorization, map[string]any{
		"two_factor_code": "000000",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "two-factor")
}
