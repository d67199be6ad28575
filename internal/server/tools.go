package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	ToolListAuthorizations                  = "list_authorizations"
	ToolGetAuthorization                    = "get_authorization"
	ToolCreateAuthorization                 = "create_authorization"
	ToolUpdateAuthorization                 = "update_authorization"
	ToolDeleteAuthorization                 = "delete_authorization"
	ToolGetOrCreateApplicationAuthorization = "get_or_create_application_authorization"
)

// codeRequiredError stops the challenge loop when the tool caller supplied no code
type codeRequiredError struct {
	method authorizations.TwoFactorType
}

func (e *codeRequiredError) Error() string {
	return fmt.Sprintf("two-factor code required (delivery: %s); call again with two_factor_code", e.method)
}

var errArgument = errors.New("invalid tool argument")

func scopesOption() mcp.ToolOption {
	return mcp.WithArray("scopes",
		mcp.Description("OAuth scopes to grant, for example repo or gist"),
		mcp.Items(map[string]any{"type": "string"}),
	)
}

func (s *Server) authorizationTools() []mcpserver.ServerTool {
	return []mcpserver.ServerTool{
		{
			Tool: mcp.NewTool(ToolListAuthorizations,
				mcp.WithDescription("List every authorization of the authenticated user"),
			),
			Handler: s.handle(ToolListAuthorizations, s.listAuthorizations),
		},
		{
			Tool: mcp.NewTool(ToolGetAuthorization,
				mcp.WithDescription("Get a single authorization by id"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Authorization id")),
			),
			Handler: s.handle(ToolGetAuthorization, s.getAuthorization),
		},
		{
			Tool: mcp.NewTool(ToolCreateAuthorization,
				mcp.WithDescription("Create a personal access token authorization"),
				mcp.WithString("note", mcp.Required(), mcp.Description("Label shown next to the token")),
				mcp.WithString("note_url", mcp.Description("URL to remind you what the token is for")),
				scopesOption(),
				mcp.WithString("fingerprint", mcp.Description("Distinguishes tokens with the same note")),
			),
			Handler: s.handle(ToolCreateAuthorization, s.createAuthorization),
		},
		{
			Tool: mcp.NewTool(ToolUpdateAuthorization,
				mcp.WithDescription("Update the note or scopes of an authorization"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Authorization id")),
				mcp.WithString("note", mcp.Description("New label")),
				mcp.WithString("note_url", mcp.Description("New note URL")),
				scopesOption(),
			),
			Handler: s.handle(ToolUpdateAuthorization, s.updateAuthorization),
		},
		{
			Tool: mcp.NewTool(ToolDeleteAuthorization,
				mcp.WithDescription("Revoke an authorization"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Authorization id")),
			),
			Handler: s.handle(ToolDeleteAuthorization, s.deleteAuthorization),
		},
		{
			Tool: mcp.NewTool(ToolGetOrCreateApplicationAuthorization,
				mcp.WithDescription("Get or create the authorization of an OAuth application. "+
					"If two-factor authentication is required and no code is given, the result names the "+
					"delivery method; call again with two_factor_code."),
				mcp.WithString("client_id", mcp.Description("OAuth application client id, defaults to the configured one")),
				mcp.WithString("client_secret", mcp.Description("OAuth application client secret, defaults to the configured one")),
				mcp.WithString("note", mcp.Description("Label shown next to the token")),
				mcp.WithString("note_url", mcp.Description("URL to remind you what the token is for")),
				scopesOption(),
				mcp.WithString("fingerprint", mcp.Description("Distinguishes tokens with the same note")),
				mcp.WithString("two_factor_code", mcp.Description("One-time two-factor code")),
			),
			Handler: s.handle(ToolGetOrCreateApplicationAuthorization, s.getOrCreateApplicationAuthorization),
		},
	}
}

type toolFunc func(ctx context.Context, args map[string]any) (any, error)

// handle turns failures into tool errors so the caller sees them as results
func (s *Server) handle(name string, fn toolFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		out, err := fn(ctx, args)
		if err != nil {
			logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}

		if text, ok := out.(string); ok {
			return mcp.NewToolResultText(text), nil
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s result: %w", name, err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (s *Server) listAuthorizations(ctx context.Context, _ map[string]any) (any, error) {
	return s.client.GetAll(ctx)
}

func (s *Server) getAuthorization(ctx context.Context, args map[string]any) (any, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	return s.client.Get(ctx, id)
}

func (s *Server) createAuthorization(ctx context.Context, args map[string]any) (any, error) {
	update, err := updateArgs(args)
	if err != nil {
		return nil, err
	}
	if update.Note == "" {
		return nil, fmt.Errorf("%w: note is required", errArgument)
	}
	return s.client.Create(ctx, update)
}

func (s *Server) updateAuthorization(ctx context.Context, args map[string]any) (any, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	update, err := updateArgs(args)
	if err != nil {
		return nil, err
	}
	return s.client.Update(ctx, id, update)
}

func (s *Server) deleteAuthorization(ctx context.Context, args map[string]any) (any, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return nil, err
	}
	if err := s.client.Delete(ctx, id); err != nil {
		return nil, err
	}
	return fmt.Sprintf("authorization %d deleted", id), nil
}

func (s *Server) getOrCreateApplicationAuthorization(ctx context.Context, args map[string]any) (any, error) {
	clientID := stringArg(args, "client_id")
	if clientID == "" {
		clientID = s.config.Application.ClientID
	}
	clientSecret := stringArg(args, "client_secret")
	if clientSecret == "" {
		clientSecret = s.config.Application.ClientSecret
	}
	update, err := updateArgs(args)
	if err != nil {
		return nil, err
	}

	if code := stringArg(args, "two_factor_code"); code != "" {
		return s.client.GetOrCreateApplicationAuthenticationWithCode(ctx, clientID, clientSecret, update, code)
	}

	auth, err := s.client.GetOrCreateApplicationAuthentication(ctx, clientID, clientSecret, update,
		authorizations.TwoFactorChallengeFunc(func(ctx context.Context, method authorizations.TwoFactorType) (authorizations.TwoFactorChallengeResult, error) {
			return authorizations.TwoFactorChallengeResult{}, &codeRequiredError{method: method}
		}),
	)
	if err != nil {
		return nil, err
	}
	return auth, nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func intArg(args map[string]any, key string) (int64, error) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s must be an integer", errArgument, key)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", errArgument, key)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: %s is required", errArgument, key)
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", errArgument, key, v)
	}
}

func stringsArg(args map[string]any, key string) ([]string, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must contain strings", errArgument, key)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return strings.Split(v, ","), nil
	default:
		return nil, fmt.Errorf("%w: %s must be an array of strings", errArgument, key)
	}
}

func updateArgs(args map[string]any) (*authorizations.AuthorizationUpdate, error) {
	scopes, err := stringsArg(args, "scopes")
	if err != nil {
		return nil, err
	}
	return &authorizations.AuthorizationUpdate{
		Note:        stringArg(args, "note"),
		NoteURL:     stringArg(args, "note_url"),
		Scopes:      scopes,
		Fingerprint: stringArg(args, "fingerprint"),
	}, nil
}
