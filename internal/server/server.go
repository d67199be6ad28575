// Package server exposes the authorizations client as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/config"
	"github.com/brizzai/tokenctl/internal/logger"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

var ErrNilClient = errors.New("authorizations client must not be nil")

// Server serves the authorization tools over stdio, SSE or streamable HTTP
type Server struct {
	config *config.Config
	client *authorizations.Client
	mcp    *mcpserver.MCPServer
	tools  []mcpserver.ServerTool
}

type ServerParams struct {
	fx.In

	Config *config.Config
	Client *authorizations.Client
}

// NewServer creates the MCP server and registers the tools
func NewServer(params ServerParams) (*Server, error) {
	if params.Config == nil {
		return nil, errors.New("config must not be nil")
	}
	if params.Client == nil {
		return nil, ErrNilClient
	}

	srv := &Server{
		config: params.Config,
		client: params.Client,
		mcp: mcpserver.NewMCPServer(
			params.Config.Server.Name,
			params.Config.Server.Version,
			mcpserver.WithToolCapabilities(false),
		),
	}

	srv.tools = srv.authorizationTools()
	for _, t := range srv.tools {
		logger.Debug("Adding tool", zap.String("name", t.Tool.Name))
	}
	srv.mcp.AddTools(srv.tools...)

	return srv, nil
}

func (s *Server) address() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

func (s *Server) ServeSSE(ctx context.Context) error {
	sseServer := mcpserver.NewSSEServer(
		s.mcp,
		mcpserver.WithBaseURL("http://"+s.address()),
	)
	return s.serveHTTP(ctx, sseServer, "SSE")
}

func (s *Server) ServeHTTP(ctx context.Context) error {
	httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
	return s.serveHTTP(ctx, httpServer, "HTTP")
}

func (s *Server) serveHTTP(ctx context.Context, handler http.Handler, mode string) error {
	addr := s.address()
	server := &http.Server{
		Addr:              addr,
		Handler:           CORSMiddleware(LoggingMiddleware(handler)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("mode", mode),
			zap.String("address", addr),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server",
			zap.String("mode", mode),
			zap.Duration("timeout", shutdownTimeout),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

func (s *Server) ServeSTDIO(ctx context.Context) error {
	logger.Info("Starting STDIO server")
	stdioServer := mcpserver.NewStdioServer(s.mcp)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// Start runs the server in the configured mode until ctx is done
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting server",
		zap.String("mode", string(s.config.Server.Mode)),
		zap.String("version", s.config.Server.Version),
	)

	switch s.config.Server.Mode {
	case config.ServerModeSSE:
		return s.ServeSSE(ctx)
	case config.ServerModeHTTP:
		return s.ServeHTTP(ctx)
	case config.ServerModeSTDIO:
		return s.ServeSTDIO(ctx)
	default:
		return fmt.Errorf("unsupported server mode: %s", s.config.Server.Mode)
	}
}

// Module provides the MCP server dependencies
var Module = fx.Module("mcp_server",
	fx.Provide(
		NewServer,
	),
)
