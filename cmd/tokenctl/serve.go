package main

import (
	"context"
	"errors"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/config"
	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/requester"
	"github.com/brizzai/tokenctl/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// newApp composes the modules behind the MCP server
func newApp(c *config.Config, invoke any) *fx.App {
	return fx.New(
		fx.Supply(c),
		config.Module,
		requester.Module,
		authorizations.Module,
		server.Module,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.GetLogger()}
		}),
		fx.Invoke(invoke),
	)
}

func registerServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *server.Server) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				err := srv.Start(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the authorization operations as MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(cfg, registerServer)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
