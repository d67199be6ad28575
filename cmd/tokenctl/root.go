package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/config"
	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/requester"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputFormat string

	// cfg is loaded before every subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tokenctl",
	Short: "Manage OAuth authorizations",
	Long: `tokenctl lists, creates, updates and revokes OAuth authorizations.
It can also get or create the authorization of an OAuth application, answering
two-factor challenges with a fixed code, a TOTP secret or an interactive prompt,
and serve the same operations as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}

		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		if err := logger.InitLogger(&loaded.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = loaded
		logger.Debug("configuration loaded",
			zap.String("base_url", cfg.API.BaseURL),
			zap.String("auth_type", string(cfg.API.AuthType)),
		)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()

	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(formatTable), "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newListCmd(),
		newGetCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newGetOrCreateCmd(),
		newServeCmd(),
	)
}

// newClient builds an authorizations client from the loaded configuration
func newClient(maxRounds int) (*authorizations.Client, error) {
	doer := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		ServiceConfig: &cfg.API,
		AuthManager:   requester.NewHTTPAuthManager(&cfg.API),
	})
	if maxRounds <= 0 {
		maxRounds = cfg.TwoFactor.MaxRounds
	}
	return authorizations.NewClient(authorizations.NewConnection(doer),
		authorizations.WithMaxChallengeRounds(maxRounds))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid authorization id %q", arg)
	}
	return id, nil
}
