package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/tui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type handlerOptions struct {
	otp         string
	totpSecret  string
	interactive bool
}

// selectHandler picks the challenge handler: a fixed code, then a TOTP
// secret, then the terminal prompt. It returns nil when none applies.
func selectHandler(opts handlerOptions) (authorizations.TwoFactorChallengeHandler, error) {
	switch {
	case opts.otp != "":
		logger.Debug("answering challenges with a fixed code")
		return authorizations.OneTimeCode(opts.otp), nil
	case opts.totpSecret != "":
		logger.Debug("answering challenges with generated totp codes")
		h, err := authorizations.NewTOTPChallengeHandler(opts.totpSecret)
		if err != nil {
			return nil, err
		}
		return h, nil
	case opts.interactive:
		logger.Debug("answering challenges interactively")
		return tui.NewChallengeHandler(os.Stdin, os.Stderr), nil
	default:
		return nil, nil
	}
}

func newGetOrCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-or-create",
		Short: "Get or create the authorization of an OAuth application",
		Long: `Get or create the authorization of an OAuth application.

When the account has two-factor authentication enabled the server asks for a
one-time code. The code comes from --otp, from --totp-secret, or from an
interactive prompt when stdin is a terminal. In the prompt, ctrl+r asks the
server to send a new code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, _ := cmd.Flags().GetString("client-id")
			clientSecret, _ := cmd.Flags().GetString("client-secret")
			otp, _ := cmd.Flags().GetString("otp")
			totpSecret, _ := cmd.Flags().GetString("totp-secret")
			maxRounds, _ := cmd.Flags().GetInt("max-rounds")

			if clientID == "" {
				clientID = cfg.Application.ClientID
			}
			if clientSecret == "" {
				clientSecret = cfg.Application.ClientSecret
			}
			if totpSecret == "" {
				totpSecret = cfg.TwoFactor.TOTPSecret
			}
			if clientID == "" || clientSecret == "" {
				return errors.New("--client-id and --client-secret (or application.client_id/client_secret in config) are required")
			}

			handler, err := selectHandler(handlerOptions{
				otp:         otp,
				totpSecret:  totpSecret,
				interactive: term.IsTerminal(int(os.Stdin.Fd())),
			})
			if err != nil {
				return err
			}

			client, err := newClient(maxRounds)
			if err != nil {
				return err
			}

			logger.Debug("getting application authorization",
				zap.String("client_id", clientID),
				logger.Secret("client_secret", clientSecret),
			)
			auth, err := client.GetOrCreateApplicationAuthentication(cmd.Context(), clientID, clientSecret, updateFromFlags(cmd), handler)
			if errors.Is(err, authorizations.ErrTwoFactorCodeRequiredButNoCallback) {
				return fmt.Errorf("%w: pass --otp or --totp-secret, or run in a terminal", err)
			}
			if err != nil {
				return fmt.Errorf("failed to get or create application authorization: %w", err)
			}

			if auth.Token == "" {
				pterm.Warning.Println("The authorization already existed; its token is only shown when first created")
			}
			return show(cmd, []authorizations.Authorization{auth}, true)
		},
	}
	addUpdateFlags(cmd)
	cmd.Flags().String("client-id", "", "OAuth application client id")
	cmd.Flags().String("client-secret", "", "OAuth application client secret")
	cmd.Flags().String("otp", "", "One-time two-factor code")
	cmd.Flags().String("totp-secret", "", "TOTP secret used to generate two-factor codes")
	cmd.Flags().Int("max-rounds", 0, "Maximum number of two-factor challenges (0 uses the configured value)")
	return cmd
}
