package main

import (
	"fmt"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// show renders auths to the command's stdout in the --output format
func show(cmd *cobra.Command, auths []authorizations.Authorization, single bool) error {
	f, err := parseFormat(outputFormat)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), f, auths, single)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all authorizations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(0)
			if err != nil {
				return err
			}
			auths, err := client.GetAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list authorizations: %w", err)
			}
			return show(cmd, auths, false)
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single authorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := newClient(0)
			if err != nil {
				return err
			}
			auth, err := client.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get authorization %d: %w", id, err)
			}
			return show(cmd, []authorizations.Authorization{auth}, true)
		},
	}
}

// addUpdateFlags registers the fields shared by create, update and get-or-create
func addUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().String("note", "", "Label shown next to the token")
	cmd.Flags().String("note-url", "", "URL to remind you what the token is for")
	cmd.Flags().StringSlice("scope", nil, "OAuth scope to grant (repeatable)")
	cmd.Flags().String("fingerprint", "", "Distinguishes tokens with the same note")
}

func updateFromFlags(cmd *cobra.Command) *authorizations.AuthorizationUpdate {
	note, _ := cmd.Flags().GetString("note")
	noteURL, _ := cmd.Flags().GetString("note-url")
	scopes, _ := cmd.Flags().GetStringSlice("scope")
	fingerprint, _ := cmd.Flags().GetString("fingerprint")
	return &authorizations.AuthorizationUpdate{
		Note:        note,
		NoteURL:     noteURL,
		Scopes:      scopes,
		Fingerprint: fingerprint,
	}
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a personal access token authorization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			update := updateFromFlags(cmd)
			client, err := newClient(0)
			if err != nil {
				return err
			}
			auth, err := client.Create(cmd.Context(), update)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}
			return show(cmd, []authorizations.Authorization{auth}, true)
		},
	}
	addUpdateFlags(cmd)
	_ = cmd.MarkFlagRequired("note")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the note or scopes of an authorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			update := updateFromFlags(cmd)
			update.AddScopes, _ = cmd.Flags().GetStringSlice("add-scope")
			update.RemoveScopes, _ = cmd.Flags().GetStringSlice("remove-scope")

			client, err := newClient(0)
			if err != nil {
				return err
			}
			auth, err := client.Update(cmd.Context(), id, update)
			if err != nil {
				return fmt.Errorf("failed to update authorization %d: %w", id, err)
			}
			return show(cmd, []authorizations.Authorization{auth}, true)
		},
	}
	addUpdateFlags(cmd)
	cmd.Flags().StringSlice("add-scope", nil, "Scope to add (repeatable)")
	cmd.Flags().StringSlice("remove-scope", nil, "Scope to remove (repeatable)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"revoke"},
		Short:   "Revoke an authorization",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := newClient(0)
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete authorization %d: %w", id, err)
			}
			pterm.Success.Printfln("Authorization %d revoked", id)
			return nil
		},
	}
}
