package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/pysugar/codex-accounts/internal/models"
	upcodex "github.com/pysugar/codex-accounts/internal/upstream/codex"
	"github.com/spf13/cobra"
)

func newAccountsCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "acc"},
		Short:   "List and manage stored accounts",
	}
	cmd.AddCommand(
		newAccountsListCmd(flags),
		newAccountsRemoveCmd(flags),
		newAccountsActivateCmd(flags),
		newAccountsRefreshCmd(flags),
		newAccountsSwitchCmd(flags),
		newAccountsCurrentCmd(flags),
		newAccountsImportCmd(flags),
	)
	return cmd
}

func newAccountsListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show accounts and their last known quota",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			data, err := e.svc.State()
			if err != nil {
				return err
			}
			renderAccounts(cmd.OutOrStdout(), data, time.Now())
			return nil
		},
	}
}

func newAccountsRemoveCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			if _, err := e.svc.RemoveAccount(args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Removed account %s", args[0])
			return nil
		},
	}
}

func newAccountsActivateCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make an account active and export its credentials for the Codex CLI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			if _, err := e.svc.SetActiveAccount(args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Account %s is now active", args[0])
			return nil
		},
	}
}

func newAccountsRefreshCmd(flags *GlobalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "refresh [id]",
		Short: "Refetch usage quota for one account or, with --all, every account",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass either an account id or --all")
			}
			if !all && len(args) != 1 {
				return errors.New("an account id is required unless --all is set")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if all {
				data, err := e.svc.RefreshAllQuotas()
				if err != nil {
					return err
				}
				renderAccounts(out, data, time.Now())
				return nil
			}

			account, err := e.svc.RefreshAccountQuota(args[0])
			if err != nil {
				return err
			}
			if account.LastError != nil {
				warn(out, "Quota refresh failed: %s", *account.LastError)
				return nil
			}
			success(out, "Refreshed quota for %s", orDash(account.Email))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Refresh every account")
	return cmd
}

func newAccountsSwitchCmd(flags *GlobalFlags) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "switch <id>",
		Short: "Activate an account and reload the editor that uses it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			var idePtr *string
			if cmd.Flags().Changed("ide") {
				idePtr = &target
			}
			resp, err := e.svc.SwitchAccountForIDE(args[0], idePtr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if resp.Warning != nil {
				warn(out, "%s", *resp.Warning)
				return nil
			}
			success(out, "Account switched and %s reloaded", *resp.IDE)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "ide", "", "Editor to reload (vscode, cursor, windsurf)")
	return cmd
}

func newAccountsCurrentCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show which account the exported auth.json belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			path := e.cfg.AuthFile
			if path == "" {
				if path, err = upcodex.DefaultAuthPath(); err != nil {
					return err
				}
			}
			auth, err := upcodex.ReadAuthFile(path)
			if err != nil {
				return err
			}
			if auth.Tokens == nil {
				return fmt.Errorf("%s holds no OAuth tokens", path)
			}

			out := cmd.OutOrStdout()
			email := upcodex.ExtractEmail(auth.Tokens.IDToken)
			fmt.Fprintf(out, "%s %s\n", cyan("Auth file:"), path)
			fmt.Fprintf(out, "%s %s\n", cyan("Email:    "), orDash(email))
			fmt.Fprintf(out, "%s %s\n", cyan("Account:  "), orDash(auth.Tokens.AccountID))
			if claims, err := upcodex.ParseJWT(auth.Tokens.IDToken); err == nil {
				fmt.Fprintf(out, "%s %s\n", cyan("Plan:     "), orDash(models.StringPtr(claims.AuthInfo.ChatgptPlanType)))
				if claims.Exp > 0 {
					fmt.Fprintf(out, "%s %s\n", cyan("Expires:  "), time.Unix(claims.Exp, 0).Format(time.RFC3339))
				}
			}

			data, err := e.svc.State()
			if err != nil {
				return err
			}
			for _, a := range data.Accounts {
				if a.Tokens.AccessToken == auth.Tokens.AccessToken {
					fmt.Fprintf(out, "%s %s\n", cyan("Stored as:"), a.ID)
					return nil
				}
			}
			warn(out, "The exported credentials do not match any stored account")
			return nil
		},
	}
}

func newAccountsImportCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import [auth.json]",
		Short: "Import an existing Codex login, or every login found on this machine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			result, err := e.svc.ImportAuthFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, se := range result.Errors {
				warn(out, "Skipped %s: %s", se.Path, se.Error)
			}
			if len(result.Imported) == 0 {
				warn(out, "No Codex logins found")
				return nil
			}
			for _, a := range result.Imported {
				success(out, "Imported %s as %s", orDash(a.Email), a.ID)
			}
			return nil
		},
	}
}
