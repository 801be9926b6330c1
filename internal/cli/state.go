package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStateCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the stored state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where the state is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.svc.StoragePath())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Summarize accounts, proxy and editor settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			data, err := e.svc.State()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", cyan("Storage:       "), e.svc.StoragePath())
			fmt.Fprintf(out, "%s %d\n", cyan("Accounts:      "), len(data.Accounts))
			fmt.Fprintf(out, "%s %s\n", cyan("Active account:"), orDash(data.ActiveAccountID))
			fmt.Fprintf(out, "%s %s\n", cyan("Proxy:         "), activeProxyLabel(data))
			fmt.Fprintf(out, "%s %s\n", cyan("Editor:        "), orDash(data.PreferredIDE))
			fmt.Fprintf(out, "%s %s\n", cyan("Limits API:    "), data.LimitsBaseURL)
			return nil
		},
	})
	return cmd
}
