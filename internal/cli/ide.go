package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newIDECmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ide",
		Short: "Configure which editor is reloaded after a switch",
	}

	var none bool
	set := &cobra.Command{
		Use:   "set <vscode|cursor|windsurf>",
		Short: "Set the preferred editor, or clear it with --none",
		Args: func(cmd *cobra.Command, args []string) error {
			if none == (len(args) == 1) || len(args) > 1 {
				return errors.New("pass exactly one of an editor name or --none")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			var target *string
			if !none {
				target = &args[0]
			}
			data, err := e.svc.SetPreferredIDE(target)
			if err != nil {
				return err
			}
			if data.PreferredIDE == nil {
				success(cmd.OutOrStdout(), "Preferred editor cleared")
				return nil
			}
			success(cmd.OutOrStdout(), "Preferred editor set to %s", *data.PreferredIDE)
			return nil
		},
	}
	set.Flags().BoolVar(&none, "none", false, "Clear the preferred editor")

	cmd.AddCommand(set)
	return cmd
}
