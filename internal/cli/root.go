// Package cli implements the codex-accounts command line.
package cli

import (
	"fmt"
	"runtime"

	"github.com/pysugar/codex-accounts/internal/version"
	"github.com/spf13/cobra"
)

// GlobalFlags contains global flags available for all commands
type GlobalFlags struct {
	Config  string
	DataDir string
	Verbose bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "codex-accounts",
		Short: "Manage multiple Codex accounts",
		Long: `codex-accounts keeps several Codex (ChatGPT) logins side by side,
tracks their usage quotas and switches the credentials the Codex CLI and
editor extensions use.

Accounts are added through the browser OAuth flow ("login"). The state is
stored in the data directory, either as state.json or in SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.Config, "config", "", "Path to configuration file (default <data-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "Data directory (overrides config and CODEX_ACCOUNTS_DATA_DIR)")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newServeCmd(flags),
		newLoginCmd(flags),
		newAccountsCmd(flags),
		newProxyCmd(flags),
		newIDECmd(flags),
		newStateCmd(flags),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and returns its error.
func Execute() error {
	return NewRootCmd().Execute()
}

// VersionInfo contains version information
type VersionInfo struct {
	Version   string
	Commit    string
	GoVersion string
	OS        string
	Arch      string
	BuildTime string
}

// GetVersionInfo returns version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		BuildTime: version.BuildTime,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "codex-accounts", info.Version)
			fmt.Fprintln(out, "Commit:    ", info.Commit)
			fmt.Fprintln(out, "Go Version:", info.GoVersion)
			fmt.Fprintln(out, "OS/Arch:   ", info.OS+"/"+info.Arch)
			fmt.Fprintln(out, "Built:     ", info.BuildTime)
		},
	}
}
