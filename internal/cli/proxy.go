package cli

import (
	"errors"
	"fmt"

	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/spf13/cobra"
)

func newProxyCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proxy",
		Aliases: []string{"proxies"},
		Short:   "Manage upstream HTTP proxies (login:pass@host:port)",
	}
	cmd.AddCommand(
		newProxyListCmd(flags),
		newProxyAddCmd(flags),
		newProxyEditCmd(flags),
		newProxyDeleteCmd(flags),
		newProxyUseCmd(flags),
		newProxyTestCmd(flags),
	)
	return cmd
}

func newProxyListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show configured proxies",
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
			renderProxies(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func newProxyAddCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <login:pass@host:port>",
		Short: "Add a proxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			data, err := e.svc.SaveProxy(nil, args[0])
			if err != nil {
				return err
			}
			p := data.Proxies[len(data.Proxies)-1]
			success(cmd.OutOrStdout(), "Added proxy %s (%s:%d)", p.ID, p.Host, p.Port)
			return nil
		},
	}
}

func newProxyEditCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <login:pass@host:port>",
		Short: "Replace a proxy's address and credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			id := args[0]
			if _, err := e.svc.SaveProxy(&id, args[1]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Updated proxy %s", id)
			return nil
		},
	}
}

func newProxyDeleteCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a proxy",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			if _, err := e.svc.DeleteProxy(args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Deleted proxy %s", args[0])
			return nil
		},
	}
}

func newProxyUseCmd(flags *GlobalFlags) *cobra.Command {
	var none bool
	cmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Route outbound requests through a proxy, or directly with --none",
		Args: func(cmd *cobra.Command, args []string) error {
			if none == (len(args) == 1) || len(args) > 1 {
				return errors.New("pass exactly one of a proxy id or --none")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			var id *string
			if !none {
				id = &args[0]
			}
			if _, err := e.svc.SetActiveProxy(id); err != nil {
				return err
			}
			if id == nil {
				success(cmd.OutOrStdout(), "Outbound requests go direct")
				return nil
			}
			success(cmd.OutOrStdout(), "Using proxy %s", *id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&none, "none", false, "Disable the active proxy")
	return cmd
}

func newProxyTestCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Check that a proxy accepts TCP connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			result, err := e.svc.TestProxy(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !result.Reachable {
				fmt.Fprintln(out, red("✗"), "Proxy unreachable:", orDash(result.Error))
				return nil
			}
			success(out, "Proxy reachable in %dms", *result.LatencyMs)
			return nil
		},
	}
}

// activeProxyLabel describes the proxy outbound requests use.
func activeProxyLabel(data models.AppData) string {
	p := data.ActiveProxy()
	if p == nil {
		return "direct"
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}
