package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pysugar/codex-accounts/internal/app"
	"github.com/pysugar/codex-accounts/internal/auth/flow"
	"github.com/spf13/cobra"
)

const loginPollInterval = time.Second

func newLoginCmd(flags *GlobalFlags) *cobra.Command {
	var (
		noBrowser bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Add an account through the browser OAuth flow",
		Long: `Starts an OAuth login, opens the authorization page and waits for the
browser to redirect to http://localhost:1455/auth/callback.

If the redirect cannot reach this machine, paste the final callback URL
(or just its query string) into the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer e.svc.Listener().Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runLogin(ctx, e.svc, cmd.InOrStdin(), cmd.OutOrStdout(), !noBrowser)
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Only print the authorization URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Give up after this long")
	return cmd
}

// runLogin drives one flow to a terminal state. Lines read from in are
// treated as pasted callback URLs.
func runLogin(ctx context.Context, svc *app.Service, in io.Reader, out io.Writer, browser bool) error {
	start, err := svc.StartFlow()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cyan("Open this URL to sign in:"))
	fmt.Fprintln(out, start.AuthorizationURL)
	fmt.Fprintln(out)
	if browser {
		if err := openBrowser(start.AuthorizationURL); err != nil {
			warn(out, "Could not open a browser: %v", err)
		}
	}
	fmt.Fprintln(out, "Waiting for the callback... (or paste the callback URL and press Enter)")

	pasted := make(chan string)
	go readLines(ctx, in, pasted)

	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()
	for {
		var status app.FlowResponse
		select {
		case <-ctx.Done():
			return fmt.Errorf("login did not complete: %w", ctx.Err())
		case line := <-pasted:
			status, err = svc.CompleteWithCallback(start.FlowID, line)
			if err != nil {
				warn(out, "%v", err)
				continue
			}
		case <-ticker.C:
			status, err = svc.FlowStatus(start.FlowID)
			if err != nil {
				return err
			}
		}

		switch status.Status {
		case flow.StatusCompleted:
			email := "-"
			if status.Account != nil {
				email = orDash(status.Account.Email)
			}
			success(out, "Logged in as %s", email)
			return nil
		case flow.StatusError:
			msg := "unknown error"
			if status.Error != nil {
				msg = *status.Error
			}
			return errors.New(msg)
		}
	}
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return errors.New("no graphical session")
		}
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
