package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pysugar/codex-accounts/internal/models"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func success(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, green("✓"), fmt.Sprintf(format, args...))
}

func warn(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, yellow("!"), fmt.Sprintf(format, args...))
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func formatPercent(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *p)
}

// formatReset renders a reset time relative to now, e.g. "in 2h15m".
func formatReset(resetAt *int64, now time.Time) string {
	if resetAt == nil {
		return "-"
	}
	d := time.Unix(*resetAt, 0).Sub(now)
	if d <= 0 {
		return "now"
	}
	return "in " + d.Truncate(time.Minute).String()
}

func formatWindow(w models.QuotaWindow, now time.Time) string {
	if w.UsedPercent == nil {
		return "-"
	}
	return fmt.Sprintf("%s (reset %s)", formatPercent(w.UsedPercent), formatReset(w.ResetAt, now))
}

func renderAccounts(out io.Writer, data models.AppData, now time.Time) {
	if len(data.Accounts) == 0 {
		fmt.Fprintln(out, "No accounts. Run `codex-accounts login` to add one.")
		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"", "ID", "Email", "Plan", "5h window", "Weekly window", "Last error"})
	for _, a := range data.Accounts {
		marker := ""
		if data.ActiveAccountID != nil && *data.ActiveAccountID == a.ID {
			marker = green("●")
		}
		plan, primary, secondary := "-", "-", "-"
		if a.Quota != nil {
			plan = orDash(a.Quota.PlanType)
			primary = formatWindow(a.Quota.Primary, now)
			secondary = formatWindow(a.Quota.Secondary, now)
		}
		lastErr := "-"
		if a.LastError != nil {
			lastErr = red(*a.LastError)
		}
		t.AppendRow(table.Row{marker, a.ID, orDash(a.Email), plan, primary, secondary, lastErr})
	}
	t.Render()
}

func renderProxies(out io.Writer, data models.AppData) {
	if len(data.Proxies) == 0 {
		fmt.Fprintln(out, "No proxies configured.")
		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"", "ID", "Host", "Port", "Login", "Status", "Latency"})
	for _, p := range data.Proxies {
		marker := ""
		if data.ActiveProxyID != nil && *data.ActiveProxyID == p.ID {
			marker = green("●")
		}
		status := orDash(p.LastStatus)
		switch status {
		case "ok":
			status = green(status)
		case "error":
			status = red(status)
		}
		latency := "-"
		if p.LastLatencyMs != nil {
			latency = fmt.Sprintf("%dms", *p.LastLatencyMs)
		}
		t.AppendRow(table.Row{marker, p.ID, p.Host, p.Port, p.Login, status, latency})
	}
	t.Render()
}
