//go:build windows

package ide

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

const createNoWindow = 0x08000000

type platformReloader struct{}

// Reload first tries the editor's CLI reload command and falls back to
// restarting its processes.
func (platformReloader) Reload(ide string) (bool, error) {
	t, ok := targets[ide]
	if !ok {
		return false, errors.New("Unsupported IDE target")
	}

	ok, reloadErr := runScript(reloadScript(t.commands), "IDE reload command failed")
	if reloadErr == nil && ok {
		return true, nil
	}

	found, restartErr := runScript(restartScript(t.processes), "IDE process restart command failed")
	if restartErr != nil {
		if reloadErr != nil {
			return false, fmt.Errorf("IDE reload failed (%v) and restart fallback failed (%v)", reloadErr, restartErr)
		}
		return false, restartErr
	}
	return found, nil
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + strings.ReplaceAll(n, "'", "''") + "'"
	}
	return strings.Join(quoted, ",")
}

func reloadScript(commands []string) string {
	return "$ErrorActionPreference='SilentlyContinue'; " +
		"$cmds=@(" + quoteList(commands) + "); $ok=$false; " +
		"foreach ($cmd in $cmds) { if (Get-Command $cmd -ErrorAction SilentlyContinue) { " +
		"& $cmd --reuse-window --command workbench.action.reloadWindow | Out-Null; $ok=$true } }; " +
		"if ($ok) { exit 0 } else { exit 2 }"
}

func restartScript(processes []string) string {
	return "$ErrorActionPreference='SilentlyContinue'; " +
		"$names=@(" + quoteList(processes) + "); $found=$false; " +
		"foreach ($name in $names) { $procs=Get-Process -Name $name -ErrorAction SilentlyContinue; " +
		"foreach ($p in $procs) { $found=$true; $path=$p.Path; " +
		"Stop-Process -Id $p.Id -Force -ErrorAction SilentlyContinue; " +
		"if ($path) { Start-Process -WindowStyle Hidden -FilePath $path | Out-Null } } }; " +
		"if ($found) { exit 0 } else { exit 2 }"
}

// runScript maps exit code 0 to true, 2 to false and anything else to an error.
func runScript(script, failure string) (bool, error) {
	cmd := exec.Command("powershell", "-NoProfile", "-ExecutionPolicy", "Bypass", "-WindowStyle", "Hidden", "-Command", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true, CreationFlags: createNoWindow}

	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 2 {
		return false, nil
	}
	if !errors.As(err, &exitErr) {
		return false, fmt.Errorf("Failed to execute PowerShell command: %w", err)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return false, fmt.Errorf("%s: %s", failure, msg)
	}
	return false, errors.New(failure)
}
