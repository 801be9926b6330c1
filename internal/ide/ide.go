// Package ide knows the supported editors and how to make a running editor
// pick up a freshly written ~/.codex/auth.json.
package ide

import (
	"strings"

	"github.com/pysugar/codex-accounts/internal/apperr"
)

// Target names.
const (
	VSCode   = "vscode"
	Cursor   = "cursor"
	Windsurf = "windsurf"
	Trae     = "trae"
	VSCodium = "vscodium"
	Zed      = "zed"
)

type target struct {
	// CLI commands that accept --reuse-window --command workbench.action.reloadWindow
	commands []string
	// process names for the restart fallback
	processes []string
}

var targets = map[string]target{
	VSCode:   {commands: []string{"code", "code-insiders"}, processes: []string{"Code", "Code - Insiders"}},
	Cursor:   {commands: []string{"cursor"}, processes: []string{"Cursor"}},
	Windsurf: {commands: []string{"windsurf"}, processes: []string{"Windsurf"}},
	Trae:     {commands: []string{"trae"}, processes: []string{"Trae"}},
	VSCodium: {commands: []string{"codium"}, processes: []string{"VSCodium"}},
	Zed:      {commands: []string{"zed"}, processes: []string{"Zed"}},
}

var aliases = map[string]string{
	"vscode":   VSCode,
	"code":     VSCode,
	"cursor":   Cursor,
	"windsurf": Windsurf,
	"trae":     Trae,
	"vscodium": VSCodium,
	"codium":   VSCodium,
	"zed":      Zed,
}

// Normalize maps user input (case-insensitive, aliases allowed) to a target name.
func Normalize(input string) (string, error) {
	name, ok := aliases[strings.ToLower(strings.TrimSpace(input))]
	if !ok {
		return "", apperr.Invalid("ide", "Invalid IDE target")
	}
	return name, nil
}

// NormalizeOptional is Normalize for an optional value; nil stays nil.
func NormalizeOptional(input *string) (*string, error) {
	if input == nil {
		return nil, nil
	}
	name, err := Normalize(*input)
	if err != nil {
		return nil, err
	}
	return &name, nil
}

// Reloader asks a running editor to reload. found is false when no running
// instance of the editor could be reached.
type Reloader interface {
	Reload(ide string) (found bool, err error)
}

// NewReloader returns the reloader for the current platform.
func NewReloader() Reloader {
	return platformReloader{}
}

// NoopReloader never finds a running editor.
type NoopReloader struct{}

func (NoopReloader) Reload(string) (bool, error) { return false, nil }
