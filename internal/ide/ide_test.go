package ide

import (
	"errors"
	"testing"

	"github.com/pysugar/codex-accounts/internal/apperr"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"vscode":   VSCode,
		"Code":     VSCode,
		" CURSOR ": Cursor,
		"windsurf": Windsurf,
		"trae":     Trae,
		"VSCodium": VSCodium,
		"codium":   VSCodium,
		"zed":      Zed,
	}
	for in, want := range tests {
		got, err := Normalize(in)
		if err != nil || got != want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "emacs", "vs code"} {
		_, err := Normalize(in)
		if err == nil || err.Error() != "Invalid IDE target" || !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Normalize(%q) err = %v", in, err)
		}
	}
}

func TestNormalizeOptional(t *testing.T) {
	got, err := NormalizeOptional(nil)
	if got != nil || err != nil {
		t.Fatalf("nil input: %v, %v", got, err)
	}
	in := "code"
	got, err = NormalizeOptional(&in)
	if err != nil || got == nil || *got != VSCode {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestEveryAliasHasTarget(t *testing.T) {
	for alias, name := range aliases {
		if _, ok := targets[name]; !ok {
			t.Errorf("alias %q points at unknown target %q", alias, name)
		}
	}
}
