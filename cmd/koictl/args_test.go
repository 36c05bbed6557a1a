package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	clierrors "github.com/killuox/koi-launcher/internal/errors"
)

// collectAllCommands walks the command tree depth-first, root included.
func collectAllCommands(root *cobra.Command) []*cobra.Command {
	all := []*cobra.Command{root}

	for _, child := range root.Commands() {
		all = append(all, collectAllCommands(child)...)
	}

	return all
}

func TestRunnableCommandsValidateArgs(t *testing.T) {
	missing := runnableWithout(func(cmd *cobra.Command) bool { return cmd.Args == nil })

	if len(missing) > 0 {
		t.Errorf("runnable commands without an Args validator (use noArgs or exactArgs):\n  %s",
			strings.Join(missing, "\n  "))
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
		hint    string
	}{
		{
			name:    "unknown flag",
			args:    []string{"version", "--bogus"},
			message: "unknown flag",
			hint:    "Run 'koictl version --help'",
		},
		{
			name:    "extra argument",
			args:    []string{"layout", "extra"},
			message: "'koictl layout' accepts no arguments",
			hint:    "--help",
		},
		{
			name:    "missing key",
			args:    []string{"config", "get"},
			message: "expects 1 argument(s), got 0",
			hint:    "--help",
		},
		{
			name:    "too many keys",
			args:    []string{"config", "get", "log.level", "log.format"},
			message: "expects 1 argument(s), got 2",
			hint:    "--help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs(tt.args)

			cliErr := requireCLIError(t, root.Execute(), clierrors.ExitUsage)

			if !strings.Contains(cliErr.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", cliErr.Message, tt.message)
			}

			if !strings.Contains(cliErr.Hint, tt.hint) {
				t.Errorf("hint = %q, want it to contain %q", cliErr.Hint, tt.hint)
			}
		})
	}
}

func TestHandleErrorSuggestsCommand(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"wehre"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Execute() error = nil, want unknown command")
	}

	out, _, stderr := newTestWriter()

	if code := handleError(out, err); code != clierrors.ExitUsage {
		t.Errorf("handleError() = %d, want %d", code, clierrors.ExitUsage)
	}

	for _, want := range []string{"unknown command", "where", "koictl --help"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr = %q, want it to contain %q", stderr.String(), want)
		}
	}
}
