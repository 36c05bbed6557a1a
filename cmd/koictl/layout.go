package main

import (
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/killuox/koi-launcher/internal/errors"
	"github.com/killuox/koi-launcher/internal/output"
	"github.com/killuox/koi-launcher/internal/platform"
)

// hostPlatform is swapped in tests.
var hostPlatform = platform.Current

// layoutDoc is the structured form of `koictl layout`.
type layoutDoc struct {
	Arch      string            `json:"arch" yaml:"arch" toml:"arch"`
	Current   string            `json:"current" yaml:"current" toml:"current"`
	Platforms []platform.Layout `json:"platforms" yaml:"platforms" toml:"platforms"`
}

func newLayoutCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the per-platform binary layout",
		Long: `Print the table of supported platforms and where each bundled koi binary
lives relative to the install directory. The row for this host is marked
with an asterisk.`,
		Example: `  koictl layout
  koictl layout --format yaml
  koictl layout --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			doc := layoutDoc{
				Arch:      platform.Arch,
				Current:   hostPlatform().String(),
				Platforms: platform.Table(),
			}

			format = strings.ToLower(strings.TrimSpace(format))
			if out.JSON {
				format = output.FormatJSON
			}

			switch format {
			case output.FormatText, "":
				printLayoutTable(out, doc)
				return nil
			case output.FormatJSON, output.FormatYAML, output.FormatTOML:
				return output.Encode(out.Out, format, doc)
			default:
				return &clierrors.CLIError{
					Message: "Unsupported format: " + format,
					Hint:    "Use --format text, json, yaml, or toml",
					Code:    clierrors.ExitUsage,
				}
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", output.FormatText, "Output format: text, json, yaml, toml")

	return cmd
}

func printLayoutTable(out *output.Writer, doc layoutDoc) {
	out.Print("  %-10s %-24s %s\n", "PLATFORM", "SUBDIR", "EXECUTABLE")
	out.Print("  %-10s %-24s %s\n", "--------", "------", "----------")

	for _, l := range doc.Platforms {
		marker := " "
		if l.Key.String() == doc.Current {
			marker = "*"
		}

		out.Print("%s %-10s %-24s %s\n", marker, l.Key, l.Subdir, l.Executable)
	}

	out.Println()
	out.Print("arch: %s\n", doc.Arch)
}
