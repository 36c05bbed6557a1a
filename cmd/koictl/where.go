package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	clierrors "github.com/killuox/koi-launcher/internal/errors"
	"github.com/killuox/koi-launcher/internal/launcher"
	"github.com/killuox/koi-launcher/internal/output"
)

// location is the JSON shape of `koictl where`.
type location struct {
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	InstallDir string `json:"installDir"`
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
}

func newWhereCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "where",
		Short: "Print the koi binary path for this platform",
		Long: `Print the platform key and the path of the koi binary the launcher would
run on this host. Nothing is started.

With --check, exit non-zero when the binary is missing.`,
		Example: `  koictl where
  koictl where --check
  koictl where --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			in := installFromContext(cmd.Context())

			baseDir := ""
			if in.cfg != nil {
				baseDir = in.cfg.InstallDir()
			}

			if baseDir == "" {
				return clierrors.InstallDirUnknown(in.locateErr)
			}

			key, path := launcher.New(launcher.WithBaseDir(baseDir)).Resolve()

			loc := location{
				Platform:   key.String(),
				Arch:       key.Arch(),
				InstallDir: baseDir,
				Path:       path,
				Exists:     binaryExists(path),
			}

			if out.JSON {
				if err := out.PrintJSON(loc); err != nil {
					return err
				}
			} else {
				out.Print("%s\n", loc.Path)
				out.Muted("platform %s (%s), install %s", loc.Platform, loc.Arch, loc.InstallDir)
			}

			if check && !loc.Exists {
				return clierrors.BinaryNotFound(loc.Path, loc.Platform)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Exit non-zero when the binary is missing")

	return cmd
}

func binaryExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
