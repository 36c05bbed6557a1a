package main

import (
	"github.com/spf13/cobra"

	"github.com/killuox/koi-launcher/internal/doctor"
	clierrors "github.com/killuox/koi-launcher/internal/errors"
	"github.com/killuox/koi-launcher/internal/output"
)

// doctorReport is the JSON shape of `koictl doctor`.
type doctorReport struct {
	Checks   []doctor.Result `json:"checks"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Warnings int             `json:"warnings"`
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the koi install",
		Long: `Run diagnostic checks against the koi install for this platform.

Checks performed:
  - Platform recognition
  - Install directory location
  - koi binary presence and permissions
  - koi version (against koi.min_version when set)`,
		Example: `  koictl doctor
  koictl doctor --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			in := installFromContext(cmd.Context())

			var opts doctor.Options
			if in.cfg != nil {
				opts.InstallDir = in.cfg.InstallDir()
				opts.MinVersion = in.cfg.MinKoiVersion()
			}

			// An install.dir override makes a failed self-lookup irrelevant.
			if opts.InstallDir == "" {
				opts.InstallDirErr = in.locateErr
			}

			if !out.JSON {
				out.Println("koi Doctor")
				out.Println("==========")
				out.Println()
			}

			spin := out.Spinner("Running checks")
			spin.Start()

			results := doctor.New(opts).Run(cmd.Context())

			spin.Stop()

			passed, failed, warnings := doctor.Summary(results)

			if out.JSON {
				if err := out.PrintJSON(doctorReport{
					Checks:   results,
					Passed:   passed,
					Failed:   failed,
					Warnings: warnings,
				}); err != nil {
					return err
				}
			} else {
				doctor.RenderResults(out, results)
				out.Println()
				out.Println(doctor.FormatSummary(results))
			}

			if failed > 0 {
				return clierrors.ChecksFailed(failed)
			}

			return nil
		},
	}
}
