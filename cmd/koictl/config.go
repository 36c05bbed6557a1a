package main

import (
	"github.com/spf13/cobra"

	"github.com/killuox/koi-launcher/internal/config"
	clierrors "github.com/killuox/koi-launcher/internal/errors"
	"github.com/killuox/koi-launcher/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect launcher configuration",
		Long: `View the effective launcher settings. Values come from KOI_LAUNCHER_*
environment variables, launcher.yaml next to the launcher, and the user
config file, in that order of precedence.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display every launcher setting with its effective value, followed by the config files that were read.`,
		Example: `  koictl config list
  koictl config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			in := installFromContext(cmd.Context())

			if in.cfg == nil {
				return clierrors.ConfigInvalid(nil)
			}

			settings := in.cfg.All()

			if out.JSON {
				return out.PrintJSON(settings)
			}

			for _, key := range config.Keys() {
				out.Print("%s = %v\n", key, settings[key])
			}

			files := in.cfg.Files()

			out.Println()

			if len(files) == 0 {
				out.Muted("No config files found; using defaults and environment.")
				return nil
			}

			out.Muted("Config files:")

			for _, f := range files {
				out.Muted("  %s", f)
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  `Retrieve and display the effective value of a single configuration key.`,
		Example: `  koictl config get install.dir
  koictl config get signals.forward --json`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			in := installFromContext(cmd.Context())
			key := args[0]

			if !config.IsKnownKey(key) {
				return clierrors.UnknownConfigKey(key)
			}

			if in.cfg == nil {
				return clierrors.ConfigInvalid(nil)
			}

			value := in.cfg.All()[key]

			if out.JSON {
				return out.PrintJSON(map[string]any{key: value})
			}

			out.Print("%v\n", value)

			return nil
		},
	}
}
