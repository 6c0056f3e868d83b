package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plepperguy/pleppervr-updater/internal/service/updater"
	"github.com/plepperguy/pleppervr-updater/internal/version"
)

// newRootCommand builds the pleppervr-updater command tree: the root updates
// the modpack instance and starts the game.
func newRootCommand() *cobra.Command {
	var options updater.Options

	command := &cobra.Command{
		Use:   "pleppervr-updater",
		Short: "Update the PlepperVR modpack and launch it through Prism Launcher",
		Long: `Downloads the newest PlepperVR modpack release from GitHub, imports it into
Prism Launcher and starts the game.

Saved worlds, options and screenshots of the existing instance are backed up
before the import and restored afterwards. Settings are read from
updater_config.json next to the executable when present.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The updater logs its own failures.
			cmd.SilenceErrors = true

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			_, err := updater.Run(ctx, &options)

			return err
		},
	}

	flags := command.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "", "path to settings file (default: updater_config.json beside the executable)")
	flags.StringVar(&options.LogLevel, "log-level", "", "console log level: debug, info, warn or error")
	flags.BoolVar(&options.NoBackup, "no-backup", false, "do not preserve user state across the update")
	flags.BoolVar(&options.NoLaunch, "no-launch", false, "do not start the game after the update")

	version.AttachCobraVersionCommand(command)
	command.AddCommand(newInitConfigCommand())

	return command
}

// Execute runs the pleppervr-updater CLI and exits with non-zero status on error.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
