package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plepperguy/pleppervr-updater/internal/config"
)

var errSettingsExist = errors.New("settings file already exists, use --force to overwrite")

// newInitConfigCommand returns the `init-config` subcommand writing default settings.
func newInitConfigCommand() *cobra.Command {
	var force bool

	command := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default settings file",
		Long: `Writes the built-in settings to a file so they can be edited.
The format follows the extension: .yaml and .yml produce YAML, anything else JSON.
Without a path the file is written beside the executable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s: %w", path, errSettingsExist)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings written to", path)

			return nil
		},
	}

	command.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")

	return command
}
