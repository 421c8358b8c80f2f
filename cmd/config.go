package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ebarkhatov/unihttp/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and update the configuration file.",
}

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var configSetHeaderCmd = &cobra.Command{
	Use:   "set-header KEY VALUE",
	Short: "Persist a default header into the configuration file.",
	Args:  cobra.ExactArgs(2), //nolint:mnd // KEY and VALUE.
	Run: func(cmd *cobra.Command, args []string) {
		app.ExecuteSetHeaderCommand(cmd.Context(), args[0], args[1])
	},
}

//nolint:gochecknoinits // Cobra requires the init function to register subcommands.
func init() {
	configCmd.AddCommand(configSetHeaderCmd)
	rootCmd.AddCommand(configCmd)
}
